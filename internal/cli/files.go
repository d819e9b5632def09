package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
)

func newLsFilesCmd() *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List the files of the repository or of one branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				var (
					files []string
					err   error
				)
				if branch != "" {
					files, err = r.ListBranchFiles(branch)
				} else {
					files, err = r.ListFiles()
				}
				if err != nil {
					return err
				}
				rel := make([]string, 0, len(files))
				for _, f := range files {
					p, err := filepath.Rel(r.Path(), f)
					if err != nil {
						return err
					}
					rel = append(rel, filepath.ToSlash(p))
				}
				if flags.jsonMode {
					return writeJSON(cmd, rel)
				}
				for _, p := range rel {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "", "list only this branch")
	return cmd
}

func newOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List branch directories the config does not track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				orphans, err := r.OrphanBranches()
				if err != nil {
					return err
				}
				if len(orphans) > 0 {
					log.Warn("untracked branch directories", zap.Strings("dirs", orphans))
				}
				if flags.jsonMode {
					if orphans == nil {
						orphans = []string{}
					}
					return writeJSON(cmd, orphans)
				}
				for _, o := range orphans {
					fmt.Fprintln(cmd.OutOrStdout(), o)
				}
				return nil
			})
		},
	}
}

func newDestroyCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the whole repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usagef("refusing to delete the repository without --yes")
			}
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				if err := r.Remove(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", r.Path())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
