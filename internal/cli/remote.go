package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage named remotes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <url>",
		Short: "Register a remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				return r.AddRemote(args[0], args[1])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				return r.RemoveRemote(args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				remotes, err := r.Remotes()
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd, remotes)
				}
				for _, rm := range remotes {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rm.Name, rm.URL)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get [name]",
		Short: "Print the URL of a remote (default: the default_remote setting)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := loaded.DefaultRemote
			if len(args) == 1 {
				name = args[0]
			}
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				url, found, err := r.RemoteURL(name)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%w: %s", types.ErrRemoteNotFound, name)
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	})
	return cmd
}
