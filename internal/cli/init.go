package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

func newInitCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty repository",
		Long:  "Create the .aim directory with its config, logs directory and the master branch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, project)
		},
	}
	cmd.Flags().StringVar(&project, "name", "", "project name recorded in the repository config")
	return cmd
}

func runInit(cmd *cobra.Command, project string) error {
	dir, err := paths.ResolveStartDir(flags.repoDir)
	if err != nil {
		return fmt.Errorf("resolve repository dir: %w", err)
	}
	console, err := newLogger(cmd, nil)
	if err != nil {
		return err
	}
	r, err := repo.New(dir, repo.WithLogger(console))
	if err != nil {
		return err
	}

	ok, err := r.Init()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: cannot create %s", types.ErrPermissionDenied, r.Path())
	}
	if project != "" {
		if err := r.SetProjectName(project); err != nil {
			return err
		}
	}

	if f, err := r.OpenLog(); err == nil {
		if log, err := newLogger(cmd, f); err == nil {
			log.Info("repository initialized", zap.String("path", r.Path()))
			_ = log.Sync()
		}
		f.Close()
	}

	if flags.jsonMode {
		return writeJSON(cmd, map[string]string{"path": r.Path(), "branch": r.Branch()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty aim repository in %s\n", r.Path())
	return nil
}
