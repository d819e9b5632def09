// Package cli implements the aim command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/pkg/aimrepo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	repoDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// loaded holds the settings read by PersistentPreRunE.
var loaded settings

// NewRootCmd creates the top-level "aim" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aim",
		Short: "Track training metrics and model checkpoints in a local repository",
		Long: "aim keeps experiment artifacts in a .aim directory: per-branch metric\n" +
			"series, images, annotations and model checkpoints, indexed by meta.json.",
		Version: aimrepo.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			s, err := loadSettings(configDir)
			if err != nil {
				return err
			}
			loaded = s
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "settings directory (default: $XDG_CONFIG_HOME/aim)")
	root.PersistentFlags().StringVar(&flags.repoDir, "repo", "", "directory to search for the repository from (default: working directory)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "log debug output to stderr")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newRemoteCmd())
	root.AddCommand(newTrackCmd())
	root.AddCommand(newImageCmd())
	root.AddCommand(newCheckpointCmd())
	root.AddCommand(newItemsCmd())
	root.AddCommand(newLsFilesCmd())
	root.AddCommand(newOrphansCmd())
	root.AddCommand(newDestroyCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "aim:", err)
		os.Exit(ExitCode(err))
	}
	os.Exit(exitSuccess)
}

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// systemErrors are failures of the repository or its host rather than of
// the request.
var systemErrors = []error{
	types.ErrInvalidConfig,
	types.ErrCorrupt,
	types.ErrPermissionDenied,
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, target := range systemErrors {
		if errors.Is(err, target) {
			return exitSysError
		}
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return exitSysError
	}
	return exitUserError
}
