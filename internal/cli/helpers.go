package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/logging"
	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// newLogger builds the command logger. The repository log file, when given,
// receives every entry; stderr only does with --verbose.
func newLogger(cmd *cobra.Command, file io.Writer) (*zap.Logger, error) {
	cfg := logging.Config{
		Level:  loaded.LogLevel,
		Format: loaded.LogFormat,
		File:   file,
	}
	if flags.verbose {
		cfg.Level = logging.LevelDebug
		cfg.Console = cmd.ErrOrStderr()
	}
	log, err := logging.New(cfg)
	if err != nil {
		return nil, usageError{err}
	}
	return log.With(
		zap.String("session", logging.SessionID()),
		zap.String("command", cmd.CommandPath()),
	), nil
}

// withRepo locates the repository from --repo, wires the logger to its log
// file and runs fn. It fails with ErrNoRepository when there is none.
func withRepo(cmd *cobra.Command, fn func(r *repo.Repo, log *zap.Logger) error) error {
	start, err := paths.ResolveStartDir(flags.repoDir)
	if err != nil {
		return fmt.Errorf("resolve repository dir: %w", err)
	}
	probe, found, err := repo.Find(start)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w (or any of the parent directories): %s", types.ErrNoRepository, start)
	}

	logFile, err := probe.OpenLog()
	if err != nil {
		return err
	}
	defer logFile.Close()

	log, err := newLogger(cmd, logFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	r, err := repo.New(probe.Root(), repo.WithLogger(log))
	if err != nil {
		return err
	}
	log.Debug("repository opened", zap.String("path", r.Path()), zap.String("branch", r.Branch()))
	return fn(r, log)
}

// writeJSON prints v as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseJSONArg decodes a command line JSON document. Empty input is nil.
func parseJSONArg(flag, s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	if !json.Valid([]byte(s)) {
		return nil, usagef("--%s is not valid JSON: %s", flag, s)
	}
	return json.RawMessage(s), nil
}

// parseValueArg treats s as JSON when it parses and as a plain string
// otherwise.
func parseValueArg(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}

// copyInto copies the OS file src to dst on the repository filesystem.
func copyInto(fsys afero.Fs, dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return usageError{err}
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
