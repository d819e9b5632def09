package repo

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// CreateBranch creates the object tree of a new branch and registers it in
// the config. The name is validated and checked for uniqueness before
// anything on disk changes.
//
// Creation is two steps with no rollback: the directory is created first and
// the config is saved second. A crash in between leaves a directory that the
// config does not track; OrphanBranches reports such directories.
func (r *Repo) CreateBranch(name string) error {
	if err := types.ValidateBranchName(name); err != nil {
		return err
	}
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	if cfg.HasBranch(name) {
		return fmt.Errorf("%w: %s", types.ErrBranchExists, name)
	}

	dir := r.BranchDir(name)
	exists, err := afero.Exists(r.fs, dir)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if exists {
		return fmt.Errorf("%w: %s: path %s is already in use", types.ErrBranchExists, name, dir)
	}
	if err := r.fs.MkdirAll(r.objectsDir(name), 0o755); err != nil {
		return fmt.Errorf("creating branch %s: %w", name, err)
	}

	cfg.AddBranch(name)
	if err := r.config.save(); err != nil {
		return err
	}
	r.log.Info("branch created", zap.String("branch", name))
	return nil
}

// CheckoutBranch makes name the active branch, persists the config and points
// every later object operation at the branch object tree.
func (r *Repo) CheckoutBranch(name string) error {
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	if !cfg.HasBranch(name) {
		return fmt.Errorf("%w: %s", types.ErrBranchNotFound, name)
	}

	previous := cfg.ActiveBranch
	cfg.ActiveBranch = name
	if err := r.config.save(); err != nil {
		cfg.ActiveBranch = previous
		return err
	}
	r.branch = name
	r.log.Info("branch checked out", zap.String("branch", name))
	return nil
}

// RemoveBranch unregisters a branch, persists the config and then deletes the
// branch directory. The default branch can never be removed. When the removed
// branch was active the default branch is checked out.
func (r *Repo) RemoveBranch(name string) error {
	if name == types.DefaultBranch {
		return fmt.Errorf("%w: %s", types.ErrProtectedBranch, name)
	}
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	if !cfg.HasBranch(name) {
		return fmt.Errorf("%w: %s", types.ErrBranchNotFound, name)
	}

	cfg.DropBranch(name)
	if err := r.config.save(); err != nil {
		return err
	}
	if err := r.fs.RemoveAll(r.BranchDir(name)); err != nil {
		return fmt.Errorf("removing branch %s: %w", name, err)
	}
	r.log.Info("branch removed", zap.String("branch", name))

	if r.branch == name {
		return r.CheckoutBranch(types.DefaultBranch)
	}
	return nil
}

// ListBranches returns the branch names in config order. Entries without a
// name are skipped.
func (r *Repo) ListBranches() ([]string, error) {
	cfg, err := r.config.load()
	if err != nil {
		return nil, err
	}
	return cfg.BranchNames(), nil
}

// OrphanBranches returns the directories below the repository that look like
// branches but are not registered in the config. Nothing is repaired.
func (r *Repo) OrphanBranches() ([]string, error) {
	cfg, err := r.initializedConfig()
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}
	var orphans []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == paths.LogsDirName {
			continue
		}
		if !cfg.HasBranch(e.Name()) {
			orphans = append(orphans, e.Name())
		}
	}
	return orphans, nil
}
