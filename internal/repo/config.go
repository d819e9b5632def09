package repo

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// configStore caches the repository config document. The file is read on
// first access and every save rewrites it whole.
type configStore struct {
	fs   afero.Fs
	path string

	cfg       *types.Config
	persisted bool
}

func newConfigStore(fsys afero.Fs, path string) *configStore {
	return &configStore{fs: fsys, path: path}
}

// load returns the cached config, reading the file if it has not been read
// yet. An absent file yields an empty config that is re-checked on the next
// call. A file that fails to parse is fatal.
func (s *configStore) load() (*types.Config, error) {
	if s.persisted {
		return s.cfg, nil
	}
	var cfg types.Config
	found, err := readJSONFile(s.fs, s.path, &cfg)
	if errors.Is(err, types.ErrCorrupt) {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		s.cfg = &types.Config{}
		return s.cfg, nil
	}
	s.cfg = &cfg
	s.persisted = true
	return s.cfg, nil
}

// save writes the whole cached document.
func (s *configStore) save() error {
	if s.cfg == nil {
		s.cfg = types.NewConfig()
	}
	if s.cfg.Remotes == nil {
		s.cfg.Remotes = []types.Remote{}
	}
	if s.cfg.Branches == nil {
		s.cfg.Branches = []types.BranchRef{}
	}
	if err := writeJSONFile(s.fs, s.path, s.cfg); err != nil {
		return err
	}
	s.persisted = true
	return nil
}

// reset replaces the document with an empty one and persists it.
func (s *configStore) reset() error {
	s.cfg = types.NewConfig()
	return s.save()
}

func (s *configStore) forget() {
	s.cfg = nil
	s.persisted = false
}

// Config returns the cached config document. Mutations are only persisted by
// SaveConfig.
func (r *Repo) Config() (*types.Config, error) {
	return r.config.load()
}

// SaveConfig overwrites the config file with the in-memory document.
func (r *Repo) SaveConfig() error {
	return r.config.save()
}

// initializedConfig returns the config of an initialized repository or
// types.ErrNoRepository.
func (r *Repo) initializedConfig() (*types.Config, error) {
	cfg, err := r.config.load()
	if err != nil {
		return nil, err
	}
	if !r.config.persisted {
		return nil, fmt.Errorf("%w: %s", types.ErrNoRepository, r.path)
	}
	return cfg, nil
}

// ProjectName returns the configured project name. A missing name is an
// invalid config.
func (r *Repo) ProjectName() (string, error) {
	cfg, err := r.config.load()
	if err != nil {
		return "", err
	}
	if cfg.ProjectName == "" {
		return "", fmt.Errorf("%w: project_name is not set", types.ErrInvalidConfig)
	}
	return cfg.ProjectName, nil
}

// SetProjectName records the project name and persists the config.
func (r *Repo) SetProjectName(name string) error {
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	cfg.ProjectName = name
	return r.config.save()
}

// RemoteURL returns the URL of the named remote. found is false when no
// such remote is configured.
func (r *Repo) RemoteURL(name string) (url string, found bool, err error) {
	cfg, err := r.config.load()
	if err != nil {
		return "", false, err
	}
	remote, ok := cfg.FindRemote(name)
	if !ok {
		return "", false, nil
	}
	return remote.URL, true, nil
}

// Remotes returns the configured remotes in config order.
func (r *Repo) Remotes() ([]types.Remote, error) {
	cfg, err := r.config.load()
	if err != nil {
		return nil, err
	}
	return append([]types.Remote(nil), cfg.Remotes...), nil
}

// AddRemote validates and registers a new remote, then persists the config.
func (r *Repo) AddRemote(name, url string) error {
	remote := types.Remote{Name: name, URL: url}
	if err := remote.Validate(); err != nil {
		return err
	}
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.FindRemote(name); ok {
		return fmt.Errorf("%w: %s", types.ErrRemoteExists, name)
	}
	cfg.Remotes = append(cfg.Remotes, remote)
	if err := r.config.save(); err != nil {
		return err
	}
	r.log.Info("remote added", zap.String("remote", name), zap.String("url", url))
	return nil
}

// RemoveRemote drops the named remote and persists the config.
func (r *Repo) RemoveRemote(name string) error {
	cfg, err := r.initializedConfig()
	if err != nil {
		return err
	}
	if !cfg.DropRemote(name) {
		return fmt.Errorf("%w: %s", types.ErrRemoteNotFound, name)
	}
	if err := r.config.save(); err != nil {
		return err
	}
	r.log.Info("remote removed", zap.String("remote", name))
	return nil
}
