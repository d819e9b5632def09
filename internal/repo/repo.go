package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// Layout constants.
const (
	ArchiveExt        = "aim"
	ModelFileName     = "model"
	ModelDescFileName = "model.json"
	LogFileName       = "aim.log"
)

// Repo is a handle bound to one repository. The zero value is not usable;
// construct it with New or Find.
type Repo struct {
	fs     afero.Fs
	root   string
	path   string
	branch string
	config *configStore
	log    *zap.Logger
}

type options struct {
	fs  afero.Fs
	log *zap.Logger
}

// Option configures a Repo.
type Option func(*options)

// WithFs sets the filesystem the repository lives on. Defaults to the OS
// filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{fs: afero.NewOsFs(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// New binds a handle to the repository whose marker directory lives in root.
// The repository does not have to exist yet; call Init to create it. When a
// config document exists it is read, and a corrupt one, or one whose active
// branch is not registered, is returned as an error.
func New(root string, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	path := filepath.Join(abs, paths.RepoDirName)
	r := &Repo{
		fs:     o.fs,
		root:   abs,
		path:   path,
		branch: types.DefaultBranch,
		config: newConfigStore(o.fs, filepath.Join(path, paths.ConfigFileName)),
		log:    o.log,
	}

	cfg, err := r.config.load()
	if err != nil {
		return nil, err
	}
	if cfg.ActiveBranch != "" {
		if !cfg.HasBranch(cfg.ActiveBranch) {
			return nil, fmt.Errorf("%w: active branch %q is not in the branch list",
				types.ErrInvalidConfig, cfg.ActiveBranch)
		}
		r.branch = cfg.ActiveBranch
	}
	return r, nil
}

// Find searches from start towards the filesystem root for a repository and
// binds a handle to the closest one. found is false when there is none.
func Find(start string, opts ...Option) (r *Repo, found bool, err error) {
	o := buildOptions(opts)
	root, found, err := paths.FindRepoRoot(o.fs, start)
	if err != nil || !found {
		return nil, false, err
	}
	r, err = New(root, opts...)
	if err != nil {
		return nil, true, err
	}
	return r, true, nil
}

func (r *Repo) String() string { return r.path }

// Root returns the directory that holds the repository marker.
func (r *Repo) Root() string { return r.root }

// Path returns the repository directory (<root>/.aim).
func (r *Repo) Path() string { return r.path }

// Fs returns the filesystem the repository lives on.
func (r *Repo) Fs() afero.Fs { return r.fs }

// Branch returns the active branch every object operation targets.
func (r *Repo) Branch() string { return r.branch }

// BranchDir returns the directory of the named branch.
func (r *Repo) BranchDir(branch string) string {
	return filepath.Join(r.path, branch)
}

// ObjectsDir returns the object tree of the active branch.
func (r *Repo) ObjectsDir() string {
	return r.objectsDir(r.branch)
}

func (r *Repo) objectsDir(branch string) string {
	return filepath.Join(r.path, branch, paths.ObjectsDirName)
}

// LogsDir returns the repository logs directory.
func (r *Repo) LogsDir() string {
	return filepath.Join(r.path, paths.LogsDirName)
}

// Init creates an empty repository: the config document, the logs directory
// and the default branch, which is then checked out. It returns false without
// creating anything when the repository location is not creatable.
func (r *Repo) Init() (bool, error) {
	exists, err := r.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, fmt.Errorf("%w: %s", types.ErrRepoExists, r.path)
	}
	if !paths.IsPathCreatable(r.fs, r.path) {
		r.log.Warn("repository location is not creatable", zap.String("path", r.path))
		return false, nil
	}

	if err := r.fs.Mkdir(r.path, 0o755); err != nil {
		if os.IsPermission(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating %s: %w", r.path, err)
	}
	if err := r.config.reset(); err != nil {
		return false, err
	}
	if err := r.fs.Mkdir(r.LogsDir(), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", r.LogsDir(), err)
	}
	if err := r.CreateBranch(types.DefaultBranch); err != nil {
		return false, err
	}
	if err := r.CheckoutBranch(types.DefaultBranch); err != nil {
		return false, err
	}

	r.log.Info("repository initialized", zap.String("path", r.path))
	return true, nil
}

// Remove deletes the whole repository directory.
func (r *Repo) Remove() error {
	if err := r.fs.RemoveAll(r.path); err != nil {
		return fmt.Errorf("removing %s: %w", r.path, err)
	}
	r.config.forget()
	r.branch = types.DefaultBranch
	r.log.Info("repository removed", zap.String("path", r.path))
	return nil
}

// Exists reports whether the repository directory exists.
func (r *Repo) Exists() (bool, error) {
	return afero.DirExists(r.fs, r.path)
}

// ListFiles returns every file below the repository directory in lexical
// order.
func (r *Repo) ListFiles() ([]string, error) {
	return listFiles(r.fs, r.path)
}

// ListBranchFiles returns every file below the directory of the named branch.
func (r *Repo) ListBranchFiles(branch string) ([]string, error) {
	cfg, err := r.initializedConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", types.ErrBranchNotFound, branch)
	}
	return listFiles(r.fs, r.BranchDir(branch))
}

// OpenLog opens the repository activity log for appending, creating the logs
// directory when it is missing.
func (r *Repo) OpenLog() (afero.File, error) {
	if err := r.fs.MkdirAll(r.LogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.LogsDir(), err)
	}
	name := filepath.Join(r.LogsDir(), LogFileName)
	f, err := r.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

func listFiles(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	return files, nil
}
