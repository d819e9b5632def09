// Package paths resolves the repository root and the CLI settings directory.
package paths

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// Repository layout names.
const (
	RepoDirName    = ".aim"
	ConfigFileName = "config.json"
	LogsDirName    = "logs"
	ObjectsDirName = "objects"
	MetaFileName   = "meta.json"
)

// Environment variable naming the CLI settings directory.
const EnvConfigDir = "AIM_CONFIG_DIR"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// FindRepoRoot walks from start towards the filesystem root and returns the
// first directory that contains a RepoDirName directory. found is false when
// no repository exists on the path; that is not an error.
func FindRepoRoot(fsys afero.Fs, start string) (root string, found bool, err error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, err
	}
	for {
		ok, err := afero.DirExists(fsys, filepath.Join(dir, RepoDirName))
		if err != nil {
			return "", false, err
		}
		if ok {
			return dir, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// IsPathCreatable reports whether path does not exist yet and its parent is
// a writable directory. The probe file it creates is removed before return.
func IsPathCreatable(fsys afero.Fs, path string) bool {
	if _, err := fsys.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return false
	}
	parent := filepath.Dir(path)
	isDir, err := afero.IsDir(fsys, parent)
	if err != nil || !isDir {
		return false
	}
	probe, err := afero.TempFile(fsys, parent, ".aim-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = fsys.Remove(name)
	return true
}

// DefaultConfigDir returns the platform-specific default settings directory.
//
// Linux:   $XDG_CONFIG_HOME/aim (fallback ~/.config/aim)
// macOS:   ~/Library/Application Support/aim
// Windows: %APPDATA%/aim
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "aim"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "aim"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "aim"), nil
	}
}

// ResolveConfigDir returns the settings directory following the precedence
// chain: flag > AIM_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveStartDir returns the directory the repository search starts from:
// the flag when set, otherwise the working directory.
func ResolveStartDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	return os.Getwd()
}
