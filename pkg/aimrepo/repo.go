package aimrepo

import (
	"fmt"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// Repo is a handle bound to one repository and its active branch.
type Repo = repo.Repo

// Option configures a repository handle; see WithFs and WithLogger.
type Option = repo.Option

// Handle options.
var (
	WithFs     = repo.WithFs
	WithLogger = repo.WithLogger
)

// Write modes for Repo.StoreFile.
const (
	ModeAppend    = repo.ModeAppend
	ModeOverwrite = repo.ModeOverwrite
)

// Open binds a handle to the repository in root without creating anything.
//
// Example:
//
//	r, err := aimrepo.Init(".")
//	if err != nil { ... }
//	r, err = aimrepo.Open(".")
//	if err != nil { ... }
//	_, err = r.StoreFile("loss", types.CategoryMetrics, 0.42, aimrepo.ModeAppend, nil)
func Open(root string, opts ...Option) (*Repo, error) {
	return repo.New(root, opts...)
}

// Init creates a repository in root and returns a handle on its master
// branch. It fails with types.ErrPermissionDenied when root is not writable.
func Init(root string, opts ...Option) (*Repo, error) {
	r, err := repo.New(root, opts...)
	if err != nil {
		return nil, err
	}
	ok, err := r.Init()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot create %s", types.ErrPermissionDenied, r.Path())
	}
	return r, nil
}

// Find opens the closest repository at or above start. It fails with
// types.ErrNoRepository when there is none.
func Find(start string, opts ...Option) (*Repo, error) {
	r, found, err := repo.Find(start, opts...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", types.ErrNoRepository, start)
	}
	return r, nil
}
