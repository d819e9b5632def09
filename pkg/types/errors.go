package types

import "errors"

// Repository errors.
var (
	ErrNoRepository     = errors.New("not an aim repository")
	ErrRepoExists       = errors.New("repository already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrCorrupt          = errors.New("corrupt document")
)

// Branch lifecycle errors.
var (
	ErrInvalidBranchName = errors.New("invalid branch name: must be at least 2 characters and contain only latin letters, numbers, dash and underscore")
	ErrBranchExists      = errors.New("branch already exists")
	ErrBranchNotFound    = errors.New("branch does not exist")
	ErrProtectedBranch   = errors.New("branch can not be deleted")
)

// Remote errors.
var (
	ErrInvalidRemote  = errors.New("invalid remote")
	ErrRemoteExists   = errors.New("remote already exists")
	ErrRemoteNotFound = errors.New("remote not found")
)

// Object store errors.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidMode     = errors.New("invalid write mode")
	ErrInvalidName     = errors.New("invalid object name")
)
