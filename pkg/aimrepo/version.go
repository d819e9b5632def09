// Package aimrepo holds the public release metadata of the aim repository
// tool.
package aimrepo

// Version is the current release.
const Version = "0.3.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/aimrepo"
