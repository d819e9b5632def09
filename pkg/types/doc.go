// Package types defines the repository config document, meta index records,
// the closed set of artifact categories, and the standard errors shared by
// the repository store and its front ends.
package types
