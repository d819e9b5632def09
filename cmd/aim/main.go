// Package main provides the aim CLI.
package main

import "github.com/mesh-intelligence/aimrepo/internal/cli"

func main() {
	cli.Execute()
}
