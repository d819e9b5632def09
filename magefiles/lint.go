// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binLint = "golangci-lint"

// lintDirs are the source trees checked by Fmt.
var lintDirs = []string{"cmd", "internal", "pkg", "magefiles"}

// Fmt fails when any source file is not gofmt clean.
func Fmt() error {
	args := append([]string{"-l"}, lintDirs...)
	out, err := sh.Output("gofmt", args...)
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet over the module and the mage targets.
func Vet() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "vet", "-tags", "mage", "./magefiles")
}

// Lint checks formatting and vet, then runs golangci-lint.
func Lint() error {
	mg.SerialDeps(Fmt, Vet)
	return sh.RunV(binLint, "run", "./...")
}
