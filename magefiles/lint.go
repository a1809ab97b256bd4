//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binLint  = "golangci-lint"
	binGofmt = "gofmt"
)

// Lint checks formatting, then runs go vet and golangci-lint.
func Lint() error {
	unformatted, err := sh.Output(binGofmt, "-l", "cmd", "internal", "pkg", "tests")
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(unformatted); files != "" {
		return fmt.Errorf("files need gofmt:\n%s", files)
	}
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}
