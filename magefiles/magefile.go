//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the survey project using Mage.
//
// Usage:
//
//	mage build             Compile survey binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude integration)
//	mage test:integration  Run only integration tests (builds first)
//	mage test:race         Run unit tests with the race detector
//	mage lint              Check gofmt, then run go vet and golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install survey to GOPATH/bin
//	mage image:build       Build the container image
//	mage image:run         Run the server in a container with a bound storage bucket
//	mage stats             Print Go LOC and documentation word counts
package main
