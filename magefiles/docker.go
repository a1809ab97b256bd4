//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Container image constants.
const (
	dockerImageName = "survey"
	dockerImageTag  = "latest"
	dockerfileDir   = "magefiles"
	bucketDir       = ".bucket"
	containerBucket = "/storage-bucket"
	containerPort   = "8080"
)

// Image groups container targets (build, run).
type Image mg.Namespace

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable.
func containerRuntime() string {
	for _, name := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if exec.Command(name, "info").Run() != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s found on PATH but not usable (is the daemon/machine running?)\n", name)
			continue
		}
		return name
	}
	return ""
}

// imageRef returns the full image reference (name:tag).
func imageRef() string {
	return dockerImageName + ":" + dockerImageTag
}

func requireRuntime() (string, error) {
	rt := containerRuntime()
	if rt == "" {
		return "", fmt.Errorf("no container runtime found (tried podman, docker)")
	}
	return rt, nil
}

// Build builds the container image from magefiles/Dockerfile.
// The build context is the repo root.
func (Image) Build() error {
	rt, err := requireRuntime()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Building container image...")
	cmd := exec.Command(rt, "build",
		"-t", imageRef(),
		"-f", filepath.Join(dockerfileDir, "Dockerfile"),
		".")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Run starts the server in a container. The local .bucket/ directory is
// mounted at /storage-bucket so responses survive container restarts.
func (Image) Run() error {
	mg.Deps(Image.Build)
	rt, err := requireRuntime()
	if err != nil {
		return err
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	bucket := filepath.Join(repoRoot, bucketDir)
	if err := os.MkdirAll(bucket, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", bucket, err)
	}

	cmd := exec.Command(rt, "run", "--rm", "-i",
		"-p", containerPort+":"+containerPort,
		"-e", "PORT="+containerPort,
		"-v", bucket+":"+containerBucket,
		imageRef(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
