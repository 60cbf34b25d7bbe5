// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Engine is a located container engine executable.
type Engine struct {
	// Name is the engine's short name ("docker" or "podman").
	Name string

	// Path is the absolute path of the engine executable.
	Path string
}

// macOSDockerPath is where Docker Desktop installs its CLI on macOS.
// Checked before PATH because GUI-launched processes on macOS often
// run without /usr/local/bin on PATH.
const macOSDockerPath = "/usr/local/bin/docker"

// FindEngine locates a container engine, preferring docker over
// podman. The returned error means no engine is available at all; the
// caller should surface it as "the sandbox runtime could not be
// started", not as a conversion failure.
func FindEngine() (Engine, error) {
	if runtime.GOOS == "darwin" {
		if info, err := os.Stat(macOSDockerPath); err == nil && !info.IsDir() {
			return Engine{Name: "docker", Path: macOSDockerPath}, nil
		}
	}

	for _, name := range []string{"docker", "podman"} {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return Engine{Name: name, Path: path}, nil
	}

	return Engine{}, fmt.Errorf("no container engine found: neither docker nor podman is on PATH")
}

// Mount is a read declaration for one bind mount into the worker
// container.
type Mount struct {
	// Source is the host path.
	Source string

	// Dest is the in-container path.
	Dest string
}

// flag renders the mount as a docker/podman -v argument value.
func (m Mount) flag() string {
	return m.Source + ":" + m.Dest
}

// RunArgs builds the full engine argument vector for running
// workerArgs inside image with the standard isolation flags: no
// network, no privilege escalation, and only the given bind mounts.
// The result starts with the engine path itself, ready to hand to a
// supervisor unchanged. Pure argv construction; no shell is ever
// involved.
func (e Engine) RunArgs(image string, mounts []Mount, workerArgs []string) []string {
	args := []string{
		e.Path,
		"run",
		"--rm",
		"--network", "none",
		"--security-opt=no-new-privileges:true",
	}
	for _, mount := range mounts {
		args = append(args, "-v", mount.flag())
	}
	args = append(args, image)
	args = append(args, workerArgs...)
	return args
}
