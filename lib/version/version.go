// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes the build version of airgap binaries.
package version

// version is overridden at build time:
//
//	go build -ldflags "-X github.com/airgap-project/airgap/lib/version.version=v1.2.3"
var version = "dev"

// Info returns the version string for this build.
func Info() string {
	return version
}
