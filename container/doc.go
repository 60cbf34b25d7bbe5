// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package container locates the container engine used to isolate
// conversion workers and builds the engine-level argument vector that
// wraps a worker invocation in the standard isolation flags.
//
// The engine is an external, opaque executable (docker or podman).
// Nothing in this package inspects or trusts files the worker
// produces; output validation is the caller's concern.
package container
