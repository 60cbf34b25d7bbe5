// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for airgap packages.
//
// Supervisor tests coordinate with real child processes through
// channels; every receive needs a timeout safety valve so a regression
// hangs the failing test, not the whole run. These helpers fold the
// select-with-timeout into one call that names what was being awaited.
package testutil

import (
	"testing"
	"time"
)

// RequireReceive reads one value from ch, or fails the test after
// timeout. what describes the awaited value and appears in the failure
// message.
func RequireReceive[T any](t *testing.T, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while %s", what)
		}
		return v
	case <-timer.C:
		t.Fatalf("timed out after %v: %s", timeout, what)
	}
	panic("unreachable")
}

// RequireClosed waits for ch to close (or deliver a value), or fails
// the test after timeout. For done channels that signal by closing.
func RequireClosed(t *testing.T, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("timed out after %v: %s", timeout, what)
	}
}
