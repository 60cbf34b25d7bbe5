// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"errors"
	"fmt"
)

// LaunchError means the sandbox runtime itself could not be invoked:
// the engine binary is missing, not executable, or its daemon is
// unreachable. Distinct from a worker that ran and failed — callers
// present "the sandbox runtime could not be started" for this, not a
// conversion failure.
type LaunchError struct {
	// Path is the executable the supervisor tried to start.
	Path string

	// Err is the underlying start failure.
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("starting sandbox runtime %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// AsLaunchError checks whether err is (or wraps) a LaunchError.
func AsLaunchError(err error) (*LaunchError, bool) {
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		return launchErr, true
	}
	return nil, false
}
