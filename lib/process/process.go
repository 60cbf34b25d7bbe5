// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for airgap
// commands: fatal error reporting to stderr for failures that happen
// before or after the structured logger is available. All other output
// in non-CLI code goes through slog or the caller event interface.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
