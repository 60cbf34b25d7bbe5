// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervise owns the lifecycle of one sandboxed conversion
// process: launching the container engine command, draining its stdout
// and stderr concurrently so neither pipe buffer can stall the child,
// and classifying the terminal exit code into a conversion outcome.
//
// The central correctness property is that [Supervisor.Wait] never
// returns before both stream drains have observed end-of-stream. A
// child that writes more than an OS pipe buffer's worth of output
// before the parent reads it will block forever if the parent is
// simultaneously blocked in wait(); the supervisor starts both drains
// before any wait to rule this out.
//
// Exactly one process is supervised per Supervisor. Concurrent
// conversions use independent Supervisor instances with no shared
// state.
package supervise
