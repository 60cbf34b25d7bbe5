// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package convert

// Events receives the progress of one conversion. Implemented by the
// external caller (GUI or CLI).
//
// Call ordering per invocation: Started first, then zero or more
// Progress calls as output lines arrive, then exactly one of Finished
// or Failed — always last, never both.
//
// Progress is called from the supervisor's drain goroutines;
// implementations must be safe for concurrent use. Started, Finished
// and Failed are called from the goroutine running Convert.
type Events interface {
	// Started fires once the worker process is launched.
	Started()

	// Progress carries the aggregated output text captured so far
	// (both streams, interleave order). One call per captured line.
	Progress(text string)

	// Finished fires when the worker completed successfully.
	Finished()

	// Failed fires with a human-readable message when the conversion
	// did not succeed. Authorization denial gets a fixed message
	// distinct from raw exit-code failures.
	Failed(message string)
}

// NopEvents is an Events implementation that ignores everything.
// Useful for callers that only want the returned Result.
type NopEvents struct{}

func (NopEvents) Started()        {}
func (NopEvents) Progress(string) {}
func (NopEvents) Finished()       {}
func (NopEvents) Failed(string)   {}
