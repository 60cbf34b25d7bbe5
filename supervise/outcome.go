// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import "fmt"

// OutcomeKind is the semantic class of a worker's terminal exit. The
// zero value is Unclassified, so an Outcome that was never derived
// from an exit code cannot be mistaken for a successful one.
type OutcomeKind int

const (
	// Unclassified means no exit code was ever classified. It is the
	// kind of a zero Outcome, seen when a run failed before the worker
	// could exit.
	Unclassified OutcomeKind = iota

	// Success means the worker exited 0.
	Success

	// AuthorizationDenied means the privilege-elevation step needed
	// to start the sandbox runtime was rejected by the user or the
	// OS.
	AuthorizationDenied

	// GenericFailure means the worker ran and exited nonzero for any
	// other reason. The raw code is preserved for diagnostics.
	GenericFailure
)

// String returns the kind's name for log output.
func (kind OutcomeKind) String() string {
	switch kind {
	case Unclassified:
		return "unclassified"
	case Success:
		return "success"
	case AuthorizationDenied:
		return "authorization_denied"
	case GenericFailure:
		return "generic_failure"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// Outcome is the classified result of one worker run. Derived once,
// from the exit code Wait reported, and never mutated afterward.
type Outcome struct {
	Kind OutcomeKind

	// Code is the raw exit code the classification was derived from.
	Code int
}

// Classify maps a raw exit code to an Outcome. Total and
// deterministic; needs no context beyond the code itself.
//
// Codes 126 and 127 are the POSIX shell convention for "found but not
// executable" and "not found". In the sandbox-authorization flow they
// surface when the privilege prompt for starting the container engine
// is declined. Container engines also reuse these codes for exec
// failures inside the container, so the mapping is a convention, not
// a contract of the engine.
func Classify(code int) Outcome {
	switch code {
	case 0:
		return Outcome{Kind: Success, Code: 0}
	case 126, 127:
		return Outcome{Kind: AuthorizationDenied, Code: code}
	default:
		return Outcome{Kind: GenericFailure, Code: code}
	}
}
