// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package convert orchestrates one document conversion end to end: it
// validates the request, builds the worker argument vector, drives a
// supervised container engine run, and reports progress and exactly
// one terminal event to its caller.
//
// The conversion itself (rendering, OCR, PDF assembly) happens inside
// the isolated worker and is opaque to this package. The worker's
// output text and exit code are the only signals consumed.
package convert
