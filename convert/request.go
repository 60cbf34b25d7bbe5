// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airgap-project/airgap/lib/ocrlang"
)

// Request describes one conversion. Value type; callers construct it
// per conversion and the invoker never mutates it.
type Request struct {
	// InputPath is the untrusted document on the host.
	InputPath string

	// OutputPath is where the safe PDF is written.
	OutputPath string

	// OCR enables text recognition in the worker.
	OCR bool

	// OCRLanguage is the tesseract language code used when OCR is
	// enabled. Must be one of the supported codes.
	OCRLanguage string
}

// Validate checks the request before anything is launched. The input
// must exist, the output must land in an existing directory, and the
// OCR language must be a supported code when OCR is on.
func (r Request) Validate() error {
	if r.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	info, err := os.Stat(r.InputPath)
	if err != nil {
		return fmt.Errorf("input document: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input document %s is a directory", r.InputPath)
	}

	if r.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	outputDir := filepath.Dir(r.OutputPath)
	if info, err := os.Stat(outputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("output directory %s does not exist", outputDir)
	}

	if r.OCR && !ocrlang.Supported(r.OCRLanguage) {
		return fmt.Errorf("unsupported OCR language %q", r.OCRLanguage)
	}

	return nil
}

// workerArgs builds the worker's argument vector: the fixed convert
// subcommand followed by explicit flags. Deterministic for a given
// request, and always a vector — no shell interpolation anywhere.
//
// The paths passed here are the worker's in-container view, not the
// host paths; see [Invoker.Convert] for the mount mapping.
func workerArgs(inputPath, outputPath string, ocr bool, ocrLanguage string) []string {
	ocrFlag := "0"
	if ocr {
		ocrFlag = "1"
	}
	return []string{
		"convert",
		"--input-filename", inputPath,
		"--output-filename", outputPath,
		"--ocr", ocrFlag,
		"--ocr-lang", ocrLanguage,
	}
}
