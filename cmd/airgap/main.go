// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// airgap converts untrusted documents into safe PDFs by running the
// conversion inside an isolated container.
//
// Usage:
//
//	airgap convert [flags] <input-document>
//	airgap languages
//	airgap version
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/airgap-project/airgap/lib/process"
	"github.com/airgap-project/airgap/lib/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("AIRGAP_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert":
		err = convertCmd(args, logger)
	case "languages":
		err = languagesCmd(args)
	case "version", "--version", "-v":
		fmt.Printf("airgap %s\n", version.Info())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr *exitCodeError
		if ok := asExitCodeError(err, &exitErr); ok {
			if exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			os.Exit(exitErr.code)
		}
		process.Fatal(err)
	}
}

func printUsage() {
	fmt.Print(`airgap - Convert untrusted documents to safe PDFs in an isolated container

USAGE
    airgap <command> [flags] [args...]

COMMANDS
    convert      Convert a document to a safe PDF
    languages    List supported OCR language codes
    version      Show version

EXAMPLES
    # Convert a document, writing <name>-safe.pdf next to it
    airgap convert report.docx

    # Convert with OCR in German, explicit output path
    airgap convert scan.pdf --ocr --ocr-lang deu --output-filename safe.pdf

ENVIRONMENT
    AIRGAP_CONFIG   Path to the YAML settings file
    AIRGAP_DEBUG    Enable debug logging
`)
}
