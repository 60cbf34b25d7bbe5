// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/airgap-project/airgap/container"
	"github.com/airgap-project/airgap/convert"
	"github.com/airgap-project/airgap/lib/config"
	"github.com/airgap-project/airgap/lib/fingerprint"
	"github.com/airgap-project/airgap/lib/logarchive"
	"github.com/airgap-project/airgap/supervise"
)

// exitCodeError carries a specific process exit code out of a
// subcommand. The worker's exit code is passed through so scripted
// callers can distinguish failure classes.
type exitCodeError struct {
	code    int
	message string
}

func (e *exitCodeError) Error() string {
	return e.message
}

func asExitCodeError(err error, target **exitCodeError) bool {
	return errors.As(err, target)
}

func convertCmd(args []string, logger *slog.Logger) error {
	var (
		outputPath  string
		ocr         bool
		ocrLanguage string
		configPath  string
		image       string
		enginePath  string
	)

	flagSet := pflag.NewFlagSet("airgap convert", pflag.ContinueOnError)
	flagSet.StringVar(&outputPath, "output-filename", "", "path for the safe PDF (default: <input>-safe.pdf)")
	flagSet.BoolVar(&ocr, "ocr", false, "run OCR on the document")
	flagSet.StringVar(&ocrLanguage, "ocr-lang", "", "OCR language code (default from settings)")
	flagSet.StringVar(&configPath, "config", "", "path to the YAML settings file")
	flagSet.StringVar(&image, "image", "", "converter container image (default from settings)")
	flagSet.StringVar(&enginePath, "engine", "", "container engine executable (default: discover docker/podman)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("convert takes exactly one input document, got %d", flagSet.NArg())
	}
	inputPath := flagSet.Arg(0)

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if image == "" {
		image = settings.Runtime.Image
	}
	if enginePath == "" {
		enginePath = settings.Runtime.Engine
	}
	if ocrLanguage == "" {
		ocrLanguage = settings.OCR.DefaultLanguage
	}
	if outputPath == "" {
		extension := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, extension) + "-safe.pdf"
	}

	engine, err := locateEngine(enginePath)
	if err != nil {
		return &exitCodeError{
			code:    1,
			message: fmt.Sprintf("%s: %v", convert.RuntimeUnavailableMessage, err),
		}
	}
	logger.Debug("using container engine", "name", engine.Name, "path", engine.Path)

	documentFingerprint, err := fingerprint.File(inputPath)
	if err != nil {
		return err
	}
	logger.Debug("input document", "path", inputPath, "fingerprint", documentFingerprint)

	events := &cliEvents{isTTY: term.IsTerminal(int(os.Stdout.Fd()))}

	invoker, err := convert.New(convert.Options{
		Engine: engine,
		Image:  image,
		Events: events,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	startedAt := time.Now()
	result, err := invoker.Convert(context.Background(), convert.Request{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		OCR:         ocr,
		OCRLanguage: ocrLanguage,
	})
	finishedAt := time.Now()

	if settings.Archive.Enabled {
		archiveRun(logger, settings.Archive.Dir, documentFingerprint, result, startedAt, finishedAt)
	}

	if err != nil {
		return &exitCodeError{code: 1, message: fmt.Sprintf("%s: %v", convert.RuntimeUnavailableMessage, err)}
	}
	if result.Outcome.Kind != supervise.Success {
		return &exitCodeError{code: result.Outcome.Code}
	}

	fmt.Printf("Safe PDF written to %s\n", outputPath)
	return nil
}

// locateEngine resolves an explicit engine path or discovers one.
func locateEngine(enginePath string) (container.Engine, error) {
	if enginePath == "" {
		return container.FindEngine()
	}
	info, err := os.Stat(enginePath)
	if err != nil {
		return container.Engine{}, fmt.Errorf("configured engine: %w", err)
	}
	if info.IsDir() {
		return container.Engine{}, fmt.Errorf("configured engine %s is a directory", enginePath)
	}
	return container.Engine{Name: filepath.Base(enginePath), Path: enginePath}, nil
}

// archiveRun writes the diagnostic output-log archive. Archive
// failures are logged, never fatal: the conversion result stands on
// its own.
func archiveRun(logger *slog.Logger, dir string, fp fingerprint.Fingerprint, result convert.Result, startedAt, finishedAt time.Time) {
	name := fmt.Sprintf("%s-%d.log.zst", fp, startedAt.Unix())
	path := filepath.Join(dir, name)
	meta := logarchive.Meta{
		Fingerprint: fp.String(),
		Outcome:     result.Outcome.Kind.String(),
		ExitCode:    result.Outcome.Code,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
	}
	if err := logarchive.Write(path, meta, result.Lines); err != nil {
		logger.Warn("writing output-log archive failed", "path", path, "error", err)
		return
	}
	logger.Debug("output-log archive written", "path", path, "lines", len(result.Lines))
}

// cliEvents renders conversion progress on stdout. Progress carries
// the aggregated text so far; only the unseen suffix is printed, so
// the terminal shows each worker line once, as it arrives.
type cliEvents struct {
	mutex   sync.Mutex
	printed int
	isTTY   bool
}

func (e *cliEvents) Started() {
	if e.isTTY {
		fmt.Println("Converting document in sandbox...")
	}
}

func (e *cliEvents) Progress(text string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.printed > len(text) {
		return
	}
	fmt.Print(text[e.printed:])
	e.printed = len(text)
}

func (e *cliEvents) Finished() {
	if e.isTTY {
		fmt.Println("Conversion finished.")
	}
}

func (e *cliEvents) Failed(message string) {
	fmt.Fprintln(os.Stderr, message)
}
