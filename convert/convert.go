// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/airgap-project/airgap/container"
	"github.com/airgap-project/airgap/supervise"
)

// In-container paths for the worker's view of the document. The input
// file and the output directory are bind mounted here; the worker
// never sees host paths.
const (
	workerInputPath = "/tmp/input_file"
	workerOutputDir = "/safezone"
)

// AuthorizationFailedMessage is the fixed failure message for a
// declined privilege prompt. Callers match on Outcome.Kind rather than
// this string; the constant exists so the message is identical across
// every surface that shows it.
const AuthorizationFailedMessage = "Authorization failed"

// RuntimeUnavailableMessage is the failure message when the container
// engine itself could not be started, as opposed to the worker running
// and failing.
const RuntimeUnavailableMessage = "The sandbox runtime could not be started"

// Options configures an Invoker.
type Options struct {
	// Engine is the located container engine.
	Engine container.Engine

	// Image is the converter container image reference.
	Image string

	// Events receives progress and terminal notifications. Defaults
	// to NopEvents.
	Events Events

	// Logger receives command lines and worker output at debug level.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Invoker runs document conversions. One supervised engine process per
// Convert call; an Invoker may be reused for sequential conversions
// but a single Convert call owns its supervisor exclusively.
type Invoker struct {
	engine container.Engine
	image  string
	events Events
	logger *slog.Logger
}

// New creates an Invoker.
func New(options Options) (*Invoker, error) {
	if options.Engine.Path == "" {
		return nil, fmt.Errorf("container engine is required")
	}
	if options.Image == "" {
		return nil, fmt.Errorf("container image is required")
	}
	events := options.Events
	if events == nil {
		events = NopEvents{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		engine: options.Engine,
		image:  options.Image,
		events: events,
		logger: logger,
	}, nil
}

// Result is what a conversion run produced. Lines always holds the
// full interleaved output captured before termination, success or
// failure — partial output is never discarded. When Convert returns
// an error the worker never reported an exit code and Outcome.Kind is
// supervise.Unclassified.
type Result struct {
	Outcome supervise.Outcome
	Lines   []supervise.Line
}

// Text returns the captured output as aggregated text, one line per
// captured line in interleave order.
func (r Result) Text() string {
	var builder strings.Builder
	for _, line := range r.Lines {
		builder.WriteString(line.Text)
		builder.WriteByte('\n')
	}
	return builder.String()
}

// Convert runs one conversion to completion.
//
// Event sequence: Started, then one Progress per captured output line,
// then exactly one of Finished or Failed. A classified worker failure
// (authorization denied, nonzero exit) is reported through the Result
// and the Failed event, not the error return. The error return is for
// invalid requests and for the sandbox runtime failing to start or be
// waited on.
func (inv *Invoker) Convert(ctx context.Context, request Request) (Result, error) {
	if err := request.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid conversion request: %w", err)
	}

	outputDir, err := filepath.Abs(filepath.Dir(request.OutputPath))
	if err != nil {
		return Result{}, fmt.Errorf("resolving output directory: %w", err)
	}
	inputPath, err := filepath.Abs(request.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("resolving input path: %w", err)
	}

	mounts := []container.Mount{
		{Source: inputPath, Dest: workerInputPath},
		{Source: outputDir, Dest: workerOutputDir},
	}
	worker := workerArgs(
		workerInputPath,
		filepath.Join(workerOutputDir, filepath.Base(request.OutputPath)),
		request.OCR,
		request.OCRLanguage,
	)
	argv := inv.engine.RunArgs(inv.image, mounts, worker)

	// Progress carries the aggregated text, not the single new line:
	// callers display the whole log so far. The closure reads the
	// supervisor's log, assigned below before Start makes the first
	// line possible.
	var output *supervise.Log
	supervisor := supervise.New(supervise.Options{
		Logger: inv.logger,
		OnLine: func(supervise.Line) {
			inv.events.Progress(output.Text())
		},
	})
	output = supervisor.Output()

	inv.events.Started()

	if err := supervisor.Start(ctx, argv); err != nil {
		inv.events.Failed(RuntimeUnavailableMessage)
		return Result{Lines: output.Lines()}, err
	}

	code, err := supervisor.Wait()
	if err != nil {
		inv.events.Failed(fmt.Sprintf("Conversion failed: %v", err))
		return Result{Lines: output.Lines()}, err
	}

	outcome := supervise.Classify(code)
	result := Result{Outcome: outcome, Lines: output.Lines()}

	inv.logger.Debug("worker exited",
		"code", code,
		"outcome", outcome.Kind,
		"lines", len(result.Lines),
	)

	switch outcome.Kind {
	case supervise.Success:
		inv.events.Finished()
	case supervise.AuthorizationDenied:
		inv.events.Failed(AuthorizationFailedMessage)
	default:
		inv.events.Failed(fmt.Sprintf("Conversion failed with exit code %d", outcome.Code))
	}

	return result, nil
}
