// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Options configures a Supervisor.
type Options struct {
	// Logger receives the constructed command line and every captured
	// output line at debug level. Defaults to slog.Default().
	Logger *slog.Logger

	// OnLine, when set, is called for every captured line after it has
	// been appended to the output log. Called from the drain
	// goroutines; implementations must be safe for concurrent use.
	OnLine func(Line)

	// Stdout and Stderr, when set, receive the child's streams
	// directly. Setting either disables draining entirely: the
	// supervisor attaches the caller's writers and never touches the
	// streams, and the output log stays empty. This is the diagnostic
	// escape hatch for callers that want raw stream access; a stream
	// whose writer is left nil goes to the null device.
	Stdout io.Writer
	Stderr io.Writer
}

// Supervisor owns the full lifecycle of one sandboxed child process.
// Only the supervisor ever reads from the child's pipes; once drains
// are attached no other component is given pipe access.
//
// A Supervisor is single-use: Start once, Wait once.
type Supervisor struct {
	logger *slog.Logger
	onLine func(Line)
	stdout io.Writer
	stderr io.Writer

	output  *Log
	command *exec.Cmd
	drains  sync.WaitGroup
	started bool
}

// New creates a Supervisor.
func New(options Options) *Supervisor {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		logger: logger,
		onLine: options.OnLine,
		stdout: options.Stdout,
		stderr: options.Stderr,
		output: NewLog(),
	}
}

// Output returns the supervisor's output log. The log accumulates
// lines while the child runs and holds the full interleaved record
// after Wait returns, regardless of outcome.
func (s *Supervisor) Output() *Log {
	return s.output
}

// PID returns the child's process ID, or 0 before a successful Start.
func (s *Supervisor) PID() int {
	if s.command == nil || s.command.Process == nil {
		return 0
	}
	return s.command.Process.Pid
}

// Start launches argv[0] with the remaining elements as its argument
// vector. No shell is involved at any point. Both stream drains are
// running before Start returns, so the child can never fill a pipe
// buffer while the supervisor is blocked elsewhere.
//
// A failure to start the executable (not found, permission denied,
// engine daemon unreachable) is returned as a *LaunchError.
func (s *Supervisor) Start(ctx context.Context, argv []string) error {
	if s.started {
		return errors.New("supervisor already started")
	}
	if len(argv) == 0 {
		return errors.New("empty argument vector")
	}
	s.started = true

	command := exec.CommandContext(ctx, argv[0], argv[1:]...)

	// Own process group so Terminate can take down the engine's
	// helper processes along with the engine itself.
	command.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	s.logger.Debug("launching sandboxed worker", "argv", argv)

	if s.stdout != nil || s.stderr != nil {
		// Caller-owned streams: no pipes, no drains, no log capture.
		command.Stdout = s.stdout
		command.Stderr = s.stderr
		if err := command.Start(); err != nil {
			return &LaunchError{Path: argv[0], Err: err}
		}
		s.command = command
		return nil
	}

	stdout, err := command.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := command.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := command.Start(); err != nil {
		return &LaunchError{Path: argv[0], Err: err}
	}
	s.command = command

	s.drains.Add(2)
	go func() {
		defer s.drains.Done()
		drain(stdout, Stdout, s.output, s.onLine, s.logger)
	}()
	go func() {
		defer s.drains.Done()
		drain(stderr, Stderr, s.output, s.onLine, s.logger)
	}()

	return nil
}

// Wait blocks until the child has exited and both drains have flushed
// all buffered output, then returns the exit code. The ordering is
// strict: by the time Wait returns, every line the child wrote is in
// the output log. Callers therefore never observe a "finished" state
// with log lines still in flight.
//
// A nonzero exit is not an error here; the code is data for
// [Classify]. A child killed by a signal reports code -1. The error
// return covers wait-machinery failures only.
func (s *Supervisor) Wait() (int, error) {
	if s.command == nil {
		return 0, errors.New("supervisor not started")
	}

	// Drains first. They finish when the child's pipe ends close,
	// which the OS does at process exit, so this does not outlive the
	// child. cmd.Wait closes the parent pipe ends; calling it before
	// the drains are done would race them against that close.
	s.drains.Wait()

	err := s.command.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("waiting for worker: %w", err)
	}
	return 0, nil
}

// Terminate forcibly ends the child and everything in its process
// group. The kill closes the child's pipe ends, which unblocks both
// drains, so a Wait in flight returns promptly rather than hanging.
// Safe to call after exit; the resulting ESRCH is not an error worth
// reporting.
func (s *Supervisor) Terminate() error {
	if s.command == nil || s.command.Process == nil {
		return errors.New("supervisor not started")
	}

	pid := s.command.Process.Pid
	err := unix.Kill(-pid, unix.SIGKILL)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	// Group kill failed for another reason; fall back to the direct
	// child.
	if killErr := s.command.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
		return fmt.Errorf("killing worker process %d: %w", pid, killErr)
	}
	return nil
}
