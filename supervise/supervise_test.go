// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/airgap-project/airgap/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireShell(t *testing.T) string {
	t.Helper()
	shell, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh on PATH")
	}
	return shell
}

// runShell supervises `sh -c script` to completion and returns the
// exit code and the supervisor.
func runShell(t *testing.T, script string, options Options) (int, *Supervisor) {
	t.Helper()
	shell := requireShell(t)

	if options.Logger == nil {
		options.Logger = testLogger()
	}
	supervisor := New(options)
	if err := supervisor.Start(context.Background(), []string{shell, "-c", script}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	code, err := supervisor.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return code, supervisor
}

func TestWaitReportsExitCode(t *testing.T) {
	code, _ := runShell(t, "exit 0", Options{})
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	code, _ = runShell(t, "exit 3", Options{})
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}

	code, _ = runShell(t, "exit 127", Options{})
	if code != 127 {
		t.Errorf("exit code = %d, want 127", code)
	}
	if outcome := Classify(code); outcome.Kind != AuthorizationDenied {
		t.Errorf("Classify(127).Kind = %v, want AuthorizationDenied", outcome.Kind)
	}
}

func TestOutputCapturedFromBothStreams(t *testing.T) {
	code, supervisor := runShell(t, `echo "> step1"; echo "warn" >&2`, Options{})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	lines := supervisor.Output().Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}

	byText := map[string]Stream{}
	for _, line := range lines {
		byText[line.Text] = line.Stream
	}
	if byText["> step1"] != Stdout {
		t.Errorf("stdout line tagged %q", byText["> step1"])
	}
	if byText["warn"] != Stderr {
		t.Errorf("stderr line tagged %q", byText["warn"])
	}
}

// TestLargeOutputDoesNotDeadlock is the regression test for the pipe
// buffer hazard: a child that writes far more than an OS pipe buffer
// to both streams must still be waitable, with every line captured.
func TestLargeOutputDoesNotDeadlock(t *testing.T) {
	const perStream = 50000
	script := `seq 1 50000; seq 1 50000 >&2`

	done := make(chan struct{})
	var code int
	var supervisor *Supervisor
	go func() {
		defer close(done)
		code, supervisor = runShell(t, script, Options{})
	}()
	testutil.RequireClosed(t, done, 60*time.Second, "Wait hung on large output")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	lines := supervisor.Output().Lines()
	if len(lines) != 2*perStream {
		t.Fatalf("captured %d lines, want %d", len(lines), 2*perStream)
	}

	// Per-stream content arrived complete and in order.
	nextOut, nextErr := 1, 1
	for _, line := range lines {
		switch line.Stream {
		case Stdout:
			if line.Text != strconv.Itoa(nextOut) {
				t.Fatalf("stdout line %q, want %q", line.Text, strconv.Itoa(nextOut))
			}
			nextOut++
		case Stderr:
			if line.Text != strconv.Itoa(nextErr) {
				t.Fatalf("stderr line %q, want %q", line.Text, strconv.Itoa(nextErr))
			}
			nextErr++
		}
	}
}

// TestOverLongLineDoesNotStallWait covers the other pipe buffer
// hazard: a single line far past the per-line cap. The line must be
// recorded truncated, the rest of the stream must keep flowing, and
// Wait must still return.
func TestOverLongLineDoesNotStallWait(t *testing.T) {
	script := `printf 'before\n'; head -c 4194304 /dev/zero | tr '\0' 'a'; printf '\nafter\n'`

	done := make(chan struct{})
	var code int
	var supervisor *Supervisor
	go func() {
		defer close(done)
		code, supervisor = runShell(t, script, Options{})
	}()
	testutil.RequireClosed(t, done, 60*time.Second, "Wait hung on over-long line")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	lines := supervisor.Output().Lines()
	if len(lines) != 3 {
		t.Fatalf("captured %d lines, want 3", len(lines))
	}
	if lines[0].Text != "before" {
		t.Errorf("first line = %q, want %q", lines[0].Text, "before")
	}
	if got := len(lines[1].Text); got != maxLineBytes {
		t.Errorf("over-long line recorded with %d bytes, want cap %d", got, maxLineBytes)
	}
	if strings.Trim(lines[1].Text, "a") != "" {
		t.Errorf("over-long line carries unexpected bytes")
	}
	if lines[2].Text != "after" {
		t.Errorf("line after the over-long one = %q, want %q", lines[2].Text, "after")
	}
}

func TestOnLineSinkObservesEveryLine(t *testing.T) {
	seen := make(chan Line, 16)
	code, _ := runShell(t, `echo a; echo b; echo c >&2`, Options{
		OnLine: func(line Line) { seen <- line },
	})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	close(seen)

	var texts []string
	for line := range seen {
		texts = append(texts, line.Text)
	}
	if len(texts) != 3 {
		t.Errorf("sink saw %d lines, want 3: %v", len(texts), texts)
	}
}

func TestTerminateUnblocksWait(t *testing.T) {
	shell := requireShell(t)

	firstLine := make(chan struct{}, 1)
	supervisor := New(Options{
		Logger: testLogger(),
		OnLine: func(Line) {
			select {
			case firstLine <- struct{}{}:
			default:
			}
		},
	})
	err := supervisor.Start(context.Background(),
		[]string{shell, "-c", `while true; do echo tick; sleep 0.05; done`})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitResult := make(chan int, 1)
	go func() {
		code, _ := supervisor.Wait()
		waitResult <- code
	}()

	testutil.RequireReceive(t, firstLine, 10*time.Second, "waiting for first output line")

	if err := supervisor.Terminate(); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}

	code := testutil.RequireReceive(t, waitResult, 10*time.Second, "Wait did not return after Terminate")
	if outcome := Classify(code); outcome.Kind != GenericFailure {
		t.Errorf("killed child classified as %v, want GenericFailure", outcome.Kind)
	}
	if supervisor.Output().Len() == 0 {
		t.Errorf("no output captured before termination")
	}
}

func TestCallerOwnedStreamsDisableDraining(t *testing.T) {
	shell := requireShell(t)

	var stdout, stderr bytes.Buffer
	supervisor := New(Options{
		Logger: testLogger(),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	err := supervisor.Start(context.Background(),
		[]string{shell, "-c", `echo raw-out; echo raw-err >&2`})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	code, err := supervisor.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if got := stdout.String(); got != "raw-out\n" {
		t.Errorf("stdout buffer = %q, want %q", got, "raw-out\n")
	}
	if got := stderr.String(); got != "raw-err\n" {
		t.Errorf("stderr buffer = %q, want %q", got, "raw-err\n")
	}
	if supervisor.Output().Len() != 0 {
		t.Errorf("output log populated in caller-owned mode: %d lines", supervisor.Output().Len())
	}
}

func TestInvalidUTF8IsReplacedNotDropped(t *testing.T) {
	code, supervisor := runShell(t, `printf 'ok \377\376 end\n'`, Options{})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	lines := supervisor.Output().Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0].Text, "�") {
		t.Errorf("invalid bytes not replaced: %q", lines[0].Text)
	}
	if !strings.HasPrefix(lines[0].Text, "ok ") || !strings.HasSuffix(lines[0].Text, " end") {
		t.Errorf("surrounding valid text damaged: %q", lines[0].Text)
	}
}

func TestReadLineBoundaries(t *testing.T) {
	// Buffer smaller than the lines, so reads span refills.
	reader := bufio.NewReaderSize(strings.NewReader("plain\ncrlf line\r\nlast without newline"), 16)

	want := []string{"plain", "crlf line", "last without newline"}
	for i, wantText := range want {
		text, truncated, err := readLine(reader)
		if text != wantText {
			t.Errorf("line %d = %q, want %q", i, text, wantText)
		}
		if truncated {
			t.Errorf("line %d reported truncated", i)
		}
		if i < len(want)-1 && err != nil {
			t.Fatalf("line %d: unexpected error %v", i, err)
		}
	}
	if _, _, err := readLine(reader); !errors.Is(err, io.EOF) {
		t.Errorf("after exhaustion err = %v, want io.EOF", err)
	}
}

func TestStartMissingExecutableIsLaunchError(t *testing.T) {
	supervisor := New(Options{Logger: testLogger()})
	err := supervisor.Start(context.Background(), []string{"/nonexistent/container-engine", "run"})
	if err == nil {
		t.Fatalf("Start succeeded for a missing executable")
	}
	launchErr, ok := AsLaunchError(err)
	if !ok {
		t.Fatalf("error is %T, want *LaunchError: %v", err, err)
	}
	if launchErr.Path != "/nonexistent/container-engine" {
		t.Errorf("LaunchError.Path = %q", launchErr.Path)
	}
}

func TestStartTwiceFails(t *testing.T) {
	shell := requireShell(t)
	supervisor := New(Options{Logger: testLogger()})
	if err := supervisor.Start(context.Background(), []string{shell, "-c", "true"}); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := supervisor.Start(context.Background(), []string{shell, "-c", "true"}); err == nil {
		t.Errorf("second Start succeeded, want error")
	}
	if _, err := supervisor.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}
