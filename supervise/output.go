// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"strings"
	"sync"
)

// Stream identifies which child stream a captured line came from.
type Stream string

const (
	// Stdout is the child's standard output stream.
	Stdout Stream = "stdout"
	// Stderr is the child's standard error stream.
	Stderr Stream = "stderr"
)

// Line is a single captured output line. Lines are immutable once
// appended to a [Log].
type Line struct {
	// Seq is the line's position in the global interleave order
	// across both streams. Assigned by the Log at append time,
	// starting from 0, with no gaps.
	Seq int

	// Stream tags the source stream.
	Stream Stream

	// Text is the decoded line content without the trailing newline.
	// Invalid UTF-8 has been replaced, never dropped.
	Text string
}

// Log is an append-only record of everything the child wrote, in the
// exact order the supervisor read it. Both stream drains append
// concurrently; the mutex is what makes the sequence numbers the
// ground truth for interleave order.
//
// All methods are safe for concurrent use.
type Log struct {
	mutex sync.Mutex
	lines []Line
}

// NewLog creates an empty output log.
func NewLog() *Log {
	return &Log{}
}

// Append records a line from the given stream and returns it with its
// assigned sequence number.
func (log *Log) Append(stream Stream, text string) Line {
	log.mutex.Lock()
	defer log.mutex.Unlock()

	line := Line{
		Seq:    len(log.lines),
		Stream: stream,
		Text:   text,
	}
	log.lines = append(log.lines, line)
	return line
}

// Lines returns a snapshot of all captured lines in sequence order.
// The returned slice is a copy; later appends do not modify it.
func (log *Log) Lines() []Line {
	log.mutex.Lock()
	defer log.mutex.Unlock()

	snapshot := make([]Line, len(log.lines))
	copy(snapshot, log.lines)
	return snapshot
}

// Len returns the number of captured lines.
func (log *Log) Len() int {
	log.mutex.Lock()
	defer log.mutex.Unlock()
	return len(log.lines)
}

// Text returns the aggregated log content: every line in sequence
// order, each terminated with a newline. This is the text handed to
// progress consumers.
func (log *Log) Text() string {
	log.mutex.Lock()
	defer log.mutex.Unlock()

	var builder strings.Builder
	for _, line := range log.lines {
		builder.WriteString(line.Text)
		builder.WriteByte('\n')
	}
	return builder.String()
}
