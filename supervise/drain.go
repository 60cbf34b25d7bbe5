// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Converter output can carry long lines (progress dumps, embedded
// document metadata). Lines are read through a 64 KiB buffer and
// recorded up to 1 MiB each; anything past the cap is dropped from the
// recorded text but still consumed from the pipe.
const (
	drainBufferSize = 64 * 1024
	maxLineBytes    = 1024 * 1024
)

// drain consumes one child stream line by line until end-of-stream,
// appending each decoded line to the output log and forwarding it to
// the optional sink. It runs in its own goroutine; the caller joins it
// through the supervisor's WaitGroup.
//
// The drain owns the read end of the pipe until EOF. Whatever happens
// to an individual line — over the cap, invalid UTF-8 — reading must
// continue, or the child blocks writing into a full pipe buffer and
// Wait never returns.
//
// A read error other than EOF is logged and treated as end-of-stream,
// after discarding whatever the reader still yields. The child's exit
// code is the authoritative success signal, so a broken pipe here must
// not turn into a hard failure of its own.
func drain(reader io.Reader, stream Stream, log *Log, sink func(Line), logger *slog.Logger) {
	buffered := bufio.NewReaderSize(reader, drainBufferSize)

	for {
		text, truncated, err := readLine(buffered)

		// A clean EOF right after a newline yields no final line; any
		// other combination carries text worth recording, including a
		// partial line cut short by an error.
		if err == nil || text != "" {
			if truncated {
				logger.Warn("output line exceeded cap, recorded truncated",
					"stream", stream, "cap", maxLineBytes)
			}
			line := log.Append(stream, strings.ToValidUTF8(text, "�"))
			logger.Debug("worker output", "stream", stream, "seq", line.Seq, "line", line.Text)
			if sink != nil {
				sink(line)
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("stream read ended abnormally", "stream", stream, "error", err)
				io.Copy(io.Discard, buffered)
			}
			return
		}
	}
}

// readLine reads up to the next newline, however far away it is. The
// returned text holds at most maxLineBytes; truncated reports whether
// anything was dropped. A trailing \r is stripped. err is io.EOF only
// once the reader is exhausted; a final unterminated line is returned
// together with io.EOF.
func readLine(reader *bufio.Reader) (text string, truncated bool, err error) {
	var builder strings.Builder
	for {
		chunk, readErr := reader.ReadSlice('\n')
		terminated := readErr == nil
		if terminated {
			chunk = chunk[:len(chunk)-1]
		}

		if room := maxLineBytes - builder.Len(); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		builder.Write(chunk)

		switch {
		case terminated:
			return strings.TrimSuffix(builder.String(), "\r"), truncated, nil
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		default:
			return builder.String(), truncated, readErr
		}
	}
}
