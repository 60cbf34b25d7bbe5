// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package logarchive persists the full interleaved output log of a
// conversion run for later diagnostics. An archive is a zstd stream of
// CBOR records: one header describing the run, then one record per
// captured output line. zstd suits the content — output logs are
// text and compress well.
//
// Archives are written atomically (temp file, fsync, rename) so a
// crash mid-write never leaves a half-archive behind under the final
// name.
package logarchive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/airgap-project/airgap/supervise"
)

// SchemaVersion identifies the archive record layout. Bump on
// incompatible changes; Read rejects versions it does not know.
const SchemaVersion = 1

// Meta is the archive header record.
type Meta struct {
	// SchemaVersion is the record layout version.
	SchemaVersion int `cbor:"schema_version"`

	// Fingerprint is the input document's hex fingerprint.
	Fingerprint string `cbor:"fingerprint"`

	// Outcome is the classified outcome kind name.
	Outcome string `cbor:"outcome"`

	// ExitCode is the worker's raw exit code.
	ExitCode int `cbor:"exit_code"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `cbor:"started_at"`
	FinishedAt time.Time `cbor:"finished_at"`
}

// lineRecord is the on-disk form of one output line.
type lineRecord struct {
	Seq    int    `cbor:"seq"`
	Stream string `cbor:"stream"`
	Text   string `cbor:"text"`
}

// encMode encodes with Core Deterministic Encoding so identical runs
// produce byte-identical archives.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("logarchive: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write stores meta and lines at path. The SchemaVersion field of
// meta is set by Write; callers fill in the rest.
func Write(path string, meta Meta, lines []supervise.Line) error {
	meta.SchemaVersion = SchemaVersion

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary archive file: %w", err)
	}

	if err := writeArchive(file, meta, lines); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing archive: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing archive: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming archive into place: %w", err)
	}
	return nil
}

func writeArchive(w io.Writer, meta Meta, lines []supervise.Line) error {
	compressor, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("initializing zstd writer: %w", err)
	}

	encoder := encMode.NewEncoder(compressor)
	if err := encoder.Encode(meta); err != nil {
		compressor.Close()
		return fmt.Errorf("encoding archive header: %w", err)
	}
	for _, line := range lines {
		record := lineRecord{
			Seq:    line.Seq,
			Stream: string(line.Stream),
			Text:   line.Text,
		}
		if err := encoder.Encode(record); err != nil {
			compressor.Close()
			return fmt.Errorf("encoding archive line %d: %w", line.Seq, err)
		}
	}

	if err := compressor.Close(); err != nil {
		return fmt.Errorf("flushing archive: %w", err)
	}
	return nil
}

// Read loads an archive. On a truncated or corrupt tail it returns
// the header and every line decoded before the damage, along with the
// error — partial diagnostics beat none.
func Read(path string) (Meta, []supervise.Line, error) {
	file, err := os.Open(path)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	decompressor, err := zstd.NewReader(file)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("initializing zstd reader: %w", err)
	}
	defer decompressor.Close()

	decoder := cbor.NewDecoder(decompressor)

	var meta Meta
	if err := decoder.Decode(&meta); err != nil {
		return Meta{}, nil, fmt.Errorf("decoding archive header: %w", err)
	}
	if meta.SchemaVersion != SchemaVersion {
		return Meta{}, nil, fmt.Errorf("unsupported archive schema version %d", meta.SchemaVersion)
	}

	var lines []supervise.Line
	for {
		var record lineRecord
		if err := decoder.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				return meta, lines, nil
			}
			return meta, lines, fmt.Errorf("decoding archive line %d: %w", len(lines), err)
		}
		lines = append(lines, supervise.Line{
			Seq:    record.Seq,
			Stream: supervise.Stream(record.Stream),
			Text:   record.Text,
		})
	}
}
