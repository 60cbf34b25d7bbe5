// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes stable identities for input documents.
// The fingerprint names archived conversion logs and appears in log
// fields, so one untrusted document can be correlated across runs
// without ever logging its content.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Fingerprint is a 32-byte BLAKE3 keyed digest of a document's bytes.
type Fingerprint [32]byte

// documentDomainKey is the BLAKE3 keyed-hashing domain for document
// fingerprints. Fixed constant — changing it invalidates every stored
// archive name. ASCII, zero-padded to 32 bytes, so the key is
// readable in hex dumps.
var documentDomainKey = [32]byte{
	'a', 'i', 'r', 'g', 'a', 'p', '.', 'd', 'o', 'c', 'u', 'm', 'e', 'n', 't',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// File computes the fingerprint of the file at path. The file is
// streamed through the hash in chunks; memory use is constant
// regardless of document size.
func File(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("opening %s for fingerprinting: %w", path, err)
	}
	defer file.Close()

	hasher, err := blake3.NewKeyed(documentDomainKey[:])
	if err != nil {
		return Fingerprint{}, fmt.Errorf("initializing fingerprint hasher: %w", err)
	}
	if _, err := io.Copy(hasher, file); err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprinting %s: %w", path, err)
	}

	var fp Fingerprint
	hasher.Digest().Read(fp[:])
	return fp, nil
}

// Bytes computes the fingerprint of an in-memory byte slice. Test and
// tooling convenience; File is the production path.
func Bytes(data []byte) Fingerprint {
	hasher, err := blake3.NewKeyed(documentDomainKey[:])
	if err != nil {
		panic("fingerprint: keyed hasher initialization failed: " + err.Error())
	}
	hasher.Write(data)

	var fp Fingerprint
	hasher.Digest().Read(fp[:])
	return fp
}

// String returns the canonical lowercase hex form used in filenames
// and log fields.
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Parse parses the canonical hex form back into a Fingerprint.
func Parse(hexString string) (Fingerprint, error) {
	var fp Fingerprint
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return fp, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != len(fp) {
		return fp, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), len(fp))
	}
	copy(fp[:], decoded)
	return fp, nil
}
