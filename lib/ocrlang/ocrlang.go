// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package ocrlang holds the fixed table of OCR language codes the
// converter image supports. Conversion requests validate their
// --ocr-lang value against this table before anything is launched.
package ocrlang

import (
	_ "embed"
	"encoding/json"
	"sort"

	"github.com/tidwall/jsonc"
)

//go:embed languages.jsonc
var languagesJSONC []byte

// languages maps tesseract code to display name.
var languages map[string]string

func init() {
	if err := json.Unmarshal(jsonc.ToJSON(languagesJSONC), &languages); err != nil {
		panic("ocrlang: embedded language table is invalid: " + err.Error())
	}
}

// Supported reports whether code is a known OCR language code.
func Supported(code string) bool {
	_, ok := languages[code]
	return ok
}

// Name returns the display name for a language code.
func Name(code string) (string, bool) {
	name, ok := languages[code]
	return name, ok
}

// Codes returns every supported language code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
