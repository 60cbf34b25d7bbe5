// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/airgap-project/airgap/lib/ocrlang"
)

// EnvConfigPath is the environment variable naming the settings file.
const EnvConfigPath = "AIRGAP_CONFIG"

// DefaultImage is the converter container image used when the
// settings file does not override it.
const DefaultImage = "ghcr.io/airgap-project/airgap-converter"

// Settings is the full configuration for airgap binaries.
type Settings struct {
	// Runtime configures the container engine.
	Runtime RuntimeSettings `yaml:"runtime"`

	// OCR configures text recognition defaults.
	OCR OCRSettings `yaml:"ocr"`

	// Archive configures diagnostic log retention.
	Archive ArchiveSettings `yaml:"archive"`
}

// RuntimeSettings configures the container engine.
type RuntimeSettings struct {
	// Engine is an explicit engine executable path. Empty means
	// discover docker/podman automatically.
	Engine string `yaml:"engine"`

	// Image is the converter container image reference.
	Image string `yaml:"image"`
}

// OCRSettings configures text recognition defaults.
type OCRSettings struct {
	// DefaultLanguage is the OCR language used when a request does
	// not specify one. Must be a supported code.
	DefaultLanguage string `yaml:"default_language"`
}

// ArchiveSettings configures diagnostic log retention.
type ArchiveSettings struct {
	// Enabled turns on writing an output-log archive after each run.
	Enabled bool `yaml:"enabled"`

	// Dir is where archives are written. Required when Enabled.
	Dir string `yaml:"dir"`
}

// Default returns the settings used when no file is configured.
func Default() Settings {
	return Settings{
		Runtime: RuntimeSettings{
			Image: DefaultImage,
		},
		OCR: OCRSettings{
			DefaultLanguage: "eng",
		},
	}
}

// Load reads settings from path, or from AIRGAP_CONFIG when path is
// empty. When neither names a file, the defaults are returned.
func Load(path string) (Settings, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	settings := Default()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return settings, nil
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	if s.Runtime.Image == "" {
		return fmt.Errorf("runtime.image must not be empty")
	}
	if s.OCR.DefaultLanguage != "" && !ocrlang.Supported(s.OCR.DefaultLanguage) {
		return fmt.Errorf("ocr.default_language %q is not a supported language code", s.OCR.DefaultLanguage)
	}
	if s.Archive.Enabled && s.Archive.Dir == "" {
		return fmt.Errorf("archive.dir is required when archive.enabled is true")
	}
	return nil
}
