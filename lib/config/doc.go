// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides settings loading for airgap binaries.
//
// Settings are loaded from a single YAML file specified by:
//   - AIRGAP_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This keeps the
// configuration of a security-sensitive tool deterministic and
// auditable, with no hidden overrides. Every field has a safe default
// so running without a settings file is fully supported.
package config
