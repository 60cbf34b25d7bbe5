// Copyright 2026 The Airgap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/airgap-project/airgap/lib/ocrlang"
)

func languagesCmd(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("languages takes no arguments")
	}
	for _, code := range ocrlang.Codes() {
		name, _ := ocrlang.Name(code)
		fmt.Printf("%-10s %s\n", code, name)
	}
	return nil
}
