// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works
//
// Poolbridge - Goldline pool controller bus bridge

package main

import (
	"os"

	"github.com/saltline/poolbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
