// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for credkey.
//
// Usage:
//
//	go run . [flags]
//	./credkey [flags]
//
// See --help for options.
package main

import (
	"os"

	"github.com/nextchat/credkey/internal/logging"
	"github.com/nextchat/credkey/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Debugf("credkey CLI error: %v", err)
		os.Exit(1)
	}
}
