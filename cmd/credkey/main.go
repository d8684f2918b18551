// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

// Command credkey is the installable entrypoint:
//
//	go install github.com/nextchat/credkey/cmd/credkey@latest
package main

import (
	"os"

	"github.com/nextchat/credkey/ui/cli"
)

func main() {
	// Cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
