// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Guardian.
//
// Usage:
//
//	go run . [flags]
//	./guardian [flags]
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/guardian/ui/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
