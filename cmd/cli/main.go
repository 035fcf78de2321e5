// Package main is the entry point for arm-cost CLI.
package main

import (
	"fmt"
	"os"

	"arm-cost/cmd/cli/cmd"
	"arm-cost/internal/logging"
)

func main() {
	err := cmd.Execute()
	if err != nil && !cmd.Silent(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logging.Sync()
	os.Exit(cmd.ExitCode(err))
}
