// Package main provides the entry point for redisnode-cli.
//
// redisnode-cli is the command-line management tool for redisnode-server.
// It runs one command per invocation; it has no interactive mode (the
// internal/cli/repl package is not used here).
package main

import (
	"fmt"
	"os"

	"github.com/shardflow/redisnode/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
