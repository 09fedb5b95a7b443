// Command server runs the HTTP API. It is equivalent to "engine serve" and
// accepts the same flags, e.g. --cron.
package main

import (
	"fmt"
	"os"

	"inventory-engine/internal/adapters/cli"
	"inventory-engine/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	root := cli.NewRootCommand(cli.NewEnv(cfg, logger))
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("server failed")
		os.Exit(1)
	}
}
