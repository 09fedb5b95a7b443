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

	if err := cli.NewRootCommand(cli.NewEnv(cfg, logger)).Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
