package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracknotes/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using process environment")
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tracknotes",
		Usage:    "Look up track metadata and save it to your history or workspace",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
