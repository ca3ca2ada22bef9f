// Package main provides the command that posts one AI news summary to LinkedIn.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"aipost/internal/config"
	"aipost/internal/formatter"
	"aipost/internal/logger"
	"aipost/internal/pipeline"

	"github.com/joho/godotenv"
)

const previewWidth = 80

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "Path to optional YAML config file")
	dryRun := flag.Bool("dry-run", false, "Format the post and print it without publishing")

	flag.Parse()

	log := logger.NewLogger("info").WithRunID()

	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load .env", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		err = pipeline.NewFailure(pipeline.StepConfig, err)
		pipeline.Report(log, nil, err)

		return pipeline.ExitCode(err)
	}

	log.SetLevel(cfg.Logging.Level)
	log.Debug("Configuration loaded", "config", cfg.String(), "dry_run", *dryRun)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(cfg, log)
	runner.SetDryRun(*dryRun)

	result, err := runner.Run(ctx)
	pipeline.Report(log, result, err)

	if err == nil && result.Outcome == pipeline.OutcomeDryRun {
		fmt.Println(formatter.Preview(result.Text, previewWidth))
	}

	return pipeline.ExitCode(err)
}
