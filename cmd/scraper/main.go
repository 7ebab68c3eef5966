package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/dkearsley/afl-stats/internal/app"
	"github.com/dkearsley/afl-stats/internal/config"
	"github.com/dkearsley/afl-stats/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() {
		_ = logger.Sync()
	}()
	logging.SetDefault(logger)

	pipeline, cleanup, err := app.NewIngestPipeline(cfg, logger)
	if err != nil {
		logger.Error("build ingest pipeline", "error", err.Error())
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("season ingest starting",
		"year", cfg.ScrapeYear,
		"workers", cfg.MaxWorkers,
		"results_base_url", cfg.ResultsBaseURL)

	report, err := pipeline.Run(ctx, cfg.ScrapeYear)
	if err != nil {
		logger.Error("season ingest failed", "error", err.Error())
		return 1
	}

	out, err := sonic.ConfigDefault.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("encode run report", "error", err.Error())
		return 1
	}
	fmt.Println(string(out))

	if report.FailedCount > 0 {
		logger.Warn("run finished with failed matches", "failed", report.FailedCount)
		return 1
	}
	return 0
}
