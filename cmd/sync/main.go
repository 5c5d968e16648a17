// Command sync runs a single sync pass over all tracked works and prints
// the resulting summary. Useful from cron or for debugging a pass by
// hand.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fictrack/internal/config"
	"fictrack/internal/database"
	"fictrack/internal/fetcher"
	"fictrack/internal/notify"
	"fictrack/internal/repository"
	"fictrack/internal/sync"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.ConnectDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	client := fetcher.NewClient(fetcher.Options{
		BaseURL:   cfg.ArchiveBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Rate:      cfg.FetchRate,
		Burst:     cfg.FetchBurst,
	}, logger)

	engine := sync.NewEngine(
		client,
		repository.NewWorkRepository(db),
		repository.NewLedgerRepository(db),
		notify.NewLogPresenter(logger),
		logger,
		sync.Options{
			Mode:     cfg.NotifyMode,
			DelayMin: cfg.FetchDelayMin,
			DelayMax: cfg.FetchDelayMax,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := engine.RunPass(ctx)
	if err != nil {
		logger.Error("sync pass failed", "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
