package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fictrack/internal/api"
	"fictrack/internal/config"
	"fictrack/internal/database"
	"fictrack/internal/fetcher"
	"fictrack/internal/history"
	"fictrack/internal/notify"
	"fictrack/internal/progress"
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

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var cache *fetcher.PageCache
	if cfg.CacheEnabled() {
		cache, err = fetcher.NewPageCache(cfg.RedisURL, cfg.CacheTTL, logger)
		if err != nil {
			logger.Error("page cache unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	client := fetcher.NewClient(fetcher.Options{
		BaseURL:   cfg.ArchiveBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Rate:      cfg.FetchRate,
		Burst:     cfg.FetchBurst,
		Cache:     cache,
	}, logger)

	workRepo := repository.NewWorkRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	progressService := progress.NewService(progressRepo)
	committer := progress.NewCommitter(progressService)
	coalescer := history.NewCoalescer(historyRepo, workRepo)
	tracker := sync.NewTracker(client, workRepo, logger)
	presenter := notify.NewLogPresenter(logger)

	engine := sync.NewEngine(client, workRepo, ledgerRepo, presenter, logger, sync.Options{
		Mode:     cfg.NotifyMode,
		DelayMin: cfg.FetchDelayMin,
		DelayMax: cfg.FetchDelayMax,
	})

	router := api.NewRouter(api.Deps{
		Works:     workRepo,
		Ledger:    ledgerRepo,
		History:   historyRepo,
		Progress:  progressService,
		Committer: committer,
		Coalescer: coalescer,
		Tracker:   tracker,
		Engine:    engine,
		Fetcher:   client,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic background passes; the API can also trigger one manually.
	go runScheduler(ctx, engine, cfg.SyncInterval, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func runScheduler(ctx context.Context, engine *sync.Engine, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := engine.RunPass(ctx); err != nil {
				logger.Error("scheduled sync pass failed", "error", err)
			}
		}
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
