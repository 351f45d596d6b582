package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/fuel-tracker/internal/bot"
	"github.com/joseph-ayodele/fuel-tracker/internal/bot/telegram"
	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/events"
	"github.com/joseph-ayodele/fuel-tracker/internal/export"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/fuel-tracker/internal/receipts"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
	repo "github.com/joseph-ayodele/fuel-tracker/internal/repository"
	"github.com/joseph-ayodele/fuel-tracker/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)

	if err := cfg.ValidateBot(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	count, err := repo.HealthCheck(ctx, store, 5*time.Second, logger)
	if err != nil {
		logger.Error("store health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("store ready", "backend", cfg.Store.Backend, "records", count)

	extractor, err := provider.NewExtractor(cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build extractor", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	publisher, err := events.New(cfg.Events, logger)
	if err != nil {
		logger.Error("failed to connect event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}()

	svc := receipts.NewService(extractor, store, publisher, logger)
	dispatcher := bot.NewDispatcher(svc,
		report.NewPDFRenderer(logger),
		export.NewXLSXRenderer(logger),
		logger,
	)

	tg, err := telegram.New(cfg.Telegram, dispatcher, logger)
	if err != nil {
		logger.Error("failed to start telegram bot", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	var health *server.HealthServer
	if cfg.Server.HealthAddr != "" {
		health = server.NewHealthServer(logger)
		g.Go(func() error {
			return health.ListenAndServe(gctx, cfg.Server.HealthAddr)
		})
	}

	g.Go(func() error {
		if health != nil {
			health.SetServing("", true)
			health.SetServing(server.StoreService, true)
		}
		return tg.Run(gctx)
	})

	logger.Info("fuelbot running", "provider", cfg.LLM.Provider, "backend", cfg.Store.Backend)
	if err := g.Wait(); err != nil {
		logger.Error("fuelbot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("fuelbot stopped")
}
