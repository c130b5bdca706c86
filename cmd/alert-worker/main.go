package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/export"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
	"bilancio/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(cfg.LogLevel)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("connect to broker", slog.Any("error", err))
		os.Exit(1)
	}
	defer client.Close()

	invitations := services.NewInvitationService(store, logger)
	auth := services.NewAuthService(store, invitations, logger)
	budgets := services.NewBudgetService(store, store, store, logger)
	statistics := services.NewStatisticsService(store, store, store, logger)

	alerts := worker.NewAlertWorker(budgets, store, client, auth,
		cfg.AlertInterval, cfg.SessionPruneInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return alerts.Run(ctx) })

	if cfg.ExportEnabled() {
		exporter, err := export.NewSheetsExporter(ctx,
			cfg.GoogleCredentialsFile, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			logger.Error("initialize sheets exporter", slog.Any("error", err))
			os.Exit(1)
		}
		reports := worker.NewReportWorker(statistics, store, exporter, logger)
		g.Go(func() error { return reports.Run(ctx) })
		logger.Info("report export enabled", slog.String("sheet", cfg.GoogleSheetName))
	}

	logger.Info("alert worker started",
		slog.Duration("alert_interval", cfg.AlertInterval),
		slog.Duration("prune_interval", cfg.SessionPruneInterval))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("alert worker stopped")
}
