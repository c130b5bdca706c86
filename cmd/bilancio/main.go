package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	apphttp "bilancio/internal/http"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(cfg.LogLevel)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	invitations := services.NewInvitationService(store, logger)
	auth := services.NewAuthService(store, invitations, logger)
	categories := services.NewCategoryService(store, logger)
	records := services.NewRecordService(store, store, store, logger)
	projects := services.NewProjectService(store, store, logger)
	budgets := services.NewBudgetService(store, store, store, logger)
	statistics := services.NewStatisticsService(store, store, store, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Auth:        auth,
		Invitations: invitations,
		Categories:  categories,
		Records:     records,
		Projects:    projects,
		Budgets:     budgets,
		Statistics:  statistics,
	}, logger)
	defer srv.CloseResources()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		cancel()
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
