package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omegaui/leadrouter/internal/api"
	"github.com/omegaui/leadrouter/internal/config"
	"github.com/omegaui/leadrouter/internal/crm"
	"github.com/omegaui/leadrouter/internal/dispatch"
	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/notify"
	"github.com/omegaui/leadrouter/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// SES (optional)
	var notifier notify.Notifier
	if cfg.Email.OperatorAddress != "" {
		n, err := notify.NewSESNotifier(ctx, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			logger.Warn("failed to configure ses, running without alerts", "error", err)
		} else {
			notifier = n
		}
	}

	// CRM (optional)
	var crmClient crm.Client
	if cfg.CRM.URL != "" {
		crmClient = crm.NewHTTPClient(cfg.CRM.URL, cfg.CRM.Token)
	}

	// Dispatcher + escalation watchdog
	d := dispatch.New(db, eventsClient, notifier, crmClient, cfg, logger)
	d.Start(ctx)
	defer d.Stop()
	logger.Info("dispatcher started", "watchdog_tick", cfg.WatchdogTick(), "escalation_window", cfg.EscalationWindow())

	// API server
	router := api.NewRouter(db, d, eventsClient, cfg.Server.OperatorToken, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
