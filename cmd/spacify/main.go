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

	"github.com/huenthong/spacifychat/internal/api"
	"github.com/huenthong/spacifychat/internal/chat"
	"github.com/huenthong/spacifychat/internal/config"
	"github.com/huenthong/spacifychat/internal/events"
	"github.com/huenthong/spacifychat/internal/leads"
	"github.com/huenthong/spacifychat/internal/notify"
	"github.com/huenthong/spacifychat/internal/report"
	"github.com/huenthong/spacifychat/internal/routing"
	"github.com/huenthong/spacifychat/internal/scoring"
	"github.com/huenthong/spacifychat/internal/store"
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
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	var db store.Store
	switch cfg.Database.Driver {
	case "postgres":
		db, err = store.NewPostgresStore(ctx, cfg.Database.DSN)
	default:
		db, err = store.NewSQLiteStore(ctx, cfg.Database.DSN)
	}
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Event stream (optional)
	var eventsClient events.Client
	if cfg.NATS.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Chat session store
	var sessions chat.SessionStore
	if cfg.Redis.Addr != "" {
		rs, err := chat.NewRedisSessionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.SessionTTL())
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = rs
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	} else {
		sessions = chat.NewMemorySessionStore(cfg.SessionTTL())
	}

	// Routing
	router, err := routing.New(cfg.Roster(), cfg.Tables(), cfg.Scoring, cfg.SLATargets())
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	// Hot lead webhook (optional)
	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookToken)
		logger.Info("hot lead webhook enabled")
	}

	// Intake pipeline and chat engine
	service := leads.NewService(db, scoring.NewScorer(), router, eventsClient, notifier, logger)
	engine := chat.NewEngine(sessions, service, router.Roster(), eventsClient, logger)

	// Background reporting
	reporter := report.New(db, eventsClient, cfg.StatsInterval(), cfg.SLACheckInterval(), logger)
	reporter.Start(ctx)
	defer reporter.Stop()
	logger.Info("reporter started",
		"stats_interval", cfg.StatsInterval(),
		"sla_check_interval", cfg.SLACheckInterval(),
	)

	// API server
	apiRouter := api.NewRouter(db, service, engine, router, api.Options{
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		CORSOrigins:        cfg.Server.CORSOrigins,
	}, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiRouter,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
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
