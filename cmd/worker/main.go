package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/internal/imports"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/idempotency"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/migrate"
	"github.com/stockroomhq/stockroom-backend/pkg/pubsub"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
)

// The import worker consumes queued import jobs and processes them through
// the same service the API uses for synchronous uploads.
func main() {
	logg := logger.New(logger.Options{ServiceName: "import-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "import-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	gdb := dbClient.DB()

	dispatcher, err := notifications.NewDispatcher(notifications.NewRepository(gdb), notifications.NewMailer(cfg.SMTP), logg)
	if err != nil {
		logg.Error(ctx, "failed to wire dispatcher", err)
		os.Exit(1)
	}

	importsSvc, err := imports.NewService(
		imports.NewRepository(gdb),
		dbClient,
		audit.NewRecorder(),
		imports.PublisherQueue{Publisher: pubsubClient.ImportsPublisher()},
		dispatcher,
		metrics.NewImportMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Import,
	)
	if err != nil {
		logg.Error(ctx, "failed to wire imports service", err)
		os.Exit(1)
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Import.IdempotencyTTL)
	if err != nil {
		logg.Error(ctx, "failed to create idempotency manager", err)
		os.Exit(1)
	}

	consumer, err := imports.NewConsumer(importsSvc, pubsubClient.ImportsSubscription(), manager, logg)
	if err != nil {
		logg.Error(ctx, "failed to create import consumer", err)
		os.Exit(1)
	}

	// Sidecar listener for readiness probes and metrics scraping.
	probes := chi.NewRouter()
	probes.Get("/health/live", controllers.HealthLive(cfg.App.Env))
	probes.Get("/health/ready", controllers.HealthReady(cfg.App.Env, map[string]controllers.Pinger{
		"database": dbClient.Ping,
		"redis":    redisClient.Ping,
		"pubsub":   pubsubClient.Ping,
	}, logg))
	probes.Handle("/metrics", promhttp.Handler())

	probeServer := &http.Server{Addr: ":" + cfg.App.Port, Handler: probes}
	go func() {
		if err := probeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "probe server stopped unexpectedly", err)
		}
	}()
	defer probeServer.Close()

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "starting import worker")

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logg.Error(ctx, "import consumer stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(context.Background(), "import worker shutting down gracefully")
}
