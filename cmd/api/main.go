package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plantops/plantops-backend/api/routes"
	"github.com/plantops/plantops-backend/internal/alerts"
	"github.com/plantops/plantops-backend/internal/inventory"
	"github.com/plantops/plantops-backend/internal/notifications"
	"github.com/plantops/plantops-backend/pkg/access"
	"github.com/plantops/plantops-backend/pkg/config"
	"github.com/plantops/plantops-backend/pkg/db"
	"github.com/plantops/plantops-backend/pkg/env"
	"github.com/plantops/plantops-backend/pkg/instance"
	"github.com/plantops/plantops-backend/pkg/logger"
	"github.com/plantops/plantops-backend/pkg/metrics"
	"github.com/plantops/plantops-backend/pkg/migrate"
	"github.com/plantops/plantops-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	var (
		redisPinger redis.Pinger
		countCache  notifications.CountCache
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		countCache = notifications.NewRedisCountCache(redisClient, cfg.Redis.UnreadCountTTL)
	} else {
		logg.Warn(context.Background(), "redis not configured; unread-count cache disabled")
	}

	roleSections, err := cfg.Access.RoleSectionMap()
	if err != nil {
		logg.Error(context.Background(), "invalid access config", err)
		os.Exit(1)
	}
	policy, err := access.NewPolicy(roleSections)
	if err != nil {
		logg.Error(context.Background(), "failed to build access policy", err)
		os.Exit(1)
	}
	location, err := cfg.Notifications.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid notifications time zone", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if sqlDB, err := dbClient.SQL(); err == nil {
		registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, "plantops"))
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:        notificationsRepo,
		Cache:       countCache,
		Logger:      logg,
		RecentLimit: cfg.Notifications.RecentLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	emitter, err := alerts.NewEmitter(alerts.EmitterParams{
		Notifications: notificationsRepo,
		Metrics:       metrics.NewAlertMetrics(registry),
		Logger:        logg,
		Location:      location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create alert emitter", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:    inventory.NewRepository(dbClient.DB()),
		DB:      dbClient,
		Emitter: emitter,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			Policy:        policy,
			DB:            dbClient,
			Redis:         redisPinger,
			Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			HTTPMetrics:   metrics.NewHTTPMetrics(registry),
			Notifications: notificationsService,
			Inventory:     inventoryService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
