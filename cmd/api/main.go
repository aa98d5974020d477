package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/droptide/droptide-backend/api/routes"
	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/internal/payouts"
	"github.com/droptide/droptide-backend/internal/returns"
	"github.com/droptide/droptide-backend/internal/sequence"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/internal/summary"
	"github.com/droptide/droptide-backend/pkg/config"
	"github.com/droptide/droptide-backend/pkg/db"
	"github.com/droptide/droptide-backend/pkg/logger"
	"github.com/droptide/droptide-backend/pkg/metrics"
	"github.com/droptide/droptide-backend/pkg/migrate"
	"github.com/droptide/droptide-backend/pkg/outbox"
	"github.com/droptide/droptide-backend/pkg/redis"
)

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	stockService, err := stock.NewService(
		stock.NewRepository(dbClient.DB()), dbClient, outboxService, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	sequenceService, err := sequence.NewService(sequence.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create sequence service", err)
		os.Exit(1)
	}

	payoutService, err := payouts.NewService(
		payouts.NewRepository(dbClient.DB()), outboxService, logg, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(
		orderRepo,
		stockService,
		sequenceService,
		payoutService,
		dbClient,
		outboxService,
		redisClient,
		logg,
		fulfillmentMetrics,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	returnService, err := returns.NewService(
		orderRepo, stockService, dbClient, outboxService, logg, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create return service", err)
		os.Exit(1)
	}

	summaryService, err := summary.NewService(
		summary.NewRepository(dbClient.DB()), redisClient, logg, cfg.Cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create summary service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Orders:          orderService,
			Stock:           stockService,
			Returns:         returnService,
			Summary:         summaryService,
			MetricsGatherer: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
