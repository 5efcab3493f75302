package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/schulbib/schulbib-backend/api/routes"
	"github.com/schulbib/schulbib-backend/internal/catalog"
	"github.com/schulbib/schulbib-backend/internal/copies"
	"github.com/schulbib/schulbib-backend/internal/loans"
	"github.com/schulbib/schulbib-backend/pkg/config"
	"github.com/schulbib/schulbib-backend/pkg/db"
	"github.com/schulbib/schulbib-backend/pkg/logger"
	"github.com/schulbib/schulbib-backend/pkg/metrics"
	"github.com/schulbib/schulbib-backend/pkg/migrate"
	"github.com/schulbib/schulbib-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
	circulationMetrics := metrics.NewCirculationMetrics(registry)

	catalogService, err := catalog.NewService(dbClient, catalog.NewRepository(dbClient.DB()), cfg.Loans, circulationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	copiesService, err := copies.NewService(dbClient, copies.NewRepository(dbClient.DB()), cfg.Loans, circulationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create copies service", err)
		os.Exit(1)
	}

	loansService, err := loans.NewService(dbClient, loans.NewRepository(dbClient.DB()), cfg.Loans, circulationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create loans service", err)
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
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Catalog:        catalogService,
			Copies:         copiesService,
			Loans:          loansService,
			MetricRegistry: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
