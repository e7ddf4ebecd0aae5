package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/mhs-fashion/storefront-backend/api/routes"
	"github.com/mhs-fashion/storefront-backend/internal/cart"
	"github.com/mhs-fashion/storefront-backend/internal/catalog"
	"github.com/mhs-fashion/storefront-backend/internal/ratings"
	"github.com/mhs-fashion/storefront-backend/internal/users"
	"github.com/mhs-fashion/storefront-backend/pkg/config"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
	"github.com/mhs-fashion/storefront-backend/pkg/metrics"
	"github.com/mhs-fashion/storefront-backend/pkg/mongodb"
	"github.com/mhs-fashion/storefront-backend/pkg/redis"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.New(ctx, cfg.Mongo, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap mongo", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	cartRepo := cart.NewMongoRepository(mongoClient.Carts())
	if err := cartRepo.EnsureIndexes(ctx); err != nil {
		logg.Error(ctx, "failed to ensure cart indexes", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewMongoRepository(mongoClient.Items())
	catalogService, err := catalog.NewService(catalogRepo, redisClient, cfg.Cache.CountsTTL, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewMongoRepository(mongoClient.Users()))
	if err != nil {
		logg.Error(ctx, "failed to create user service", err)
		os.Exit(1)
	}

	ratingsRepo := ratings.NewMongoRepository(mongoClient.Ratings())

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, mongoClient, redisClient, httpMetrics,
			catalogService, cartService, userService, ratingsRepo,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, mongoClient.Close(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "error during shutdown", closeErr)
		os.Exit(1)
	}

	logg.Info(shutdownCtx, "api server stopped")
}
