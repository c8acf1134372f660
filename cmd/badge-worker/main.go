package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/cache"
	"github.com/princekumarofficial/marketplace-service/internal/config"
	"github.com/princekumarofficial/marketplace-service/internal/storage/postgres"
	"github.com/princekumarofficial/marketplace-service/internal/worker"
)

func main() {
	// Load config
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Initialize database connection
	pg, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	logger.Info("Connected to Postgres database")

	// Badge writes must drop the API's cached user records.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := cache.NewCacheService(pg, redisClient)

	// No websocket here; clients see new badges on their next read.
	badgeService := badges.NewService(store, nil, nil)

	reconciler := worker.NewBadgeReconciler(pg, badgeService, cfg.Worker.ReconcileInterval, cfg.Worker.PageSize, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	reconciler.Start(ctx)

	redisClient.Close()
	pg.Db.Close()
	logger.Info("Badge worker stopped")
}
