package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/app"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/broadcast"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/database"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/config"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/logging"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/redis"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, bridgeCancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if bridgeCancel != nil {
			bridgeCancel()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	registry := realtime.NewRegistry()

	// The Redis bridge is optional: without it the fabric is single-instance.
	var (
		redisClient  *goredis.Client
		bridgeCancel context.CancelFunc
	)
	broadcaster := broadcast.New(registry, nil)
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()

		bridge := redis.NewBridge(redisClient, registry)
		var bridgeCtx context.Context
		bridgeCtx, bridgeCancel = context.WithCancel(context.Background())
		go bridge.Run(bridgeCtx)

		broadcaster = broadcast.New(registry, bridge)
	}

	alertRepo := database.NewAlertRepo(pool)
	tradeRepo := database.NewTradeRepo(pool)
	planRepo := database.NewTradePlanRepo(pool)
	videoRepo := database.NewVideoRepo(pool)

	appSvc := app.NewService(alertRepo, tradeRepo, planRepo, videoRepo, broadcaster, clock)

	// Pass nil explicitly to avoid typed-nil interface
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, appSvc, registry, pool, redisClient, clock)
	} else {
		srv = server.NewServer(cfg, appSvc, registry, pool, nil, clock)
	}

	done := runGracefulShutdown(srv, bridgeCancel)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
