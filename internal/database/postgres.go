package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/retry"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.ConnConfig.Tracer = &MetricsTracer{}

	slog.Info("Database SSL mode", "sslmode", extractSSLMode(databaseURL))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// The database container may still be starting when we come up.
	policy := retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Database not ready, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	classify := func(err error) retry.Action { return retry.Retry }
	if err := retry.DoVoid(ctx, policy, classify, func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

func extractSSLMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "unknown"
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "" {
		return "prefer (default)"
	}
	return mode
}

const (
	// migrationLockID is a PostgreSQL advisory lock ID for coordinating migrations.
	migrationLockID             = 0x7274726164696e67
	migrationLockReleaseTimeout = 5 * time.Second
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		room_slug TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		ticker TEXT NOT NULL,
		title TEXT,
		message TEXT NOT NULL,
		notes TEXT,
		tos_string TEXT,
		is_new BOOLEAN NOT NULL DEFAULT TRUE,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_room_slug ON alerts(room_slug, published_at DESC)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGSERIAL PRIMARY KEY,
		room_slug TEXT NOT NULL,
		ticker TEXT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		entry_price DOUBLE PRECISION NOT NULL,
		exit_price DOUBLE PRECISION,
		pnl_percent DOUBLE PRECISION,
		result TEXT,
		invalidation_reason TEXT,
		was_updated BOOLEAN,
		entry_date TIMESTAMPTZ NOT NULL,
		exit_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_room_slug ON trades(room_slug, entry_date DESC)`,
	`CREATE TABLE IF NOT EXISTS trade_plan_entries (
		id BIGSERIAL PRIMARY KEY,
		room_slug TEXT NOT NULL,
		ticker TEXT NOT NULL,
		bias TEXT NOT NULL,
		entry TEXT,
		target1 TEXT,
		target2 TEXT,
		target3 TEXT,
		runner TEXT,
		stop TEXT,
		options_strike TEXT,
		options_exp TEXT,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_plan_room_slug ON trade_plan_entries(room_slug)`,
	`CREATE TABLE IF NOT EXISTS weekly_videos (
		id BIGSERIAL PRIMARY KEY,
		room_slug TEXT NOT NULL,
		week_title TEXT NOT NULL,
		video_title TEXT NOT NULL,
		video_url TEXT NOT NULL,
		thumbnail_url TEXT,
		duration TEXT,
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_videos_room_slug ON weekly_videos(room_slug, published_at DESC)`,
}

func RunMigrationsWithLock(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), migrationLockReleaseTimeout)
		defer cancel()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			slog.Error("failed to release migration lock", "error", err)
		}
	}()

	slog.Info("running database migrations")
	for _, migration := range migrations {
		if _, err := conn.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
