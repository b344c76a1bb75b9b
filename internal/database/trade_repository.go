package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
)

// tradeColumns must match the Scan order in scanTrade.
const tradeColumns = `id, room_slug, ticker, direction, status, entry_price, exit_price, pnl_percent, result, invalidation_reason, was_updated, entry_date, exit_date, created_at, updated_at`

// TradeRepo implements domain.TradeRepository backed by PostgreSQL.
type TradeRepo struct {
	pool *pgxpool.Pool
}

// NewTradeRepo creates a TradeRepo from the shared connection pool.
func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.ID, &t.RoomSlug, &t.Ticker, &t.Direction, &t.Status,
		&t.EntryPrice, &t.ExitPrice, &t.PnlPercent, &t.Result,
		&t.InvalidationReason, &t.WasUpdated, &t.EntryDate, &t.ExitDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TradeRepo) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	trade, err := scanTrade(r.pool.QueryRow(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

func (r *TradeRepo) ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*domain.Trade, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE room_slug = $1
		ORDER BY entry_date DESC
		LIMIT $2
	`, roomSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

func (r *TradeRepo) Create(ctx context.Context, trade domain.NewTrade) (*domain.Trade, error) {
	created, err := scanTrade(r.pool.QueryRow(ctx, `
		INSERT INTO trades (room_slug, ticker, direction, entry_price, entry_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+tradeColumns+`
	`, trade.RoomSlug, trade.Ticker, trade.Direction, trade.EntryPrice, trade.EntryDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return created, nil
}

func (r *TradeRepo) Close(ctx context.Context, id int64, tc domain.TradeClose) (*domain.Trade, error) {
	closed, err := scanTrade(r.pool.QueryRow(ctx, `
		UPDATE trades
		SET status = 'closed', exit_price = $1, pnl_percent = $2, result = $3, exit_date = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'open'
		RETURNING `+tradeColumns+`
	`, tc.ExitPrice, tc.PnlPercent, tc.Result, tc.ExitDate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or no longer open; look it up to tell the two apart.
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if existing.Status != domain.TradeStatusOpen {
			return nil, domain.ErrTradeAlreadyClosed
		}
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close trade: %w", err)
	}
	return closed, nil
}

func (r *TradeRepo) UpdateEntry(ctx context.Context, id int64, entryPrice float64) (*domain.Trade, error) {
	updated, err := scanTrade(r.pool.QueryRow(ctx, `
		UPDATE trades
		SET entry_price = $1, was_updated = TRUE, updated_at = NOW()
		WHERE id = $2
		RETURNING `+tradeColumns+`
	`, entryPrice, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	return updated, nil
}

func (r *TradeRepo) Invalidate(ctx context.Context, id int64, reason string) (*domain.Trade, error) {
	invalidated, err := scanTrade(r.pool.QueryRow(ctx, `
		UPDATE trades
		SET status = 'invalidated', invalidation_reason = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+tradeColumns+`
	`, reason, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate trade: %w", err)
	}
	return invalidated, nil
}

func (r *TradeRepo) StatsByRoom(ctx context.Context, roomSlug string) (*domain.RoomStats, error) {
	stats := domain.RoomStats{RoomSlug: roomSlug}
	err := r.pool.QueryRow(ctx, `
		SELECT
			ROUND(100.0 * COUNT(*) FILTER (WHERE result = 'win') / NULLIF(COUNT(*) FILTER (WHERE status = 'closed'), 0), 1),
			COUNT(*) FILTER (WHERE status = 'open')::int,
			COUNT(*) FILTER (WHERE status = 'closed' AND exit_date >= date_trunc('week', NOW()))::int,
			COUNT(*)::int
		FROM trades
		WHERE room_slug = $1
	`, roomSlug).Scan(&stats.WinRate, &stats.ActiveTrades, &stats.ClosedThisWeek, &stats.TotalTrades)
	if err != nil {
		return nil, fmt.Errorf("failed to compute room stats: %w", err)
	}
	return &stats, nil
}
