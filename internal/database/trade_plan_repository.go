package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
)

// tradePlanColumns must match the Scan order in scanTradePlanEntry.
const tradePlanColumns = `id, room_slug, ticker, bias, entry, target1, target2, target3, runner, stop, options_strike, options_exp, notes`

// TradePlanRepo implements domain.TradePlanRepository backed by PostgreSQL.
type TradePlanRepo struct {
	pool *pgxpool.Pool
}

// NewTradePlanRepo creates a TradePlanRepo from the shared connection pool.
func NewTradePlanRepo(pool *pgxpool.Pool) *TradePlanRepo {
	return &TradePlanRepo{pool: pool}
}

func scanTradePlanEntry(row pgx.Row) (*domain.TradePlanEntry, error) {
	var e domain.TradePlanEntry
	err := row.Scan(
		&e.ID, &e.RoomSlug, &e.Ticker, &e.Bias, &e.Entry,
		&e.Target1, &e.Target2, &e.Target3, &e.Runner, &e.Stop,
		&e.OptionsStrike, &e.OptionsExp, &e.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *TradePlanRepo) GetByID(ctx context.Context, id int64) (*domain.TradePlanEntry, error) {
	entry, err := scanTradePlanEntry(r.pool.QueryRow(ctx, `
		SELECT `+tradePlanColumns+`
		FROM trade_plan_entries
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradePlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade plan entry: %w", err)
	}
	return entry, nil
}

func (r *TradePlanRepo) ListByRoom(ctx context.Context, roomSlug string) ([]*domain.TradePlanEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tradePlanColumns+`
		FROM trade_plan_entries
		WHERE room_slug = $1
		ORDER BY id
	`, roomSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade plan entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TradePlanEntry
	for rows.Next() {
		entry, err := scanTradePlanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade plan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *TradePlanRepo) Create(ctx context.Context, entry domain.NewTradePlanEntry) (*domain.TradePlanEntry, error) {
	created, err := scanTradePlanEntry(r.pool.QueryRow(ctx, `
		INSERT INTO trade_plan_entries (room_slug, ticker, bias, entry, target1, target2, target3, runner, stop, options_strike, options_exp, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+tradePlanColumns+`
	`, entry.RoomSlug, entry.Ticker, entry.Bias, entry.Entry, entry.Target1, entry.Target2, entry.Target3,
		entry.Runner, entry.Stop, entry.OptionsStrike, entry.OptionsExp, entry.Notes))
	if err != nil {
		return nil, fmt.Errorf("failed to create trade plan entry: %w", err)
	}
	return created, nil
}

func (r *TradePlanRepo) Update(ctx context.Context, id int64, entry domain.NewTradePlanEntry) (*domain.TradePlanEntry, error) {
	updated, err := scanTradePlanEntry(r.pool.QueryRow(ctx, `
		UPDATE trade_plan_entries
		SET ticker = $1, bias = $2, entry = $3, target1 = $4, target2 = $5, target3 = $6, runner = $7, stop = $8, options_strike = $9, options_exp = $10, notes = $11
		WHERE id = $12
		RETURNING `+tradePlanColumns+`
	`, entry.Ticker, entry.Bias, entry.Entry, entry.Target1, entry.Target2, entry.Target3,
		entry.Runner, entry.Stop, entry.OptionsStrike, entry.OptionsExp, entry.Notes, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTradePlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trade plan entry: %w", err)
	}
	return updated, nil
}

func (r *TradePlanRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trade_plan_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade plan entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTradePlanNotFound
	}
	return nil
}
