package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
)

// alertColumns must match the Scan order in scanAlert.
const alertColumns = `id, room_slug, alert_type, ticker, title, message, notes, tos_string, is_new, is_pinned, published_at, created_at, updated_at`

// AlertRepo implements domain.AlertRepository backed by PostgreSQL.
type AlertRepo struct {
	pool *pgxpool.Pool
}

// NewAlertRepo creates an AlertRepo from the shared connection pool.
func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	err := row.Scan(
		&a.ID, &a.RoomSlug, &a.AlertType, &a.Ticker, &a.Title, &a.Message,
		&a.Notes, &a.TosString, &a.IsNew, &a.IsPinned,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepo) GetByID(ctx context.Context, id int64) (*domain.Alert, error) {
	alert, err := scanAlert(r.pool.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

func (r *AlertRepo) ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*domain.Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE room_slug = $1
		ORDER BY published_at DESC
		LIMIT $2
	`, roomSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *AlertRepo) Create(ctx context.Context, alert domain.NewAlert) (*domain.Alert, error) {
	created, err := scanAlert(r.pool.QueryRow(ctx, `
		INSERT INTO alerts (room_slug, alert_type, ticker, title, message, notes, tos_string, is_pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+alertColumns+`
	`, alert.RoomSlug, alert.AlertType, alert.Ticker, alert.Title, alert.Message, alert.Notes, alert.TosString, alert.IsPinned))
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return created, nil
}

func (r *AlertRepo) Update(ctx context.Context, id int64, alert domain.NewAlert) (*domain.Alert, error) {
	updated, err := scanAlert(r.pool.QueryRow(ctx, `
		UPDATE alerts
		SET alert_type = $1, ticker = $2, title = $3, message = $4, notes = $5, tos_string = $6, is_pinned = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+alertColumns+`
	`, alert.AlertType, alert.Ticker, alert.Title, alert.Message, alert.Notes, alert.TosString, alert.IsPinned, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}
	return updated, nil
}

func (r *AlertRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}
