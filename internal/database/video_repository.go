package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
)

// videoColumns must match the Scan order in scanVideo.
const videoColumns = `id, room_slug, week_title, video_title, video_url, thumbnail_url, duration, published_at`

// VideoRepo implements domain.VideoRepository backed by PostgreSQL.
type VideoRepo struct {
	pool *pgxpool.Pool
}

// NewVideoRepo creates a VideoRepo from the shared connection pool.
func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	err := row.Scan(
		&v.ID, &v.RoomSlug, &v.WeekTitle, &v.VideoTitle, &v.VideoURL,
		&v.ThumbnailURL, &v.Duration, &v.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	video, err := scanVideo(r.pool.QueryRow(ctx, `
		SELECT `+videoColumns+`
		FROM weekly_videos
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (r *VideoRepo) ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*domain.Video, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+`
		FROM weekly_videos
		WHERE room_slug = $1
		ORDER BY published_at DESC
		LIMIT $2
	`, roomSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (r *VideoRepo) Create(ctx context.Context, video domain.NewVideo) (*domain.Video, error) {
	created, err := scanVideo(r.pool.QueryRow(ctx, `
		INSERT INTO weekly_videos (room_slug, week_title, video_title, video_url, thumbnail_url, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+videoColumns+`
	`, video.RoomSlug, video.WeekTitle, video.VideoTitle, video.VideoURL, video.ThumbnailURL, video.Duration))
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return created, nil
}
