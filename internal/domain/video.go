package domain

import (
	"context"
	"time"
)

// Video is a weekly recap video published to a room.
type Video struct {
	ID           int64
	RoomSlug     string
	WeekTitle    string
	VideoTitle   string
	VideoURL     string
	ThumbnailURL *string
	Duration     *string
	PublishedAt  time.Time
}

// NewVideo carries the writable fields for publishing a video.
type NewVideo struct {
	RoomSlug     string
	WeekTitle    string
	VideoTitle   string
	VideoURL     string
	ThumbnailURL *string
	Duration     *string
}

type VideoRepository interface {
	GetByID(ctx context.Context, id int64) (*Video, error)
	ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*Video, error)
	Create(ctx context.Context, video NewVideo) (*Video, error)
}
