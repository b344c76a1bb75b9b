package domain

import (
	"context"
	"time"
)

// Alert is a published trade alert belonging to a room.
type Alert struct {
	ID          int64
	RoomSlug    string
	AlertType   string
	Ticker      string
	Title       *string
	Message     string
	Notes       *string
	TosString   *string
	IsNew       bool
	IsPinned    bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAlert carries the writable fields for alert creation and updates.
type NewAlert struct {
	RoomSlug  string
	AlertType string
	Ticker    string
	Title     *string
	Message   string
	Notes     *string
	TosString *string
	IsPinned  bool
}

type AlertRepository interface {
	GetByID(ctx context.Context, id int64) (*Alert, error)
	ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*Alert, error)
	Create(ctx context.Context, alert NewAlert) (*Alert, error)
	Update(ctx context.Context, id int64, alert NewAlert) (*Alert, error)
	Delete(ctx context.Context, id int64) error
}
