package domain

import (
	"context"
	"time"
)

// Trade statuses and results as stored and broadcast.
const (
	TradeStatusOpen        = "open"
	TradeStatusClosed      = "closed"
	TradeStatusInvalidated = "invalidated"

	TradeResultWin  = "win"
	TradeResultLoss = "loss"
)

// Trade is a tracked position in a room.
type Trade struct {
	ID                 int64
	RoomSlug           string
	Ticker             string
	Direction          string
	Status             string
	EntryPrice         float64
	ExitPrice          *float64
	PnlPercent         *float64
	Result             *string
	InvalidationReason *string
	WasUpdated         *bool
	EntryDate          time.Time
	ExitDate           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewTrade carries the writable fields for opening a trade.
type NewTrade struct {
	RoomSlug   string
	Ticker     string
	Direction  string
	EntryPrice float64
	EntryDate  time.Time
}

// TradeClose carries the fields recorded when a trade is closed.
type TradeClose struct {
	ExitPrice  float64
	PnlPercent float64
	Result     string
	ExitDate   time.Time
}

// RoomStats aggregates trade performance for one room.
type RoomStats struct {
	RoomSlug       string
	WinRate        *float64
	WeeklyProfit   *string
	ActiveTrades   *int32
	ClosedThisWeek *int32
	TotalTrades    *int32
	CurrentStreak  *int32
}

type TradeRepository interface {
	GetByID(ctx context.Context, id int64) (*Trade, error)
	ListByRoom(ctx context.Context, roomSlug string, limit int) ([]*Trade, error)
	Create(ctx context.Context, trade NewTrade) (*Trade, error)
	Close(ctx context.Context, id int64, close TradeClose) (*Trade, error)
	UpdateEntry(ctx context.Context, id int64, entryPrice float64) (*Trade, error)
	Invalidate(ctx context.Context, id int64, reason string) (*Trade, error)
	StatsByRoom(ctx context.Context, roomSlug string) (*RoomStats, error)
}
