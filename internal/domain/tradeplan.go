package domain

import "context"

// TradePlanEntry is one row of a room's forward-looking trade plan.
type TradePlanEntry struct {
	ID            int64
	RoomSlug      string
	Ticker        string
	Bias          string
	Entry         *string
	Target1       *string
	Target2       *string
	Target3       *string
	Runner        *string
	Stop          *string
	OptionsStrike *string
	OptionsExp    *string
	Notes         *string
}

// NewTradePlanEntry carries the writable fields for plan creation and updates.
type NewTradePlanEntry struct {
	RoomSlug      string
	Ticker        string
	Bias          string
	Entry         *string
	Target1       *string
	Target2       *string
	Target3       *string
	Runner        *string
	Stop          *string
	OptionsStrike *string
	OptionsExp    *string
	Notes         *string
}

type TradePlanRepository interface {
	GetByID(ctx context.Context, id int64) (*TradePlanEntry, error)
	ListByRoom(ctx context.Context, roomSlug string) ([]*TradePlanEntry, error)
	Create(ctx context.Context, entry NewTradePlanEntry) (*TradePlanEntry, error)
	Update(ctx context.Context, id int64, entry NewTradePlanEntry) (*TradePlanEntry, error)
	Delete(ctx context.Context, id int64) error
}
