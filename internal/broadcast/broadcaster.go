package broadcast

import (
	"context"
	"log/slog"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// Publisher forwards an event to subscribers on other instances. Implemented
// by the Redis bridge; nil means single-instance operation.
type Publisher interface {
	Publish(ctx context.Context, roomSlug string, msg realtime.Message) error
}

// Broadcaster publishes domain events into rooms. It is the only surface
// domain code needs: one typed method per event kind, fire-and-forget.
type Broadcaster struct {
	registry *realtime.Registry
	remote   Publisher
}

// New creates a broadcaster over the local registry. remote may be nil.
func New(registry *realtime.Registry, remote Publisher) *Broadcaster {
	return &Broadcaster{registry: registry, remote: remote}
}

func (b *Broadcaster) publish(ctx context.Context, roomSlug string, msg realtime.Message) {
	b.registry.Broadcast(roomSlug, msg)

	if b.remote != nil {
		if err := b.remote.Publish(ctx, roomSlug, msg); err != nil {
			slog.Error("Failed to publish event to bridge", "room", roomSlug, "type", string(msg.Type), "error", err)
		}
	}
}

// AlertCreated broadcasts a new alert into its room.
func (b *Broadcaster) AlertCreated(ctx context.Context, alert realtime.AlertPayload) {
	b.publish(ctx, alert.RoomSlug, realtime.NewAlertCreated(alert))
	slog.Info("Alert created event broadcast", "room_slug", alert.RoomSlug, "alert_id", alert.ID)
}

// AlertUpdated broadcasts an alert change into its room.
func (b *Broadcaster) AlertUpdated(ctx context.Context, alert realtime.AlertPayload) {
	b.publish(ctx, alert.RoomSlug, realtime.NewAlertUpdated(alert))
	slog.Info("Alert updated event broadcast", "room_slug", alert.RoomSlug, "alert_id", alert.ID)
}

// AlertDeleted broadcasts an alert removal. Deletions carry only the ID, so
// the room is passed explicitly.
func (b *Broadcaster) AlertDeleted(ctx context.Context, roomSlug string, alertID int64) {
	b.publish(ctx, roomSlug, realtime.NewAlertDeleted(alertID))
	slog.Info("Alert deleted event broadcast", "room_slug", roomSlug, "alert_id", alertID)
}

// TradeCreated broadcasts a newly opened trade.
func (b *Broadcaster) TradeCreated(ctx context.Context, trade realtime.TradePayload) {
	b.publish(ctx, trade.RoomSlug, realtime.NewTradeCreated(trade))
	slog.Info("Trade created event broadcast", "room_slug", trade.RoomSlug, "trade_id", trade.ID, "ticker", trade.Ticker)
}

// TradeClosed broadcasts a closed trade with its result.
func (b *Broadcaster) TradeClosed(ctx context.Context, trade realtime.TradePayload) {
	b.publish(ctx, trade.RoomSlug, realtime.NewTradeClosed(trade))
	slog.Info("Trade closed event broadcast", "room_slug", trade.RoomSlug, "trade_id", trade.ID, "ticker", trade.Ticker)
}

// TradeUpdated broadcasts a position adjustment.
func (b *Broadcaster) TradeUpdated(ctx context.Context, trade realtime.TradePayload) {
	b.publish(ctx, trade.RoomSlug, realtime.NewTradeUpdated(trade))
	slog.Info("Trade updated event broadcast", "room_slug", trade.RoomSlug, "trade_id", trade.ID, "ticker", trade.Ticker)
}

// TradeInvalidated broadcasts a setup that no longer holds.
func (b *Broadcaster) TradeInvalidated(ctx context.Context, trade realtime.TradePayload) {
	b.publish(ctx, trade.RoomSlug, realtime.NewTradeInvalidated(trade))
	slog.Info("Trade invalidated event broadcast", "room_slug", trade.RoomSlug, "trade_id", trade.ID, "ticker", trade.Ticker)
}

// StatsUpdated broadcasts recalculated room performance metrics.
func (b *Broadcaster) StatsUpdated(ctx context.Context, stats realtime.StatsPayload) {
	b.publish(ctx, stats.RoomSlug, realtime.NewStatsUpdated(stats))
	slog.Info("Stats updated event broadcast", "room_slug", stats.RoomSlug)
}

// TradePlanCreated broadcasts a new trade-plan entry.
func (b *Broadcaster) TradePlanCreated(ctx context.Context, entry realtime.TradePlanPayload) {
	b.publish(ctx, entry.RoomSlug, realtime.NewTradePlanCreated(entry))
	slog.Info("Trade plan created event broadcast", "room_slug", entry.RoomSlug, "entry_id", entry.ID, "ticker", entry.Ticker)
}

// TradePlanUpdated broadcasts a trade-plan change.
func (b *Broadcaster) TradePlanUpdated(ctx context.Context, entry realtime.TradePlanPayload) {
	b.publish(ctx, entry.RoomSlug, realtime.NewTradePlanUpdated(entry))
	slog.Info("Trade plan updated event broadcast", "room_slug", entry.RoomSlug, "entry_id", entry.ID, "ticker", entry.Ticker)
}

// TradePlanDeleted broadcasts a trade-plan entry removal.
func (b *Broadcaster) TradePlanDeleted(ctx context.Context, roomSlug string, entryID int64) {
	b.publish(ctx, roomSlug, realtime.NewTradePlanDeleted(entryID))
	slog.Info("Trade plan deleted event broadcast", "room_slug", roomSlug, "entry_id", entryID)
}

// VideoPublished broadcasts a published weekly video.
func (b *Broadcaster) VideoPublished(ctx context.Context, video realtime.VideoPayload) {
	b.publish(ctx, video.RoomSlug, realtime.NewVideoPublished(video))
	slog.Info("Video published event broadcast", "room_slug", video.RoomSlug, "video_id", video.ID, "title", video.VideoTitle)
}
