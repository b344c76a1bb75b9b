package app

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// EventPublisher is the typed broadcast surface the service publishes into.
// Implemented by broadcast.Broadcaster.
type EventPublisher interface {
	AlertCreated(ctx context.Context, alert realtime.AlertPayload)
	AlertUpdated(ctx context.Context, alert realtime.AlertPayload)
	AlertDeleted(ctx context.Context, roomSlug string, alertID int64)
	TradeCreated(ctx context.Context, trade realtime.TradePayload)
	TradeClosed(ctx context.Context, trade realtime.TradePayload)
	TradeUpdated(ctx context.Context, trade realtime.TradePayload)
	TradeInvalidated(ctx context.Context, trade realtime.TradePayload)
	StatsUpdated(ctx context.Context, stats realtime.StatsPayload)
	TradePlanCreated(ctx context.Context, entry realtime.TradePlanPayload)
	TradePlanUpdated(ctx context.Context, entry realtime.TradePlanPayload)
	TradePlanDeleted(ctx context.Context, roomSlug string, entryID int64)
	VideoPublished(ctx context.Context, video realtime.VideoPayload)
}

// Service is the application layer. It orchestrates the persistence and
// broadcast halves of every room mutation.
type Service struct {
	alerts domain.AlertRepository
	trades domain.TradeRepository
	plans  domain.TradePlanRepository
	videos domain.VideoRepository
	events EventPublisher
	clock  clockwork.Clock
}

// NewService creates the application layer service.
func NewService(alerts domain.AlertRepository, trades domain.TradeRepository, plans domain.TradePlanRepository, videos domain.VideoRepository, events EventPublisher, clock clockwork.Clock) *Service {
	return &Service{
		alerts: alerts,
		trades: trades,
		plans:  plans,
		videos: videos,
		events: events,
		clock:  clock,
	}
}

// --- Alerts ---

// GetAlert retrieves a single alert.
func (s *Service) GetAlert(ctx context.Context, id int64) (*domain.Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

// ListAlerts returns the most recent alerts of one room.
func (s *Service) ListAlerts(ctx context.Context, roomSlug string, limit int) ([]*domain.Alert, error) {
	return s.alerts.ListByRoom(ctx, roomSlug, limit)
}

// CreateAlert persists a new alert and broadcasts it into its room.
func (s *Service) CreateAlert(ctx context.Context, alert domain.NewAlert) (*domain.Alert, error) {
	created, err := s.alerts.Create(ctx, alert)
	if err != nil {
		return nil, err
	}
	s.events.AlertCreated(ctx, ToAlertPayload(created))
	return created, nil
}

// UpdateAlert persists an alert change and broadcasts it.
func (s *Service) UpdateAlert(ctx context.Context, id int64, alert domain.NewAlert) (*domain.Alert, error) {
	updated, err := s.alerts.Update(ctx, id, alert)
	if err != nil {
		return nil, err
	}
	s.events.AlertUpdated(ctx, ToAlertPayload(updated))
	return updated, nil
}

// DeleteAlert removes an alert and broadcasts the deletion.
func (s *Service) DeleteAlert(ctx context.Context, id int64) error {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.alerts.Delete(ctx, id); err != nil {
		return err
	}
	s.events.AlertDeleted(ctx, alert.RoomSlug, id)
	return nil
}

// --- Trades ---

// GetTrade retrieves a single trade.
func (s *Service) GetTrade(ctx context.Context, id int64) (*domain.Trade, error) {
	return s.trades.GetByID(ctx, id)
}

// ListTrades returns the most recent trades of one room.
func (s *Service) ListTrades(ctx context.Context, roomSlug string, limit int) ([]*domain.Trade, error) {
	return s.trades.ListByRoom(ctx, roomSlug, limit)
}

// OpenTrade persists a new open position and broadcasts it.
func (s *Service) OpenTrade(ctx context.Context, trade domain.NewTrade) (*domain.Trade, error) {
	if trade.EntryDate.IsZero() {
		trade.EntryDate = s.clock.Now()
	}
	created, err := s.trades.Create(ctx, trade)
	if err != nil {
		return nil, err
	}
	s.events.TradeCreated(ctx, ToTradePayload(created))
	s.refreshStats(ctx, created.RoomSlug)
	return created, nil
}

// CloseTrade records the trade result, broadcasts it, and refreshes room stats.
func (s *Service) CloseTrade(ctx context.Context, id int64, tc domain.TradeClose) (*domain.Trade, error) {
	if tc.ExitDate.IsZero() {
		tc.ExitDate = s.clock.Now()
	}
	closed, err := s.trades.Close(ctx, id, tc)
	if err != nil {
		return nil, err
	}
	s.events.TradeClosed(ctx, ToTradePayload(closed))
	s.refreshStats(ctx, closed.RoomSlug)
	return closed, nil
}

// UpdateTradeEntry adjusts an open position's entry price and broadcasts it.
func (s *Service) UpdateTradeEntry(ctx context.Context, id int64, entryPrice float64) (*domain.Trade, error) {
	updated, err := s.trades.UpdateEntry(ctx, id, entryPrice)
	if err != nil {
		return nil, err
	}
	s.events.TradeUpdated(ctx, ToTradePayload(updated))
	return updated, nil
}

// InvalidateTrade marks a setup as no longer valid and broadcasts it.
func (s *Service) InvalidateTrade(ctx context.Context, id int64, reason string) (*domain.Trade, error) {
	invalidated, err := s.trades.Invalidate(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	s.events.TradeInvalidated(ctx, ToTradePayload(invalidated))
	s.refreshStats(ctx, invalidated.RoomSlug)
	return invalidated, nil
}

// refreshStats recomputes and broadcasts room stats. Failures are logged and
// swallowed: the triggering mutation has already succeeded.
func (s *Service) refreshStats(ctx context.Context, roomSlug string) {
	stats, err := s.trades.StatsByRoom(ctx, roomSlug)
	if err != nil {
		slog.Error("Failed to refresh room stats", "room_slug", roomSlug, "error", err)
		return
	}
	s.events.StatsUpdated(ctx, ToStatsPayload(stats))
}

// --- Trade plan ---

// ListTradePlan returns the full plan of one room.
func (s *Service) ListTradePlan(ctx context.Context, roomSlug string) ([]*domain.TradePlanEntry, error) {
	return s.plans.ListByRoom(ctx, roomSlug)
}

// CreateTradePlanEntry persists a new plan entry and broadcasts it.
func (s *Service) CreateTradePlanEntry(ctx context.Context, entry domain.NewTradePlanEntry) (*domain.TradePlanEntry, error) {
	created, err := s.plans.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.events.TradePlanCreated(ctx, ToTradePlanPayload(created))
	return created, nil
}

// UpdateTradePlanEntry persists a plan change and broadcasts it.
func (s *Service) UpdateTradePlanEntry(ctx context.Context, id int64, entry domain.NewTradePlanEntry) (*domain.TradePlanEntry, error) {
	updated, err := s.plans.Update(ctx, id, entry)
	if err != nil {
		return nil, err
	}
	s.events.TradePlanUpdated(ctx, ToTradePlanPayload(updated))
	return updated, nil
}

// DeleteTradePlanEntry removes a plan entry and broadcasts the deletion.
func (s *Service) DeleteTradePlanEntry(ctx context.Context, id int64) error {
	entry, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}
	s.events.TradePlanDeleted(ctx, entry.RoomSlug, id)
	return nil
}

// --- Videos ---

// ListVideos returns the most recent videos of one room.
func (s *Service) ListVideos(ctx context.Context, roomSlug string, limit int) ([]*domain.Video, error) {
	return s.videos.ListByRoom(ctx, roomSlug, limit)
}

// PublishVideo persists a weekly video and broadcasts it.
func (s *Service) PublishVideo(ctx context.Context, video domain.NewVideo) (*domain.Video, error) {
	created, err := s.videos.Create(ctx, video)
	if err != nil {
		return nil, err
	}
	s.events.VideoPublished(ctx, ToVideoPayload(created))
	return created, nil
}
