package app

import (
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/domain"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// Dates travel as YYYY-MM-DD strings on the wire.
const wireDateLayout = "2006-01-02"

func ToAlertPayload(a *domain.Alert) realtime.AlertPayload {
	return realtime.AlertPayload{
		ID:          a.ID,
		RoomSlug:    a.RoomSlug,
		AlertType:   a.AlertType,
		Ticker:      a.Ticker,
		Title:       a.Title,
		Message:     a.Message,
		Notes:       a.Notes,
		TosString:   a.TosString,
		IsNew:       a.IsNew,
		IsPinned:    a.IsPinned,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func ToTradePayload(t *domain.Trade) realtime.TradePayload {
	var exitDate *string
	if t.ExitDate != nil {
		s := t.ExitDate.Format(wireDateLayout)
		exitDate = &s
	}
	return realtime.TradePayload{
		ID:                 t.ID,
		RoomSlug:           t.RoomSlug,
		Ticker:             t.Ticker,
		Direction:          t.Direction,
		Status:             t.Status,
		EntryPrice:         t.EntryPrice,
		ExitPrice:          t.ExitPrice,
		PnlPercent:         t.PnlPercent,
		Result:             t.Result,
		InvalidationReason: t.InvalidationReason,
		WasUpdated:         t.WasUpdated,
		EntryDate:          t.EntryDate.Format(wireDateLayout),
		ExitDate:           exitDate,
	}
}

func ToStatsPayload(s *domain.RoomStats) realtime.StatsPayload {
	return realtime.StatsPayload{
		RoomSlug:       s.RoomSlug,
		WinRate:        s.WinRate,
		WeeklyProfit:   s.WeeklyProfit,
		ActiveTrades:   s.ActiveTrades,
		ClosedThisWeek: s.ClosedThisWeek,
		TotalTrades:    s.TotalTrades,
		CurrentStreak:  s.CurrentStreak,
	}
}

func ToTradePlanPayload(e *domain.TradePlanEntry) realtime.TradePlanPayload {
	return realtime.TradePlanPayload{
		ID:            e.ID,
		RoomSlug:      e.RoomSlug,
		Ticker:        e.Ticker,
		Bias:          e.Bias,
		Entry:         e.Entry,
		Target1:       e.Target1,
		Target2:       e.Target2,
		Target3:       e.Target3,
		Runner:        e.Runner,
		Stop:          e.Stop,
		OptionsStrike: e.OptionsStrike,
		OptionsExp:    e.OptionsExp,
		Notes:         e.Notes,
	}
}

func ToVideoPayload(v *domain.Video) realtime.VideoPayload {
	return realtime.VideoPayload{
		ID:           v.ID,
		RoomSlug:     v.RoomSlug,
		WeekTitle:    v.WeekTitle,
		VideoTitle:   v.VideoTitle,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		PublishedAt:  v.PublishedAt,
	}
}
