package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/app"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/errors"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

const (
	defaultListLimit      = 50
	defaultVideoListLimit = 12
	maxListLimit          = 200
)

func (s *Server) handleListAlerts(c echo.Context) error {
	alerts, err := s.app.ListAlerts(c.Request().Context(), c.Param("slug"), parseLimit(c.QueryParam("limit"), defaultListLimit))
	if err != nil {
		return errors.InternalError("failed to list alerts", err)
	}

	out := make([]realtime.AlertPayload, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, app.ToAlertPayload(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListTrades(c echo.Context) error {
	trades, err := s.app.ListTrades(c.Request().Context(), c.Param("slug"), parseLimit(c.QueryParam("limit"), defaultListLimit))
	if err != nil {
		return errors.InternalError("failed to list trades", err)
	}

	out := make([]realtime.TradePayload, 0, len(trades))
	for _, t := range trades {
		out = append(out, app.ToTradePayload(t))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListTradePlan(c echo.Context) error {
	entries, err := s.app.ListTradePlan(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return errors.InternalError("failed to list trade plan", err)
	}

	out := make([]realtime.TradePlanPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, app.ToTradePlanPayload(e))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListVideos(c echo.Context) error {
	videos, err := s.app.ListVideos(c.Request().Context(), c.Param("slug"), parseLimit(c.QueryParam("limit"), defaultVideoListLimit))
	if err != nil {
		return errors.InternalError("failed to list videos", err)
	}

	out := make([]realtime.VideoPayload, 0, len(videos))
	for _, v := range videos {
		out = append(out, app.ToVideoPayload(v))
	}
	return c.JSON(http.StatusOK, out)
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
