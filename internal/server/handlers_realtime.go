package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/errors"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/metrics"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// Clients connect cross-origin from the frontend, so the Origin header is
// not part of the trust model. Access control lives in the token parameter.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and runs the session until the
// client disconnects. Initial rooms come from the comma-separated "rooms"
// query parameter.
func (s *Server) handleWebSocket(c echo.Context) error {
	ip := c.RealIP()
	allowed, reason := s.limits.Acquire(ip)
	if !allowed {
		metrics.WebSocketConnectionsRejected.WithLabelValues(string(reason)).Inc()
		slog.Warn("WebSocket connection rejected", "ip", ip, "reason", string(reason))
		status := http.StatusServiceUnavailable
		if reason == LimitReasonRate {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, map[string]string{"error": "connection limit reached"})
	}

	rooms := parseRooms(c.QueryParam("rooms"))
	// The token parameter is carried by clients but not yet verified.
	// TODO: validate member tokens here once the membership backend signs them.
	_ = c.QueryParam("token")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.limits.Release(ip)
		return errors.InternalError("websocket upgrade failed", err)
	}
	defer s.limits.Release(ip)

	session := realtime.NewSession(s.registry, conn, s.clock)
	session.Run(c.Request().Context(), rooms)
	return nil
}

// handleRealtimeStats reports the live state of the fabric.
func (s *Server) handleRealtimeStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "operational",
		"total_connections": s.registry.TotalConnections(),
		"rooms":             s.registry.ActiveRooms(),
		"capacity": map[string]any{
			"current":     s.limits.Global().Current(),
			"max":         s.limits.Global().Max(),
			"utilization": s.limits.Global().CapacityPct(),
			"unique_ips":  s.limits.PerIP().UniqueIPs(),
		},
	})
}

type realtimeTestRequest struct {
	Room        string `json:"room"`
	MessageType string `json:"message_type"`
}

// handleRealtimeTest injects a synthetic message into a room. Admin-only;
// used to verify delivery end to end without touching real data. Only
// heartbeat is accepted so synthetic frames can never corrupt client caches.
func (s *Server) handleRealtimeTest(c echo.Context) error {
	var req realtimeTestRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError("invalid request body")
	}
	if req.Room == "" {
		return errors.ValidationError("room is required")
	}
	if req.MessageType != "heartbeat" {
		return errors.ValidationError("unsupported message type").WithContext("message_type", req.MessageType)
	}

	s.registry.Broadcast(req.Room, realtime.NewHeartbeat(s.clock.Now().Unix()))
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Broadcast sent",
	})
}

func parseRooms(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	rooms := make([]string, 0, len(parts))
	for _, p := range parts {
		if slug := strings.TrimSpace(p); slug != "" {
			rooms = append(rooms, slug)
		}
	}
	return rooms
}
