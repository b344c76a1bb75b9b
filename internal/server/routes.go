package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Realtime fabric
	s.echo.GET("/ws", s.handleWebSocket)
	s.echo.GET("/realtime/stats", s.handleRealtimeStats)
	s.echo.POST("/realtime/test", s.handleRealtimeTest, s.requireAdmin)

	// Public read API
	s.echo.GET("/api/rooms/:slug/alerts", s.handleListAlerts)
	s.echo.GET("/api/rooms/:slug/trades", s.handleListTrades)
	s.echo.GET("/api/rooms/:slug/trade-plan", s.handleListTradePlan)
	s.echo.GET("/api/rooms/:slug/videos", s.handleListVideos)

	// Admin mutations (JWT bearer auth)
	admin := s.echo.Group("/api/admin", s.requireAdmin)
	admin.POST("/alerts", s.handleCreateAlert)
	admin.PUT("/alerts/:id", s.handleUpdateAlert)
	admin.DELETE("/alerts/:id", s.handleDeleteAlert)
	admin.POST("/trades", s.handleOpenTrade)
	admin.POST("/trades/:id/close", s.handleCloseTrade)
	admin.POST("/trades/:id/invalidate", s.handleInvalidateTrade)
	admin.PUT("/trades/:id/entry", s.handleUpdateTradeEntry)
	admin.POST("/trade-plan", s.handleCreateTradePlanEntry)
	admin.PUT("/trade-plan/:id", s.handleUpdateTradePlanEntry)
	admin.DELETE("/trade-plan/:id", s.handleDeleteTradePlanEntry)
	admin.POST("/videos", s.handlePublishVideo)
}
