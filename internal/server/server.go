package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/app"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/errors"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/config"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// Connection rate limiting for the WebSocket endpoint.
const (
	connectionsPerSecond = 10.0
	connectionBurst      = 10
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	registry  *realtime.Registry
	limits    *ConnectionLimits
	clock     clockwork.Clock
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

// NewServer wires the HTTP edge. redis may be nil when the cross-instance
// bridge is not configured.
func NewServer(cfg *config.Config, appSvc *app.Service, registry *realtime.Registry, db postgresHealthChecker, redis redisHealthChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(errors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       appSvc,
		registry:  registry,
		limits:    NewConnectionLimits(int64(cfg.MaxWebSocketConnections), cfg.MaxConnectionsPerIP, connectionsPerSecond, connectionBurst),
		clock:     clock,
		db:        db,
		redis:     redis,
		startTime: clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
