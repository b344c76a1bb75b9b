package server

import (
	"github.com/labstack/echo/v4"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/correlation"
)

// correlationMiddleware stamps every request context with a fresh
// correlation ID so the slog handler can attach it to each log line.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
