// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/correlation"
)

// Logger is the shared structured logger, set by InitLogger.
var Logger *slog.Logger

// InitLogger installs the default logger. level is one of debug, info,
// warn, error (anything else means info); format "json" selects JSON
// output, anything else text. Records logged with a correlation-stamped
// context pick up a correlation_id attribute.
func InitLogger(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(correlation.NewHandler(handler))
	slog.SetDefault(Logger)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
