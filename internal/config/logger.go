package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns the process logger, writing to stdout.
func NewLogger() *slog.Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter builds a logger from the logger section of AppConfig,
// or from the defaults before InitConfig has run. Every record carries the
// service name and version.
func NewLoggerWithWriter(w io.Writer) *slog.Logger {
	cfg := defaultConfig.Logger
	if AppConfig != nil {
		cfg = AppConfig.Logger
	}

	return slog.New(newLogHandler(w, cfg)).With(
		slog.String("service", "acceptjson"),
		slog.String("version", Version),
	)
}

func newLogHandler(w io.Writer, cfg LoggerConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	if cfg.JSONOutput {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// parseLogLevel maps a level name onto slog, ignoring case. Unknown names
// yield info.
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}

	return l
}
