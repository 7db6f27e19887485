// Package logger holds the process-wide structured logger used by the
// query engine.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Config holds logger configuration.
type Config struct {
	Level     string `mapstructure:"level"`  // DEBUG, INFO, WARN, ERROR
	Format    string `mapstructure:"format"` // json, text
	AddSource bool   `mapstructure:"add_source"`
}

// New builds a logger writing to w without installing it.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init replaces the global logger. Output goes to stderr.
func Init(cfg Config) {
	l := New(cfg, os.Stderr)
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Get returns the global logger
func Get() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = New(Config{Level: "INFO", Format: "text"}, os.Stderr)
	}
	return logger
}
