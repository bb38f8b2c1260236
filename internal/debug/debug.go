// Package debug carries the --debug switch through a context and configures
// the process-wide slog logger to match it.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

// WithDebug returns a context with debug mode enabled or disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether debug mode is enabled in ctx.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// NewLogger returns a text logger writing to w at Debug level when enabled,
// Warn otherwise.
func NewLogger(w io.Writer, enabled bool) *slog.Logger {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetupLogger installs a stderr logger as the slog default and returns it.
func SetupLogger(enabled bool) *slog.Logger {
	logger := NewLogger(os.Stderr, enabled)
	slog.SetDefault(logger)
	return logger
}
