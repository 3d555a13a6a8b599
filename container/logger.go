package container

import (
	"context"
	"log/slog"
)

// Logger receives the container's diagnostics at three severities.
type Logger interface {
	Err(msg string)
	Log(msg string)
	Warn(msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Err(string)  {}
func (NopLogger) Log(string)  {}
func (NopLogger) Warn(string) {}

// nopHandler is a slog.Handler that discards all records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// SlogLogger adapts a *slog.Logger: Err logs at error, Log at info and Warn at warn level.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil logger discards all output.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	return &SlogLogger{l: l.With("component", "container")}
}

func (s *SlogLogger) Err(msg string)  { s.l.Error(msg) }
func (s *SlogLogger) Log(msg string)  { s.l.Info(msg) }
func (s *SlogLogger) Warn(msg string) { s.l.Warn(msg) }
