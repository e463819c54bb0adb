package logger

import (
	"log/slog"

	"token_transfer/internal/app/port"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// slogAdapter implements port.Logger on top of a *slog.Logger.
// A nil logger means the package-level global logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a port.Logger backed by the global logger set up by Init.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewZapAdapter returns a port.Logger writing to the given zap logger.
func NewZapAdapter(z *zap.Logger) port.Logger {
	return &slogAdapter{l: slog.New(zapslog.NewHandler(z.Core()))}
}

// NewNop returns a port.Logger that discards everything.
func NewNop() port.Logger {
	return NewZapAdapter(zap.NewNop())
}

func (a *slogAdapter) Info(msg string, args ...any) {
	if a.l == nil {
		Info(msg, args...)
		return
	}
	a.l.Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	if a.l == nil {
		Debug(msg, args...)
		return
	}
	a.l.Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	if a.l == nil {
		Warn(msg, args...)
		return
	}
	a.l.Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	if a.l == nil {
		Error(msg, args...)
		return
	}
	a.l.Error(msg, args...)
}
