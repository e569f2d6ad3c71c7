package fsm

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-fsm/logger"
)

// Logger provides logging hooks for machine execution.
type Logger interface {
	Started(ctx context.Context, machine, instance string, state any)
	Dispatched(ctx context.Context, machine, instance string, event, state any)
	Abstained(ctx context.Context, machine, instance string, event, state any)
	TransitionCommitted(ctx context.Context, machine, instance string, from, to any)
	DispatchFailed(ctx context.Context, machine, instance string, event any, err error)
	Queued(ctx context.Context, machine, instance string, event any, pending int)
}

// DefaultLogger implements Logger using slog. Everything but failures is logged at debug level.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger that resolves its slog.Logger from the context
// on every call, so values attached with logger.With show up.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// NewSlogLogger creates a logger that always writes to l.
func NewSlogLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: l}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) Started(ctx context.Context, machine, instance string, state any) {
	l.get(ctx).DebugContext(ctx, "Machine started",
		"machine", machine,
		"instance", instance,
		"state", state,
	)
}

func (l *DefaultLogger) Dispatched(ctx context.Context, machine, instance string, event, state any) {
	l.get(ctx).DebugContext(ctx, "Event dispatched",
		"machine", machine,
		"instance", instance,
		"event", event,
		"state", state,
	)
}

func (l *DefaultLogger) Abstained(ctx context.Context, machine, instance string, event, state any) {
	l.get(ctx).DebugContext(ctx, "No transition",
		"machine", machine,
		"instance", instance,
		"event", event,
		"state", state,
	)
}

func (l *DefaultLogger) TransitionCommitted(ctx context.Context, machine, instance string, from, to any) {
	l.get(ctx).DebugContext(ctx, "Transition committed",
		"machine", machine,
		"instance", instance,
		"from", from,
		"to", to,
	)
}

func (l *DefaultLogger) DispatchFailed(ctx context.Context, machine, instance string, event any, err error) {
	l.get(ctx).ErrorContext(ctx, "Dispatch failed",
		"machine", machine,
		"instance", instance,
		"event", event,
		"kind", KindOf(err).String(),
		"error", err,
	)
}

func (l *DefaultLogger) Queued(ctx context.Context, machine, instance string, event any, pending int) {
	l.get(ctx).DebugContext(ctx, "Event queued behind running dispatch",
		"machine", machine,
		"instance", instance,
		"event", event,
		"pending", pending,
	)
}

type noopLogger struct{}

func (noopLogger) Started(context.Context, string, string, any) {}
func (noopLogger) Dispatched(context.Context, string, string, any, any) {}
func (noopLogger) Abstained(context.Context, string, string, any, any) {}
func (noopLogger) TransitionCommitted(context.Context, string, string, any, any) {}
func (noopLogger) DispatchFailed(context.Context, string, string, any, error) {}
func (noopLogger) Queued(context.Context, string, string, any, int) {}
