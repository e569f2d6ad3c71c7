package fsm

import (
	"context"
	"errors"
)

var errTest = errors.New("test error")

// to returns a decide function that always moves to next.
func to[S comparable, E any](next S) DecideFunc[S, E] {
	return func(context.Context, Input[S, E]) (Decision[S], error) {
		return Goto(next), nil
	}
}

// quiet keeps test output free of engine logs and metrics.
func quiet() []Option {
	return []Option{WithLogger(nil), WithMetrics(false), WithTracing(false)}
}

// tracer records (event, from, to) for every hook it is installed as.
type tracer[S comparable, E any] struct {
	entries [][]any
}

func (tr *tracer[S, E]) hook(label string) HookFunc[S, E] {
	return func(_ context.Context, ch Change[S, E]) error {
		tr.entries = append(tr.entries, []any{label, ch.Event.Any(), ch.From.Any(), ch.To})

		return nil
	}
}

func (tr *tracer[S, E]) take() [][]any {
	out := tr.entries
	tr.entries = nil

	return out
}
