package fsm

import (
	"context"

	"github.com/amp-labs/amp-fsm/future"
	"github.com/amp-labs/amp-fsm/try"
	"go.opentelemetry.io/otel/attribute"
)

// task is one queued dispatch. A task with a promise reports through it;
// a task without one reports to whoever is draining the queue.
type task[S comparable, E any] struct {
	ctx      context.Context //nolint:containedctx
	receiver any
	event    E
	promise  *future.Promise[any]
}

// taskQueue is a FIFO of pending dispatches.
type taskQueue[S comparable, E any] struct {
	items []*task[S, E]
	head  int
}

func (q *taskQueue[S, E]) push(t *task[S, E]) {
	q.items = append(q.items, t)
}

func (q *taskQueue[S, E]) pop() (*task[S, E], bool) {
	if q.head >= len(q.items) {
		return nil, false
	}

	t := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}

	return t, true
}

func (q *taskQueue[S, E]) len() int {
	return len(q.items) - q.head
}

// drainResult is what one pass over the queue produced.
type drainResult struct {
	// own is the outcome of the task the draining caller submitted, if it ran.
	own    try.Try[any]
	ownRan bool
	// halt is the failure that stopped the drain.
	halt error
}

// outcome is what the draining caller reports, whatever the reporting mode:
// its own failure, else the failure that stopped the drain, else its own value.
func (r drainResult) outcome() try.Try[any] {
	switch {
	case r.ownRan && r.own.IsFailure():
		return r.own
	case r.halt != nil:
		return try.Failure[any](r.halt)
	default:
		return r.own
	}
}

// enqueue appends a dispatch and reports whether the caller must drain.
// A false return means a drain is already running further up the stack.
func (i *Instance[S, E]) enqueue(t *task[S, E]) bool {
	i.queue.push(t)

	if i.busy {
		i.def.opts.logger.Queued(t.ctx, i.def.name, i.idString, t.event, i.queue.len())

		return false
	}

	return true
}

// drain processes queued tasks oldest first until the queue is empty or a task fails.
// Tasks behind a failed one stay queued for the next drain. The busy flag is
// released however the loop ends.
//
// Promises of nested tasks are resolved as their task finishes. The caller's own
// task is reported by the caller once the drain is over.
func (i *Instance[S, E]) drain(ctx context.Context, own *task[S, E]) (res drainResult) {
	i.busy = true
	defer func() { i.busy = false }()

	drainCtx, span := i.startSpan(ctx, spanDrain)
	processed := 0

	defer func() {
		if i.def.opts.metrics {
			drainSize.WithLabelValues(sanitizeMachine(i.def.name)).Observe(float64(processed))
		}

		span.SetAttributes(
			attribute.Int("fsm.drain.processed", processed),
			attribute.Int("fsm.drain.pending", i.queue.len()),
		)
		endSpan(span, res.halt)
	}()

	for {
		t, ok := i.queue.pop()
		if !ok {
			return res
		}

		processed++

		// The caller's own task is traced under the drain span.
		taskCtx := t.ctx
		if t == own {
			taskCtx = drainCtx
		}

		out := i.process(taskCtx, t)

		if t.promise != nil && t != own {
			i.deliver(taskCtx, t.promise, out)
		}

		if t == own {
			res.own = out
			res.ownRan = true
		}

		if out.IsFailure() {
			res.halt = out.Error

			return res
		}
	}
}
