package fsm

import (
	"context"

	"github.com/amp-labs/amp-fsm/bgworker"
	"github.com/amp-labs/amp-fsm/future"
	"github.com/amp-labs/amp-fsm/try"
)

// Dispatch processes ev and returns the decide-supplied value, or nil. It
// returns once every event queued by ev's callbacks has run, and reports the
// first failure among them.
//
// Called from inside a callback of the same instance, Dispatch only queues ev
// and returns (nil, nil); the event runs once the current one is done, and a
// failure is returned to the outermost Dispatch that is draining the queue.
func (i *Instance[S, E]) Dispatch(ctx context.Context, ev E) (any, error) {
	return i.dispatch(ctx, i.receiver, ev)
}

// Submit processes ev like Dispatch but never reports inline: the outcome
// resolves the returned future on the delivery pool. The outcome is the one
// Dispatch would return, so a failure of an event queued by ev's callbacks
// fails the future too. Called from inside a callback, the future resolves once
// the queued event has run.
//
// A failed event stops the drain even when its future already carries the
// error. Events queued behind it, and their futures, wait for the next
// Dispatch, Submit or Drain on the instance.
func (i *Instance[S, E]) Submit(ctx context.Context, ev E) *future.Future[any] {
	return i.submit(ctx, i.receiver, ev)
}

// Send dispatches ev using the definition's reporting mode.
func (i *Instance[S, E]) Send(ctx context.Context, ev E) Reply {
	return i.send(ctx, i.receiver, ev)
}

func (i *Instance[S, E]) dispatch(ctx context.Context, receiver any, ev E) (any, error) {
	t := &task[S, E]{ctx: ctx, receiver: receiver, event: ev}

	if !i.enqueue(t) {
		return nil, nil //nolint:nilnil
	}

	// If an older task stopped the drain before ours got its turn, ours is still
	// queued and the caller gets that older failure.
	return i.drain(ctx, t).outcome().Get()
}

func (i *Instance[S, E]) submit(ctx context.Context, receiver any, ev E) *future.Future[any] {
	fut, promise := future.New[any]()
	t := &task[S, E]{ctx: ctx, receiver: receiver, event: ev, promise: promise}

	if i.enqueue(t) {
		// Resolved only after everything ev caused has run. If ours never got its
		// turn it stays queued and the drain that runs it resolves the promise.
		if res := i.drain(ctx, t); res.ownRan {
			i.deliver(ctx, promise, res.outcome())
		}
	}

	return fut
}

func (i *Instance[S, E]) send(ctx context.Context, receiver any, ev E) Reply {
	if i.def.opts.reporting == ReportDeferred {
		return Reply{fut: i.submit(ctx, receiver, ev)}
	}

	value, err := i.dispatch(ctx, receiver, ev)

	return Reply{fut: future.Completed(try.Of(value, err))}
}

// deliver resolves a promise on the delivery pool. If the pool refuses the
// task the promise is resolved inline so no waiter hangs.
func (i *Instance[S, E]) deliver(ctx context.Context, promise *future.Promise[any], out try.Try[any]) {
	complete := func() { promise.CompleteWith(out) }

	var err error
	if pool := i.def.opts.pool; pool != nil {
		err = pool.Go(complete)
	} else {
		err = bgworker.Go(ctx, complete)
	}

	if err != nil {
		complete()
	}
}

// Reply is the outcome handle returned by Send.
type Reply struct {
	fut *future.Future[any]
}

// Await waits for the outcome. In ReportSync mode it never blocks.
func (r Reply) Await(ctx context.Context) (any, error) {
	return r.fut.AwaitContext(ctx)
}

// Done reports whether the outcome is available.
func (r Reply) Done() bool {
	return r.fut.IsDone()
}

// Future exposes the underlying future.
func (r Reply) Future() *future.Future[any] {
	return r.fut
}
