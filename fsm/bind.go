package fsm

import (
	"context"

	"github.com/amp-labs/amp-fsm/future"
)

// Bound dispatches on an Instance with a fixed receiver. It shares the
// instance's state and queue.
type Bound[S comparable, E any] struct {
	inst     *Instance[S, E]
	receiver any
}

// Bind returns a dispatcher whose callbacks all see receiver. Unbound
// dispatches on the instance keep using the receiver given to Start.
func (i *Instance[S, E]) Bind(receiver any) *Bound[S, E] {
	return &Bound[S, E]{inst: i, receiver: receiver}
}

// Dispatch is Instance.Dispatch with the bound receiver.
func (b *Bound[S, E]) Dispatch(ctx context.Context, ev E) (any, error) {
	return b.inst.dispatch(ctx, b.receiver, ev)
}

// Submit is Instance.Submit with the bound receiver.
func (b *Bound[S, E]) Submit(ctx context.Context, ev E) *future.Future[any] {
	return b.inst.submit(ctx, b.receiver, ev)
}

// Send is Instance.Send with the bound receiver.
func (b *Bound[S, E]) Send(ctx context.Context, ev E) Reply {
	return b.inst.send(ctx, b.receiver, ev)
}

// State returns the instance's current state.
func (b *Bound[S, E]) State() S { //nolint:ireturn
	return b.inst.State()
}

// Receiver returns the bound receiver.
func (b *Bound[S, E]) Receiver() any {
	return b.receiver
}

// Instance returns the underlying instance.
func (b *Bound[S, E]) Instance() *Instance[S, E] {
	return b.inst
}
