package fsm

import (
	"context"
	"errors"
	"fmt"

	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/optional"
	"github.com/amp-labs/amp-fsm/try"
	"github.com/google/uuid"
)

// Instance is a running machine: one current state plus the dispatch queue.
// It is not safe for concurrent use; callbacks may dispatch on it, and those
// dispatches are queued behind the running one.
type Instance[S comparable, E any] struct {
	def      *Definition[S, E]
	id       uuid.UUID
	idString string
	receiver any

	state S
	queue taskQueue[S, E]
	busy  bool
}

type startOptions[S comparable] struct {
	initial  optional.Value[S]
	receiver any
}

// StartOption configures Start.
type StartOption[S comparable] func(*startOptions[S])

// WithInitialState overrides the default state.
func WithInitialState[S comparable](state S) StartOption[S] {
	return func(o *startOptions[S]) {
		o.initial = optional.Some(state)
	}
}

// WithReceiver sets the receiver passed to callbacks by unbound dispatches.
func WithReceiver[S comparable](receiver any) StartOption[S] {
	return func(o *startOptions[S]) {
		o.receiver = receiver
	}
}

// Start creates an Instance and performs the initial entry: the initial state's
// enter hook and the global switch hook run with empty Event and From. No leave
// hook runs.
//
// If the initial entry fails, the error is returned and no instance is created.
// Futures of dispatches queued by the entry hooks fail with ErrEntryFailed.
// Events dispatched by the entry hooks are processed before Start returns; if one
// of them fails, Start returns the instance together with that error.
func (d *Definition[S, E]) Start(ctx context.Context, opts ...StartOption[S]) (*Instance[S, E], error) {
	var so startOptions[S]
	for _, opt := range opts {
		opt(&so)
	}

	initial, ok := so.initial.Get()
	if !ok {
		initial, ok = d.DefaultState().Get()
		if !ok {
			return nil, ErrNoInitialState
		}
	}

	if !d.Has(initial) {
		return nil, wrapStateError(initial, ErrUnknownState)
	}

	id := uuid.New()
	inst := &Instance[S, E]{
		def:      d,
		id:       id,
		idString: id.String(),
		receiver: so.receiver,
	}

	ctx = withInstance(logger.With(ctx, "machine", d.name, "instance", inst.idString), inst)

	if err := inst.enter(ctx, initial); err != nil {
		inst.def.opts.logger.DispatchFailed(ctx, d.name, inst.idString, nil, err)

		err = inst.annotate(err)
		inst.abandon(ctx, err)

		return nil, err
	}

	d.opts.logger.Started(ctx, d.name, inst.idString, initial)

	if inst.queue.len() == 0 {
		return inst, nil
	}

	if res := inst.drain(ctx, nil); res.halt != nil {
		return inst, inst.annotate(res.halt)
	}

	return inst, nil
}

// enter runs the initial entry with the busy flag held, so hooks that dispatch get queued.
func (i *Instance[S, E]) enter(ctx context.Context, initial S) error {
	i.busy = true
	defer func() { i.busy = false }()

	err := i.commit(ctx, i.receiver, optional.None[E](), optional.None[S](), initial)

	i.countHookFailure(err)

	return err
}

// abandon empties the queue of an instance that will never run, failing every
// pending promise with cause.
func (i *Instance[S, E]) abandon(ctx context.Context, cause error) {
	for {
		t, ok := i.queue.pop()
		if !ok {
			return
		}

		if t.promise != nil {
			i.deliver(ctx, t.promise, try.Failure[any](fmt.Errorf("%w: %w", ErrEntryFailed, cause)))
		}
	}
}

// ID returns the instance id used in logs and spans.
func (i *Instance[S, E]) ID() uuid.UUID {
	return i.id
}

// State returns the state of the last committed transition.
func (i *Instance[S, E]) State() S { //nolint:ireturn
	return i.state
}

// Definition returns the definition the instance was started from.
func (i *Instance[S, E]) Definition() *Definition[S, E] {
	return i.def
}

// Receiver returns the receiver used by unbound dispatches.
func (i *Instance[S, E]) Receiver() any {
	return i.receiver
}

// Pending reports how many dispatches are queued and not yet processed.
func (i *Instance[S, E]) Pending() int {
	return i.queue.len()
}

// Busy reports whether a drain is running, which is only ever true inside a callback.
func (i *Instance[S, E]) Busy() bool {
	return i.busy
}

// Drain processes dispatches left queued by an earlier failure. It returns the
// failure that stopped it, if any. Called from inside a callback it does nothing.
func (i *Instance[S, E]) Drain(ctx context.Context) error {
	if i.busy || i.queue.len() == 0 {
		return nil
	}

	return i.annotate(i.drain(ctx, nil).halt)
}

// process runs decide and, when the decision moves, commit for one task.
func (i *Instance[S, E]) process(ctx context.Context, t *task[S, E]) (out try.Try[any]) {
	ctx, span := i.startSpan(withInstance(ctx, i), spanDispatch)
	span.SetAttributes(valueAttr("fsm.event", t.event), valueAttr("fsm.state", i.state))

	defer func() { endSpan(span, out.Error) }()

	cur := i.state

	i.def.opts.logger.Dispatched(ctx, i.def.name, i.idString, t.event, cur)

	decision, err := i.decide(ctx, t, cur)
	if err != nil {
		return i.fail(ctx, t, err)
	}

	next, moves := decision.Target()
	if !moves {
		i.def.opts.logger.Abstained(ctx, i.def.name, i.idString, t.event, cur)
		i.countDispatch(outcomeStay)

		return try.Success[any](nil)
	}

	if err := i.commit(ctx, t.receiver, optional.Some(t.event), optional.Some(cur), next); err != nil {
		return i.fail(ctx, t, err)
	}

	i.countDispatch(outcomeTransition)

	return try.Success(decision.Value())
}

func (i *Instance[S, E]) fail(ctx context.Context, t *task[S, E], err error) try.Try[any] {
	i.def.opts.logger.DispatchFailed(ctx, i.def.name, i.idString, t.event, err)
	i.countDispatch(outcomeError)
	i.countHookFailure(err)

	return try.Failure[any](i.annotate(err))
}

func (i *Instance[S, E]) countDispatch(outcome string) {
	if i.def.opts.metrics {
		dispatchesTotal.WithLabelValues(sanitizeMachine(i.def.name), outcome).Inc()
	}
}

func (i *Instance[S, E]) countHookFailure(err error) {
	if !i.def.opts.metrics || err == nil {
		return
	}

	var hookErr *HookError
	if errors.As(err, &hookErr) {
		hookFailuresTotal.WithLabelValues(sanitizeMachine(i.def.name), hookErr.Stage.String()).Inc()
	}
}

// annotate attaches the machine and instance to err for structured logging.
func (i *Instance[S, E]) annotate(err error) error {
	if err == nil || len(logger.ErrorAttrs(err)) > 0 {
		return err
	}

	return logger.AnnotateError(err, "machine", i.def.name, "instance", i.idString)
}
