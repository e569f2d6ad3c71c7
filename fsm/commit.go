package fsm

import (
	"context"

	"github.com/amp-labs/amp-fsm/optional"
	"github.com/amp-labs/amp-fsm/utils"
)

// commit moves the instance to `to`. Leave of the current state, enter of the
// next one and the global switch hook run in that order; the state cell is
// only updated once all of them succeeded.
func (i *Instance[S, E]) commit(
	ctx context.Context,
	receiver any,
	event optional.Value[E],
	from optional.Value[S],
	to S,
) (err error) {
	ctx, span := i.startSpan(ctx, spanCommit)
	span.SetAttributes(valueAttr("fsm.from", from.Any()), valueAttr("fsm.to", to))

	defer func() { endSpan(span, err) }()

	toSpec, ok := i.def.lookup(to)
	if !ok {
		return &TransitionError{From: from.Any(), To: to, Err: ErrIllegalTransition}
	}

	change := Change[S, E]{
		Receiver: receiver,
		Event:    event,
		From:     from,
		To:       to,
	}

	if cur, has := from.Get(); has {
		if fromSpec, exists := i.def.lookup(cur); exists && fromSpec.Leave != nil {
			if err := callHook(ctx, fromSpec.Leave, change); err != nil {
				return &HookError{Stage: StageLeave, From: cur, To: to, Err: err}
			}
		}
	}

	if toSpec.Enter != nil {
		if err := callHook(ctx, toSpec.Enter, change); err != nil {
			return &HookError{Stage: StageEnter, From: from.Any(), To: to, Err: err}
		}
	}

	if sw := i.def.globalSwitch(); sw != nil {
		if err := callHook(ctx, sw, change); err != nil {
			return &HookError{Stage: StageSwitch, From: from.Any(), To: to, Err: err}
		}
	}

	i.state = to

	i.def.opts.logger.TransitionCommitted(ctx, i.def.name, i.idString, from.Any(), to)

	if i.def.opts.metrics {
		transitionsTotal.WithLabelValues(sanitizeMachine(i.def.name), stateLabel(from.Any()), stateLabel(to)).Inc()
	}

	return nil
}

func callHook[S comparable, E any](ctx context.Context, fn HookFunc[S, E], change Change[S, E]) error {
	return utils.CallRecovering(true, func() error {
		return fn(ctx, change)
	})
}
