package fsm

import (
	"context"

	"github.com/amp-labs/amp-fsm/utils"
)

// decide runs the decision protocol: the global decider first, then the
// current state's own decide function only if the global one abstained.
func (i *Instance[S, E]) decide(ctx context.Context, t *task[S, E], cur S) (Decision[S], error) {
	in := Input[S, E]{
		Receiver: t.receiver,
		Event:    t.event,
		Current:  cur,
	}

	if global := i.def.globalDecider(); global != nil {
		decision, err := callDecide(ctx, global, in)
		if err != nil {
			return Stay[S](), &HookError{Stage: StageDecide, From: cur, Err: err}
		}

		if _, moves := decision.Target(); moves {
			return decision, nil
		}
	}

	spec, ok := i.def.lookup(cur)
	if !ok || spec.Decide == nil {
		return Stay[S](), nil
	}

	decision, err := callDecide(ctx, spec.Decide, in)
	if err != nil {
		return Stay[S](), &HookError{Stage: StageDecide, From: cur, Err: err}
	}

	return decision, nil
}

func callDecide[S comparable, E any](
	ctx context.Context,
	fn DecideFunc[S, E],
	in Input[S, E],
) (decision Decision[S], err error) {
	err = utils.CallRecovering(true, func() error {
		var callErr error

		decision, callErr = fn(ctx, in)

		return callErr
	})

	return decision, err
}
