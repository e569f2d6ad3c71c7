// Package fsm is a small embeddable finite-state-machine engine.
//
// A Definition registers states, each with optional decide, enter and leave
// callbacks, plus machine-wide hooks. Start turns it into an Instance that
// advances in response to events. Callbacks may dispatch new events on the
// same Instance; those are queued and processed in submission order once the
// running dispatch finishes.
package fsm

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/amp-labs/amp-fsm/optional"
)

// Definition is a mutable registry of states and machine-wide hooks.
// It is shared by every Instance started from it, so later changes are visible
// to those instances. Reads are safe from many goroutines; mutation is meant for
// configuration time.
type Definition[S comparable, E any] struct {
	name string
	opts options

	mu           sync.RWMutex
	states       map[S]*StateSpec[S, E]
	decider      DecideFunc[S, E]
	switchHook   HookFunc[S, E]
	defaultState optional.Value[S]
}

// New creates an empty Definition.
func New[S comparable, E any](name string, opts ...Option) *Definition[S, E] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Definition[S, E]{
		name:   name,
		opts:   o,
		states: make(map[S]*StateSpec[S, E]),
	}
}

// Name returns the machine name used in logs, metrics and spans.
func (d *Definition[S, E]) Name() string {
	return d.name
}

// Reporting returns the configured reporting mode.
func (d *Definition[S, E]) Reporting() ReportingMode {
	return d.opts.reporting
}

// AddState registers a state. Redefinition fails with ErrDuplicateState and
// leaves the first registration intact. A spec claiming Default when another
// state already is the default fails with ErrMultipleDefaults.
func (d *Definition[S, E]) AddState(id S, spec StateSpec[S, E]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.states[id]; exists {
		return wrapStateError(id, ErrDuplicateState)
	}

	if spec.Default {
		if current, ok := d.defaultState.Get(); ok {
			return wrapStateError(id, fmt.Errorf("%w (%v)", ErrMultipleDefaults, current))
		}

		d.defaultState = optional.Some(id)
	}

	d.states[id] = &spec

	return nil
}

// AddDecider registers a state that only has a decide function.
func (d *Definition[S, E]) AddDecider(id S, decide DecideFunc[S, E]) error {
	return d.AddState(id, StateSpec[S, E]{Decide: decide})
}

// On attaches or overwrites one callback of a registered state. The hook must be a
// DecideFunc for StageDecide and a HookFunc for StageEnter and StageLeave
// (plain functions with the same signature are accepted too).
func (d *Definition[S, E]) On(stage Stage, id S, hook any) error {
	switch stage {
	case StageDecide:
		fn, ok := asDecideFunc[S, E](hook)
		if !ok {
			return wrapStateError(id, fmt.Errorf("%w: %s hook has type %T", ErrInvalidHook, stage, hook))
		}

		return d.OnStateDecide(id, fn)
	case StageEnter, StageLeave:
		fn, ok := asHookFunc[S, E](hook)
		if !ok {
			return wrapStateError(id, fmt.Errorf("%w: %s hook has type %T", ErrInvalidHook, stage, hook))
		}

		return d.setHook(stage, id, fn)
	case StageSwitch:
		return fmt.Errorf("%w: %s (use OnSwitch)", ErrInvalidHookStage, stage)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidHookStage, stage)
	}
}

// OnStateDecide sets the decide function of a registered state.
func (d *Definition[S, E]) OnStateDecide(id S, fn DecideFunc[S, E]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.states[id]
	if !ok {
		return wrapStateError(id, ErrUnknownState)
	}

	spec.Decide = fn

	return nil
}

// OnStateEnter sets the enter hook of a registered state.
func (d *Definition[S, E]) OnStateEnter(id S, fn HookFunc[S, E]) error {
	return d.setHook(StageEnter, id, fn)
}

// OnStateLeave sets the leave hook of a registered state.
func (d *Definition[S, E]) OnStateLeave(id S, fn HookFunc[S, E]) error {
	return d.setHook(StageLeave, id, fn)
}

func (d *Definition[S, E]) setHook(stage Stage, id S, fn HookFunc[S, E]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.states[id]
	if !ok {
		return wrapStateError(id, ErrUnknownState)
	}

	if stage == StageEnter {
		spec.Enter = fn
	} else {
		spec.Leave = fn
	}

	return nil
}

// OnSwitch installs the global switch hook, run after every committed transition
// including the initial entry. Last write wins.
func (d *Definition[S, E]) OnSwitch(fn HookFunc[S, E]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.switchHook = fn
}

// OnDecide installs the global decider, consulted before any per-state decide.
// Last write wins.
func (d *Definition[S, E]) OnDecide(fn DecideFunc[S, E]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.decider = fn
}

// SetDefaultState marks a registered state as the one Start uses when no
// initial state is given. It replaces any previous default.
func (d *Definition[S, E]) SetDefaultState(id S) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.states[id]
	if !ok {
		return wrapStateError(id, ErrUnknownState)
	}

	if prev, had := d.defaultState.Get(); had {
		if prevSpec, exists := d.states[prev]; exists {
			prevSpec.Default = false
		}
	}

	spec.Default = true
	d.defaultState = optional.Some(id)

	return nil
}

// DefaultState returns the default state, if one is set.
func (d *Definition[S, E]) DefaultState() optional.Value[S] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.defaultState
}

// Has reports whether id is registered.
func (d *Definition[S, E]) Has(id S) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.states[id]

	return ok
}

// States returns the registered ids in natural order of their printed form.
func (d *Definition[S, E]) States() []S {
	d.mu.RLock()

	ids := make([]S, 0, len(d.states))
	for id := range d.states {
		ids = append(ids, id)
	}

	d.mu.RUnlock()

	slices.SortFunc(ids, func(a, b S) int {
		return compareNatural(fmt.Sprint(a), fmt.Sprint(b))
	})

	return ids
}

// lookup returns a copy of a state's spec so callbacks run without the lock held.
func (d *Definition[S, E]) lookup(id S) (StateSpec[S, E], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	spec, ok := d.states[id]
	if !ok {
		return StateSpec[S, E]{}, false
	}

	return *spec, true
}

func (d *Definition[S, E]) globalDecider() DecideFunc[S, E] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.decider
}

func (d *Definition[S, E]) globalSwitch() HookFunc[S, E] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.switchHook
}

func asDecideFunc[S comparable, E any](hook any) (DecideFunc[S, E], bool) {
	switch fn := hook.(type) {
	case DecideFunc[S, E]:
		return fn, fn != nil
	case func(context.Context, Input[S, E]) (Decision[S], error):
		return fn, fn != nil
	default:
		return nil, false
	}
}

func asHookFunc[S comparable, E any](hook any) (HookFunc[S, E], bool) {
	switch fn := hook.(type) {
	case HookFunc[S, E]:
		return fn, fn != nil
	case func(context.Context, Change[S, E]) error:
		return fn, fn != nil
	default:
		return nil, false
	}
}
