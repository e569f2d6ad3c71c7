package fsm

import (
	"context"
	"fmt"
	"slices"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/errors"
)

// Builder provides a fluent API for constructing a Definition. Configuration
// errors are collected and returned together by Build or Start.
type Builder[S comparable, E any] struct {
	def  *Definition[S, E]
	errs errors.Collection
}

// NewBuilder creates a builder for an empty Definition.
func NewBuilder[S comparable, E any](name string, opts ...Option) *Builder[S, E] {
	return &Builder[S, E]{def: New[S, E](name, opts...)}
}

// AddState registers a state.
func (b *Builder[S, E]) AddState(id S, spec StateSpec[S, E]) *Builder[S, E] {
	b.errs.Add(b.def.AddState(id, spec))

	return b
}

// AddDecider registers a state that only has a decide function.
func (b *Builder[S, E]) AddDecider(id S, decide DecideFunc[S, E]) *Builder[S, E] {
	b.errs.Add(b.def.AddDecider(id, decide))

	return b
}

// On attaches a callback to a registered state.
func (b *Builder[S, E]) On(stage Stage, id S, hook any) *Builder[S, E] {
	b.errs.Add(b.def.On(stage, id, hook))

	return b
}

// OnSwitch installs the global switch hook.
func (b *Builder[S, E]) OnSwitch(fn HookFunc[S, E]) *Builder[S, E] {
	b.def.OnSwitch(fn)

	return b
}

// OnDecide installs the global decider.
func (b *Builder[S, E]) OnDecide(fn DecideFunc[S, E]) *Builder[S, E] {
	b.def.OnDecide(fn)

	return b
}

// SetDefaultState marks a registered state as the default.
func (b *Builder[S, E]) SetDefaultState(id S) *Builder[S, E] {
	b.errs.Add(b.def.SetDefaultState(id))

	return b
}

// Err returns the configuration errors collected so far.
func (b *Builder[S, E]) Err() error {
	return b.errs.GetError()
}

// Build returns the Definition, or every configuration error seen.
func (b *Builder[S, E]) Build() (*Definition[S, E], error) {
	if err := b.errs.GetError(); err != nil {
		return nil, err
	}

	return b.def, nil
}

// Start builds and starts an Instance in one go.
func (b *Builder[S, E]) Start(ctx context.Context, opts ...StartOption[S]) (*Instance[S, E], error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}

	return def.Start(ctx, opts...)
}

// FromMap registers every state of specs at once. States are added in natural
// order of their printed ids so errors come out the same way on every run; all
// errors are returned together.
func FromMap[S comparable, E any](name string, specs map[S]StateSpec[S, E], opts ...Option) (*Definition[S, E], error) {
	ids := make([]S, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b S) int {
		return compareNatural(fmt.Sprint(a), fmt.Sprint(b))
	})

	builder := NewBuilder[S, E](name, opts...)
	for _, id := range ids {
		builder.AddState(id, specs[id])
	}

	return builder.Build()
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case natsort.Compare(a, b):
		return -1
	default:
		return 1
	}
}
