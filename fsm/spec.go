package fsm

import (
	"context"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-fsm/optional"
)

// Decision is what a decide function returns: stay put, move to a state,
// or move to a state and hand a value back to the dispatcher.
type Decision[S comparable] struct {
	next     S
	value    any
	moves    bool
	hasValue bool
}

// Stay abstains. No hooks run and the dispatch result is nil.
func Stay[S comparable]() Decision[S] {
	return Decision[S]{}
}

// Goto moves to next. The dispatch result is nil.
func Goto[S comparable](next S) Decision[S] {
	return Decision[S]{next: next, moves: true}
}

// GotoWith moves to next and makes value the dispatch result, even when next is the current state.
func GotoWith[S comparable](next S, value any) Decision[S] {
	return Decision[S]{next: next, value: value, moves: true, hasValue: true}
}

// Target returns the chosen state and whether the decision moves at all.
func (d Decision[S]) Target() (S, bool) { //nolint:ireturn
	return d.next, d.moves
}

// Value returns the value carried by GotoWith, or nil.
func (d Decision[S]) Value() any {
	return d.value
}

// HasValue reports whether the decision was built with GotoWith.
func (d Decision[S]) HasValue() bool {
	return d.hasValue
}

func (d Decision[S]) String() string {
	switch {
	case !d.moves:
		return "stay"
	case d.hasValue:
		return fmt.Sprintf("goto(%v, %v)", d.next, d.value)
	default:
		return fmt.Sprintf("goto(%v)", d.next)
	}
}

// Input is what decide functions see.
type Input[S comparable, E any] struct {
	Receiver any
	Event    E
	Current  S
}

// Change is what enter, leave and switch hooks see. Event and From are empty
// on the initial entry performed by Start.
type Change[S comparable, E any] struct {
	Receiver any
	Event    optional.Value[E]
	From     optional.Value[S]
	To       S
}

// DecideFunc chooses the next state for an event.
type DecideFunc[S comparable, E any] func(ctx context.Context, in Input[S, E]) (Decision[S], error)

// HookFunc observes a committed transition. Returning an error aborts the commit.
type HookFunc[S comparable, E any] func(ctx context.Context, ch Change[S, E]) error

// StateSpec describes one state. Every field is optional.
type StateSpec[S comparable, E any] struct {
	Decide  DecideFunc[S, E]
	Enter   HookFunc[S, E]
	Leave   HookFunc[S, E]
	Default bool
}

// Stage names a callback slot.
type Stage int

const (
	StageDecide Stage = iota + 1
	StageEnter
	StageLeave
	// StageSwitch is the machine-wide switch hook. It only appears in HookError;
	// On does not accept it.
	StageSwitch
)

func (s Stage) String() string {
	switch s {
	case StageDecide:
		return "decide"
	case StageEnter:
		return "enter"
	case StageLeave:
		return "leave"
	case StageSwitch:
		return "switch"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage maps "decide", "enter" or "leave" to its Stage.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "decide":
		return StageDecide, nil
	case "enter":
		return StageEnter, nil
	case "leave":
		return StageLeave, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidHookStage, name)
	}
}
