package fsm

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrDuplicateState indicates a state id was registered twice.
	ErrDuplicateState = errors.New("state already defined")
	// ErrUnknownState indicates a reference to a state that was never registered.
	ErrUnknownState = errors.New("unknown state")
	// ErrNoInitialState indicates Start was called without an initial state and no default exists.
	ErrNoInitialState = errors.New("no initial state given and no default state set")
	// ErrIllegalTransition indicates a decide function chose an unregistered state.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrInvalidHookStage indicates On was called with a stage other than decide, enter or leave.
	ErrInvalidHookStage = errors.New("invalid hook stage")
	// ErrMultipleDefaults indicates more than one state spec claimed to be the default.
	ErrMultipleDefaults = errors.New("default state already set")
	// ErrInvalidHook indicates a hook value does not have the function type its stage needs.
	ErrInvalidHook = errors.New("invalid hook")
	// ErrHookFailed marks every error raised by, or recovered from, a user callback.
	ErrHookFailed = errors.New("hook failed")
	// ErrEntryFailed resolves dispatches queued by entry hooks when the initial entry fails.
	ErrEntryFailed = errors.New("initial entry failed")
)

// StateError ties a registration error to the state id it concerns.
type StateError struct {
	State any
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %v: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// TransitionError reports a transition that could not be committed.
// The message always contains "from->to".
type TransitionError struct {
	From any
	To   any
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %v->%v: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// HookError wraps a failure inside a decide, enter, leave or switch callback.
// Both ErrHookFailed and the callback's own error match with errors.Is.
type HookError struct {
	Stage Stage
	From  any
	To    any
	Err   error
}

func (e *HookError) Error() string {
	if e.Stage == StageDecide {
		return fmt.Sprintf("%s hook failed in state %v: %v", e.Stage, e.From, e.Err)
	}

	return fmt.Sprintf("%s hook failed on %v->%v: %v", e.Stage, e.From, e.To, e.Err)
}

func (e *HookError) Unwrap() []error {
	return []error{ErrHookFailed, e.Err}
}

// Kind classifies engine errors so callers can branch without matching text.
type Kind int

const (
	KindNone Kind = iota
	KindDuplicateState
	KindUnknownState
	KindNoInitialState
	KindIllegalTransition
	KindInvalidHookStage
	KindMultipleDefaults
	KindInvalidHook
	KindHookFailed
	KindOther
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	KindNone:              "none",
	KindDuplicateState:    "duplicate_state",
	KindUnknownState:      "unknown_state",
	KindNoInitialState:    "no_initial_state",
	KindIllegalTransition: "illegal_transition",
	KindInvalidHookStage:  "invalid_hook_stage",
	KindMultipleDefaults:  "multiple_defaults",
	KindInvalidHook:       "invalid_hook",
	KindHookFailed:        "hook_failed",
	KindOther:             "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf returns the Kind of err. Hook failures win over anything the hook itself returned,
// so a hook that fails with ErrUnknownState is still KindHookFailed.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var hookErr *HookError
	if errors.As(err, &hookErr) {
		return KindHookFailed
	}

	switch {
	case errors.Is(err, ErrDuplicateState):
		return KindDuplicateState
	case errors.Is(err, ErrUnknownState):
		return KindUnknownState
	case errors.Is(err, ErrNoInitialState):
		return KindNoInitialState
	case errors.Is(err, ErrIllegalTransition):
		return KindIllegalTransition
	case errors.Is(err, ErrInvalidHookStage):
		return KindInvalidHookStage
	case errors.Is(err, ErrMultipleDefaults):
		return KindMultipleDefaults
	case errors.Is(err, ErrInvalidHook):
		return KindInvalidHook
	case errors.Is(err, ErrHookFailed):
		return KindHookFailed
	default:
		return KindOther
	}
}

func wrapStateError(state any, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{State: state, Err: err}
}
