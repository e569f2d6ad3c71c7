package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	"fmt"
	"runtime/debug"

	"github.com/amp-labs/amp-fsm/errors"
)

// GetPanicRecoveryError converts a recovered panic value and optional stack trace
// into a standard error. If the panic value is nil, it returns nil.
// Error values are wrapped so errors.Is still finds them; anything else is formatted.
func GetPanicRecoveryError(err any, stack []byte) error {
	if err == nil {
		return nil
	}

	errErr, ok := err.(error)
	if ok {
		if stack != nil {
			return fmt.Errorf("%w: %w\nstack trace:\n%s", errors.ErrPanicRecovery, errErr, string(stack))
		}

		return fmt.Errorf("%w: %w", errors.ErrPanicRecovery, errErr)
	}

	if stack != nil {
		return fmt.Errorf("%w: %v\nstack trace:\n%s", errors.ErrPanicRecovery, err, string(stack))
	}

	return fmt.Errorf("%w: %v", errors.ErrPanicRecovery, err)
}

// CallRecovering runs f and turns a panic inside it into a returned error.
// The stack is only captured when withStack is true.
func CallRecovering(withStack bool, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var stack []byte
			if withStack {
				stack = debug.Stack()
			}

			err = GetPanicRecoveryError(r, stack)
		}
	}()

	return f()
}
