// Package errors holds the error values and helpers shared by the engine packages.
package errors

import "errors"

var (
	// ErrPanicRecovery marks an error that was produced from a recovered panic.
	ErrPanicRecovery = errors.New("recovered from panic")
	ErrWrongType     = errors.New("wrong type")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// The builder and the description validator use it to report every problem at once
// instead of stopping at the first one.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// First returns the earliest error added, or nil.
func (c *Collection) First() error {
	if len(c.errors) == 0 {
		return nil
	}

	return c.errors[0]
}

// Len reports how many errors have been collected.
func (c *Collection) Len() int {
	return len(c.errors)
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
