// Package try holds a value-or-error pair, the single result shape produced by a dispatch.
package try

type Try[A any] struct {
	Value A
	Error error
}

// Success wraps a successful value.
func Success[A any](value A) Try[A] {
	return Try[A]{Value: value}
}

// Failure wraps an error; the value is the zero value of A.
func Failure[A any](err error) Try[A] {
	return Try[A]{Error: err}
}

// Of builds a Try from Go's usual (value, error) pair.
func Of[A any](value A, err error) Try[A] {
	if err != nil {
		return Failure[A](err)
	}

	return Success(value)
}

func (t Try[A]) IsSuccess() bool {
	return t.Error == nil
}

func (t Try[A]) IsFailure() bool {
	return t.Error != nil
}

func (t Try[A]) Get() (A, error) { //nolint:ireturn
	if t.IsFailure() {
		var zero A

		return zero, t.Error
	}

	return t.Value, nil
}
