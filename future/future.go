// Package future provides a minimal Future/Promise pair used to hand dispatch
// outcomes from the engine to callers that do not want them inline.
package future

import (
	"context"
	"sync"

	"github.com/amp-labs/amp-fsm/try"
	"go.uber.org/atomic"
)

// Future is the read-only side of an asynchronous result.
//
// A Future is completed exactly once by its Promise. Any number of goroutines
// may wait on it, and callbacks registered before or after completion are
// invoked exactly once.
type Future[T any] struct {
	once        sync.Once
	mu          sync.Mutex
	done        *atomic.Bool
	result      try.Try[T]
	resultReady chan struct{}

	successCallbacks []func(T)
	errorCallbacks   []func(error)
	resultCallbacks  []func(try.Try[T])
}

// New creates a pending Future and the Promise that completes it.
func New[T any]() (*Future[T], *Promise[T]) {
	fut := &Future[T]{
		done:        atomic.NewBool(false),
		resultReady: make(chan struct{}),
	}

	return fut, &Promise[T]{future: fut}
}

// Completed returns a Future that is already resolved with the given result.
func Completed[T any](result try.Try[T]) *Future[T] {
	fut, promise := New[T]()
	promise.fulfill(result)

	return fut
}

// Done returns a channel that is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.resultReady
}

// IsDone reports whether the future has been resolved, without blocking.
func (f *Future[T]) IsDone() bool {
	return f.done.Load()
}

// Await blocks until the future is resolved and returns its value and error.
func (f *Future[T]) Await() (T, error) { //nolint:ireturn
	<-f.resultReady

	return f.result.Get()
}

// AwaitContext is like Await but gives up when ctx is done, returning ctx.Err().
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) { //nolint:ireturn
	select {
	case <-f.resultReady:
		return f.result.Get()
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// OnSuccess registers a callback run with the value if the future succeeds.
// Callbacks run on their own goroutine; panics are recovered and logged.
func (f *Future[T]) OnSuccess(callback func(T)) {
	f.mu.Lock()

	if !f.done.Load() {
		f.successCallbacks = append(f.successCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	if f.result.IsSuccess() {
		invokeCallback("OnSuccess", callback, f.result.Value)
	}
}

// OnError registers a callback run with the error if the future fails.
func (f *Future[T]) OnError(callback func(error)) {
	f.mu.Lock()

	if !f.done.Load() {
		f.errorCallbacks = append(f.errorCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	if f.result.IsFailure() {
		invokeCallback("OnError", callback, f.result.Error)
	}
}

// OnResult registers a callback run with the outcome, whichever it is.
func (f *Future[T]) OnResult(callback func(try.Try[T])) {
	f.mu.Lock()

	if !f.done.Load() {
		f.resultCallbacks = append(f.resultCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	invokeCallback("OnResult", callback, f.result)
}
