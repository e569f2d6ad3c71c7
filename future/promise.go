package future

import (
	"github.com/amp-labs/amp-fsm/try"
)

// Promise is the write-only side of a Future.
//
// Only the first of Success, Failure or Complete takes effect; later calls are
// ignored. A Promise may be fulfilled from any goroutine.
type Promise[T any] struct {
	future *Future[T]
}

// Future returns the future this promise completes.
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

// fulfill stores the result, wakes every waiter and runs the callbacks that
// were registered before completion.
func (p *Promise[T]) fulfill(result try.Try[T]) {
	p.future.once.Do(func() {
		p.future.mu.Lock()

		p.future.result = result
		p.future.done.Store(true)
		close(p.future.resultReady)

		successCallbacks := p.future.successCallbacks
		errorCallbacks := p.future.errorCallbacks
		resultCallbacks := p.future.resultCallbacks

		p.future.successCallbacks = nil
		p.future.errorCallbacks = nil
		p.future.resultCallbacks = nil

		p.future.mu.Unlock()

		for _, callback := range resultCallbacks {
			invokeCallback("OnResult", callback, result)
		}

		if result.Error == nil {
			for _, callback := range successCallbacks {
				invokeCallback("OnSuccess", callback, result.Value)
			}
		} else {
			for _, callback := range errorCallbacks {
				invokeCallback("OnError", callback, result.Error)
			}
		}
	})
}

// Success fulfills the promise with a value.
func (p *Promise[T]) Success(value T) {
	p.fulfill(try.Success(value))
}

// Failure fulfills the promise with an error. The value is the zero value of T.
func (p *Promise[T]) Failure(err error) {
	p.fulfill(try.Failure[T](err))
}

// Complete fulfills the promise from a (value, error) pair.
func (p *Promise[T]) Complete(value T, err error) {
	if err != nil {
		p.Failure(err)
	} else {
		p.Success(value)
	}
}

// CompleteWith fulfills the promise with an existing result.
func (p *Promise[T]) CompleteWith(result try.Try[T]) {
	p.fulfill(result)
}
