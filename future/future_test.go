package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amp-labs/amp-fsm/try"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

func TestNew_Success(t *testing.T) {
	t.Parallel()

	fut, promise := New[int]()

	go func() {
		promise.Success(42)
	}()

	result, err := fut.Await()

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, fut.IsDone())
}

func TestNew_Error(t *testing.T) {
	t.Parallel()

	fut, promise := New[int]()

	go func() {
		promise.Failure(errTest)
	}()

	result, err := fut.Await()

	require.ErrorIs(t, err, errTest)
	assert.Equal(t, 0, result)
}

func TestPromise_OnlyFirstCompletionCounts(t *testing.T) {
	t.Parallel()

	fut, promise := New[string]()

	promise.Complete("first", nil)
	promise.Complete("", errTest)
	promise.Success("third")

	result, err := fut.Await()

	require.NoError(t, err)
	assert.Equal(t, "first", result)
	assert.Same(t, fut, promise.Future())
}

func TestCompleted(t *testing.T) {
	t.Parallel()

	fut := Completed(try.Failure[int](errTest))

	assert.True(t, fut.IsDone())

	select {
	case <-fut.Done():
	default:
		t.Fatal("completed future should not block")
	}

	_, err := fut.Await()
	require.ErrorIs(t, err, errTest)
}

func TestAwaitContext_Canceled(t *testing.T) {
	t.Parallel()

	fut, _ := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fut.AwaitContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, fut.IsDone())
}

func TestCallbacks(t *testing.T) {
	t.Parallel()

	t.Run("registered before completion", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[int]()

		got := make(chan int, 1)
		results := make(chan try.Try[int], 1)

		fut.OnSuccess(func(v int) { got <- v })
		fut.OnError(func(error) { t.Error("OnError must not run on success") })
		fut.OnResult(func(r try.Try[int]) { results <- r })

		promise.Success(7)

		assert.Equal(t, 7, waitFor(t, got))
		assert.Equal(t, 7, waitFor(t, results).Value)
	})

	t.Run("registered after completion", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[int]()
		promise.Failure(errTest)

		errs := make(chan error, 1)

		fut.OnSuccess(func(int) { t.Error("OnSuccess must not run on failure") })
		fut.OnError(func(err error) { errs <- err })

		assert.ErrorIs(t, waitFor(t, errs), errTest)
	})

	t.Run("panicking callback does not break others", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[int]()

		got := make(chan int, 1)

		fut.OnSuccess(func(int) { panic("boom") })
		fut.OnSuccess(func(v int) { got <- v })

		promise.Success(1)

		assert.Equal(t, 1, waitFor(t, got))
	})
}

func waitFor[T any](t *testing.T, ch <-chan T) T { //nolint:ireturn
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for callback")

		var zero T

		return zero
	}
}
