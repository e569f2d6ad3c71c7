package fsm

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test uses its own machine name, so label sets never collide across parallel tests.

func TestDispatchMetrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const machine = "metrics-dispatch"

	def := New[string, string](machine, WithLogger(nil), WithTracing(false))
	require.NoError(t, def.AddDecider("a", func(_ context.Context, in Input[string, string]) (Decision[string], error) {
		switch in.Event {
		case "go":
			return Goto("b"), nil
		case "bad":
			return Goto("missing"), nil
		default:
			return Stay[string](), nil
		}
	}))
	require.NoError(t, def.AddDecider("b", to[string, string]("a")))

	sm, err := def.Start(ctx, WithInitialState("a"))
	require.NoError(t, err)

	_, err = sm.Dispatch(ctx, "go")
	require.NoError(t, err)
	_, err = sm.Dispatch(ctx, "back")
	require.NoError(t, err)
	_, err = sm.Dispatch(ctx, "idle")
	require.NoError(t, err)
	_, err = sm.Dispatch(ctx, "bad")
	require.Error(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(dispatchesTotal.WithLabelValues(machine, outcomeTransition)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(dispatchesTotal.WithLabelValues(machine, outcomeStay)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(dispatchesTotal.WithLabelValues(machine, outcomeError)), 0)

	assert.InDelta(t, 1, testutil.ToFloat64(transitionsTotal.WithLabelValues(machine, "none", "a")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(transitionsTotal.WithLabelValues(machine, "a", "b")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(transitionsTotal.WithLabelValues(machine, "b", "a")), 0)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(drainSize, "fsm_drain_size"), 1)
}

func TestHookFailureMetric(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const machine = "metrics-hooks"

	def := New[string, string](machine, WithLogger(nil), WithTracing(false))
	require.NoError(t, def.AddState("a", StateSpec[string, string]{
		Decide: to[string, string]("b"),
		Leave:  func(context.Context, Change[string, string]) error { return errTest },
	}))
	require.NoError(t, def.AddState("b", StateSpec[string, string]{}))

	sm, err := def.Start(ctx, WithInitialState("a"))
	require.NoError(t, err)

	for range 3 {
		_, err = sm.Dispatch(ctx, "go")
		require.ErrorIs(t, err, errTest)
	}

	assert.InDelta(t, 3, testutil.ToFloat64(hookFailuresTotal.WithLabelValues(machine, "leave")), 0)
}

func TestMetricsDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const machine = "metrics-off"

	sm, err := NewBuilder[int, int](machine, quiet()...).
		AddDecider(0, to[int, int](1)).
		AddDecider(1, to[int, int](0)).
		Start(ctx, WithInitialState(0))
	require.NoError(t, err)

	_, err = sm.Dispatch(ctx, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0, testutil.ToFloat64(dispatchesTotal.WithLabelValues(machine, outcomeTransition)), 0)
}

func TestLabelSanitization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"absent state", nil, "none"},
		{"empty string", "", "empty"},
		{"string", "idle", "idle"},
		{"int", 42, "42"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, stateLabel(tt.input))
		})
	}

	assert.Equal(t, "unnamed", sanitizeMachine(""))
	assert.Equal(t, "door", sanitizeMachine("door"))
}
