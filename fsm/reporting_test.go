package fsm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-fsm/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oddEven(t *testing.T, name string, opts ...Option) *Definition[string, int] {
	t.Helper()

	def, err := NewBuilder[string, int](name, append(quiet(), opts...)...).
		AddDecider("odd", func(_ context.Context, in Input[string, int]) (Decision[string], error) {
			return GotoWith("even", -in.Event), nil
		}).
		AddDecider("even", func(_ context.Context, in Input[string, int]) (Decision[string], error) {
			return GotoWith("odd", in.Event), nil
		}).
		AddDecider("stuck", to[string, int]("nowhere")).
		SetDefaultState("odd").
		Build()
	require.NoError(t, err)

	return def
}

func awaitCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	sm, err := oddEven(t, "submit").Start(ctx)
	require.NoError(t, err)

	v, err := sm.Submit(ctx, 5).AwaitContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, -5, v)
	assert.Equal(t, "even", sm.State())

	stuck, err := sm.Definition().Start(ctx, WithInitialState("stuck"))
	require.NoError(t, err)

	fut := stuck.Submit(ctx, 1)

	_, err = fut.AwaitContext(ctx)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, "stuck", stuck.State())
}

func TestSubmitFromCallbackResolvesAfterItRuns(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	type inner struct {
		result any
		err    error
	}

	got := make(chan inner, 1)

	def := New[string, string]("nested-submit", quiet()...)
	require.NoError(t, def.AddState("a", StateSpec[string, string]{
		Decide: to[string, string]("b"),
		Leave: func(ctx context.Context, _ Change[string, string]) error {
			self, _ := InstanceFrom[string, string](ctx)
			fut := self.Submit(ctx, "next")

			go func() {
				v, err := fut.AwaitContext(ctx)
				got <- inner{result: v, err: err}
			}()

			return nil
		},
	}))
	require.NoError(t, def.AddDecider("b", func(context.Context, Input[string, string]) (Decision[string], error) {
		return GotoWith("c", "from b"), nil
	}))
	require.NoError(t, def.AddState("c", StateSpec[string, string]{}))

	sm, err := def.Start(ctx, WithInitialState("a"))
	require.NoError(t, err)

	_, err = sm.Dispatch(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "c", sm.State())

	select {
	case res := <-got:
		require.NoError(t, res.err)
		assert.Equal(t, "from b", res.result)
	case <-ctx.Done():
		t.Fatal("nested future never resolved")
	}
}

func TestSend(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	t.Run("sync mode resolves before returning", func(t *testing.T) {
		t.Parallel()

		def := oddEven(t, "send-sync")
		assert.Equal(t, ReportSync, def.Reporting())

		sm, err := def.Start(ctx)
		require.NoError(t, err)

		reply := sm.Send(ctx, 3)
		assert.True(t, reply.Done())

		v, err := reply.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, -3, v)

		stuck, err := def.Start(ctx, WithInitialState("stuck"))
		require.NoError(t, err)

		reply = stuck.Send(ctx, 1)
		assert.True(t, reply.Done())

		_, err = reply.Await(ctx)
		require.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("deferred mode resolves on the delivery pool", func(t *testing.T) {
		t.Parallel()

		pool := pond.NewPool(1)
		t.Cleanup(pool.StopAndWait)

		def := oddEven(t, "send-deferred", WithReporting(ReportDeferred), WithDeliveryPool(pool))
		assert.Equal(t, ReportDeferred, def.Reporting())

		sm, err := def.Start(ctx)
		require.NoError(t, err)

		reply := sm.Send(ctx, 4)

		// Execution is synchronous; only delivery is deferred.
		assert.Equal(t, "even", sm.State())

		v, err := reply.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, -4, v)
		assert.NotNil(t, reply.Future())

		stuck, err := def.Start(ctx, WithInitialState("stuck"))
		require.NoError(t, err)

		_, err = stuck.Bind("owner").Send(ctx, 1).Await(ctx)
		require.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestSubmitResolvesEveryFuture(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	pool := pond.NewPool(1)
	t.Cleanup(pool.StopAndWait)

	sm, err := oddEven(t, "submit-many", WithDeliveryPool(pool)).Start(ctx)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		resolved int
	)

	futures := make([]*future.Future[any], 0, 20)

	for i := 1; i <= 20; i++ {
		fut := sm.Submit(ctx, i)
		futures = append(futures, fut)

		wg.Add(1)
		fut.OnSuccess(func(any) {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			resolved++
		})
	}

	// The machine starts odd, so odd events come back negated.
	for i, fut := range futures {
		n := i + 1

		want := n
		if n%2 == 1 {
			want = -n
		}

		v, err := fut.AwaitContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	wg.Wait()
	assert.Equal(t, 20, resolved)
}

func TestDeliveryFallsBackWhenPoolStopped(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	pool := pond.NewPool(1)
	pool.StopAndWait()

	sm, err := oddEven(t, "stopped-pool", WithDeliveryPool(pool)).Start(ctx)
	require.NoError(t, err)

	fut := sm.Submit(ctx, 9)
	assert.True(t, fut.IsDone(), "a refused delivery is completed inline")

	v, err := fut.Await()
	require.NoError(t, err)
	assert.Equal(t, -9, v)
}

func TestSubmitUsesSharedPoolByDefault(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	sm, err := oddEven(t, "shared-pool").Start(ctx)
	require.NoError(t, err)

	v, err := sm.Submit(ctx, 2).AwaitContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, -2, v)
}

// sendRelay builds start -> mid where entering mid sends the given events
// through Send, keeping their replies. "bad" from mid is an illegal transition.
func sendRelay(t *testing.T, name string, replies *[]Reply, opts []Option, onMid ...string) *Definition[string, string] {
	t.Helper()

	def := New[string, string](name, append(quiet(), opts...)...)
	require.NoError(t, def.AddDecider("start", func(_ context.Context, in Input[string, string]) (Decision[string], error) {
		if in.Event == "kick" {
			return GotoWith("mid", "kicked"), nil
		}

		return Stay[string](), nil
	}))
	require.NoError(t, def.AddState("mid", StateSpec[string, string]{
		Decide: func(_ context.Context, in Input[string, string]) (Decision[string], error) {
			switch in.Event {
			case "bad":
				return Goto("nowhere"), nil
			case "ok":
				return Goto("end"), nil
			default:
				return Stay[string](), nil
			}
		},
		Enter: func(ctx context.Context, _ Change[string, string]) error {
			self, _ := InstanceFrom[string, string](ctx)
			for _, ev := range onMid {
				*replies = append(*replies, self.Send(ctx, ev))
			}

			return nil
		},
	}))
	require.NoError(t, def.AddState("end", StateSpec[string, string]{}))

	return def
}

func TestReportingModesAgree(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	pool := pond.NewPool(1)
	t.Cleanup(pool.StopAndWait)

	tests := []struct {
		name    string
		onMid   []string
		wantErr error
		want    any
		state   string
	}{
		{name: "nested failure", onMid: []string{"bad"}, wantErr: ErrIllegalTransition, state: "mid"},
		{name: "nested success", onMid: []string{"ok"}, want: "kicked", state: "end"},
		{name: "no nested events", want: "kicked", state: "mid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, mode := range []ReportingMode{ReportSync, ReportDeferred} {
				var replies []Reply

				def := sendRelay(t, "modes-"+mode.String(), &replies,
					[]Option{WithReporting(mode), WithDeliveryPool(pool)}, tt.onMid...)

				sm, err := def.Start(ctx, WithInitialState("start"))
				require.NoError(t, err)

				v, err := sm.Send(ctx, "kick").Await(ctx)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr, mode.String())
					assert.Contains(t, err.Error(), "mid->nowhere", mode.String())
				} else {
					require.NoError(t, err, mode.String())
					assert.Equal(t, tt.want, v, mode.String())
				}

				assert.Equal(t, tt.state, sm.State(), mode.String())
				assert.Len(t, replies, len(tt.onMid), mode.String())
			}
		})
	}
}

func TestSubmitResolvesAfterNestedEvents(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	var replies []Reply

	def := sendRelay(t, "submit-after-nested", &replies, []Option{WithReporting(ReportDeferred)}, "ok")

	sm, err := def.Start(ctx, WithInitialState("start"))
	require.NoError(t, err)

	fut := sm.Submit(ctx, "kick")

	v, err := fut.AwaitContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kicked", v)

	require.Len(t, replies, 1)

	_, err = replies[0].Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "end", sm.State())
}

func TestDeferredFailureLeavesLaterEventsQueued(t *testing.T) {
	t.Parallel()

	ctx := awaitCtx(t)

	var replies []Reply

	def := sendRelay(t, "deferred-halt", &replies, []Option{WithReporting(ReportDeferred)}, "bad", "ok")

	sm, err := def.Start(ctx, WithInitialState("start"))
	require.NoError(t, err)

	_, err = sm.Send(ctx, "kick").Await(ctx)
	require.ErrorIs(t, err, ErrIllegalTransition)

	require.Len(t, replies, 2)

	_, err = replies[0].Await(ctx)
	require.ErrorIs(t, err, ErrIllegalTransition)

	// The failed event stopped the drain; "ok" waits for the next one.
	assert.False(t, replies[1].Done())
	assert.Equal(t, 1, sm.Pending())
	assert.Equal(t, "mid", sm.State())

	require.NoError(t, sm.Drain(ctx))

	_, err = replies[1].Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "end", sm.State())
	assert.Equal(t, 0, sm.Pending())
}
