package fsm

import "context"

type instanceContextKey struct{}

// withInstance exposes the running instance to the callbacks it invokes.
func withInstance[S comparable, E any](ctx context.Context, i *Instance[S, E]) context.Context {
	return context.WithValue(ctx, instanceContextKey{}, i)
}

// InstanceFrom returns the instance whose callback received ctx. It lets hooks
// dispatch on their own machine, including during the initial entry run by
// Start, before the caller holds the instance.
func InstanceFrom[S comparable, E any](ctx context.Context) (*Instance[S, E], bool) {
	i, ok := ctx.Value(instanceContextKey{}).(*Instance[S, E])

	return i, ok && i != nil
}
