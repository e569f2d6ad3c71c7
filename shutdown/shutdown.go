// Package shutdown ties process signals to context cancellation so fsmctl can
// flush pending deliveries before it exits.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/amp-fsm/logger"
)

// Handler runs registered hooks once, then cancels its context.
type Handler struct {
	mu     sync.Mutex
	hooks  []func()
	once   sync.Once
	cancel context.CancelFunc
	stop   func()
}

// BeforeShutdown registers a function to be called before the context is
// canceled. Hooks run in registration order.
func (h *Handler) BeforeShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks = append(h.hooks, fn)
}

// Shutdown runs the hooks and cancels the context. Later calls do nothing.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.mu.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.mu.Unlock()

		for _, fn := range hooks {
			fn()
		}

		h.stop()
		h.cancel()
	})
}

// SetupHandler returns a context that is canceled on SIGINT or SIGTERM, after
// the handler's hooks have run.
func SetupHandler(parent context.Context) (context.Context, *Handler) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	h := &Handler{
		cancel: cancel,
		stop: func() {
			signal.Stop(signals)
			close(done)
		},
	}

	go func() {
		select {
		case sig := <-signals:
			logger.Get(ctx).Warn("Received " + sig.String() + ", shutting down...")
			h.Shutdown()
		case <-done:
		}
	}()

	return ctx, h
}
