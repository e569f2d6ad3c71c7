// Package bgworker owns the background pool used to deliver deferred dispatch outcomes.
package bgworker

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/caarlos0/env/v11"
)

const defaultWorkerCount = 1

// Config is read from the environment.
// One worker keeps deliveries in submission order; more workers trade that for throughput.
type Config struct {
	Workers int `env:"FSM_DELIVERY_WORKERS" envDefault:"1"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse delivery pool config: %w", err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkerCount
	}

	return cfg, nil
}

// NewPool creates a pool sized from cfg.
func NewPool(cfg Config) pond.Pool { //nolint:ireturn
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkerCount
	}

	return pond.NewPool(cfg.Workers)
}

// workerPool is created on first use.
var workerPool = sync.OnceValue(func() pond.Pool { //nolint:gochecknoglobals
	cfg, err := LoadConfig()
	if err != nil {
		logger.Get().Warn("falling back to default delivery pool size", "error", err)

		cfg = Config{Workers: defaultWorkerCount}
	}

	logger.Get().Debug("Initializing delivery pool", "workers", cfg.Workers)

	return NewPool(cfg)
})

// Pool returns the shared delivery pool.
func Pool() pond.Pool { //nolint:ireturn
	return workerPool()
}

// Submit submits a function to the shared pool.
// It returns a Task that can be used to wait for the function to complete.
func Submit(ctx context.Context, f func()) pond.Task { //nolint:ireturn
	logger.Get(ctx).Debug("Submitting delivery task", "waiting", workerPool().WaitingTasks())

	return workerPool().Submit(f)
}

// Go submits a function to the shared pool and returns immediately.
// It returns an error if the pool is stopped.
func Go(ctx context.Context, f func()) error {
	if err := workerPool().Go(f); err != nil {
		return logger.AnnotateError(fmt.Errorf("delivery pool rejected task: %w", err),
			"subsystem", logger.GetSubsystem(ctx))
	}

	return nil
}
