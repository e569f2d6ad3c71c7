package fsm

import (
	"github.com/alitto/pond/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ReportingMode selects how Send reports a dispatch outcome.
type ReportingMode int

const (
	// ReportSync returns results and errors at the call.
	ReportSync ReportingMode = iota
	// ReportDeferred resolves a future on the delivery pool instead.
	ReportDeferred
)

func (m ReportingMode) String() string {
	if m == ReportDeferred {
		return "deferred"
	}

	return "sync"
}

type options struct {
	reporting      ReportingMode
	logger         Logger
	metrics        bool
	tracing        bool
	tracerProvider trace.TracerProvider
	pool           pond.Pool
}

func defaultOptions() options {
	return options{
		reporting: ReportSync,
		logger:    NewDefaultLogger(),
		metrics:   true,
		tracing:   true,
	}
}

// Option configures a Definition.
type Option func(*options)

// WithReporting picks the convention used by Send.
func WithReporting(mode ReportingMode) Option {
	return func(o *options) {
		o.reporting = mode
	}
}

// WithLogger replaces the default logger. A nil logger disables logging.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = noopLogger{}
		} else {
			o.logger = l
		}
	}
}

// WithMetrics toggles the prometheus collectors.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metrics = enabled
	}
}

// WithTracing toggles span creation.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracing = enabled
	}
}

// WithTracerProvider sets the provider spans are created from. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithDeliveryPool sets the pool deferred outcomes are delivered on.
// Defaults to the shared bgworker pool.
func WithDeliveryPool(pool pond.Pool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

func (o *options) tracer() trace.Tracer { //nolint:ireturn
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return tp.Tracer(tracerName)
}
