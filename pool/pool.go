// Package pool provides a pool of reusable backing buffers that are leased
// to callers as binary values.
//
// The pool coordinates buffer reuse with the advisory usage counter of
// [value.Value]. The values themselves never free anything; the pool is the
// external owner that decides when a backing buffer may be recycled.
package pool

import (
	"context"
	"sync"

	"github.com/dogmatiq/valuekit/internal/telemetry"
	"github.com/dogmatiq/valuekit/value"
	"go.opentelemetry.io/otel/log"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultBufferCapacity is the capacity of the buffers allocated by a [Pool]
// unless configured otherwise.
const DefaultBufferCapacity = 4096

// A Pool leases fixed-capacity backing buffers to callers and recycles them
// when all of a lease's holders have released it.
type Pool struct {
	capacity int
	buffers  sync.Pool

	borrows  telemetry.Instrument[int64]
	recycles telemetry.Instrument[int64]
	discards telemetry.Instrument[int64]
	inFlight telemetry.Instrument[int64]
}

// New returns a new buffer pool.
func New(options ...Option) *Pool {
	cfg := config{
		Capacity: DefaultBufferCapacity,
		Telemetry: telemetry.Provider{
			TracerProvider: tracenoop.NewTracerProvider(),
			MeterProvider:  metricnoop.NewMeterProvider(),
			LoggerProvider: lognoop.NewLoggerProvider(),
		},
	}

	for _, opt := range options {
		opt(&cfg)
	}

	p := &Pool{
		capacity: cfg.Capacity,
	}

	p.buffers.New = func() any {
		buf := make([]byte, cfg.Capacity)
		return &buf
	}

	telem := cfg.Telemetry.Recorder(
		"github.com/dogmatiq/valuekit/pool",
		telemetry.Int("pool.buffer_capacity", cfg.Capacity),
	)

	p.borrows = telem.Counter("borrows", "{lease}", "The number of leases that have been borrowed from the pool.")
	p.recycles = telem.Counter("recycles", "{buffer}", "The number of buffers that have been returned to the pool for reuse.")
	p.discards = telem.Counter("discards", "{buffer}", "The number of buffers that were too large to recycle and were discarded instead.")
	p.inFlight = telem.UpDownCounter("leases.in_flight", "{lease}", "The number of leases that are currently borrowed.")

	return p
}

// config is the configuration produced by applying a set of [Option] values.
type config struct {
	Capacity  int
	Telemetry telemetry.Provider
}

// Option is a functional option that changes the behavior of [New].
type Option func(*config)

// WithBufferCapacity is an [Option] that sets the capacity of the buffers
// allocated by the pool.
//
// Leases larger than the capacity are still served, but their buffers are
// discarded rather than recycled.
func WithBufferCapacity(n int) Option {
	if n <= 0 {
		panic("buffer capacity must be positive")
	}

	return func(cfg *config) {
		cfg.Capacity = n
	}
}

// WithTelemetry is an [Option] that configures the pool to record telemetry
// using the given providers.
func WithTelemetry(
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Option {
	return func(cfg *config) {
		cfg.Telemetry = telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		}
	}
}

// Borrow leases an n-byte buffer from the pool.
//
// The lease begins with a usage count of one; it is released by calling
// [Lease.Release].
func (p *Pool) Borrow(n int) *Lease {
	var buf *[]byte

	if n <= p.capacity {
		buf = p.buffers.Get().(*[]byte)
	} else {
		b := make([]byte, n)
		buf = &b
	}

	v, err := value.NewRange(*buf, 0, n)
	if err != nil {
		panic(err)
	}

	v.Retain()

	ctx := context.Background()
	p.borrows(ctx, 1)
	p.inFlight(ctx, 1)

	return &Lease{
		pool: p,
		buf:  buf,
		v:    v,
	}
}

// recycle returns a lease's buffer to the pool.
func (p *Pool) recycle(buf *[]byte) {
	ctx := context.Background()
	p.inFlight(ctx, -1)

	if len(*buf) == p.capacity {
		p.buffers.Put(buf)
		p.recycles(ctx, 1)
	} else {
		p.discards(ctx, 1)
	}
}
