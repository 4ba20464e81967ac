package pool

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pool.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	name          string
	queueCapacity int
	onPanic       PanicHandler
	beforeJob     func(workerID int)
	afterJob      func(workerID int, err error)
	rateLimiter   *rate.Limiter
	pinWorkers    bool
	meterProvider metric.MeterProvider
}

func defaultConfig() *config {
	return &config{
		logger: slog.Default(),
	}
}

func newConfig(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogger sets the logger used for lifecycle and fault messages.
// Defaults to slog.Default(). A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithName labels the pool in log records and metric attributes, which helps
// tell several pools apart in one process.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithQueueCapacity sets the initial size of the job queue's ring buffer.
// It is a sizing hint, not a bound: the queue still grows without limit.
func WithQueueCapacity(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.queueCapacity = size
		}
	}
}

// WithPanicHandler registers a callback invoked after a job panics.
// The fault has already been recovered and logged when it runs.
func WithPanicHandler(h PanicHandler) Option {
	return func(cfg *config) {
		cfg.onPanic = h
	}
}

// WithBeforeJob registers a hook called on the worker goroutine right
// before each job runs.
func WithBeforeJob(fn func(workerID int)) Option {
	return func(cfg *config) {
		cfg.beforeJob = fn
	}
}

// WithAfterJob registers a hook called on the worker goroutine after each
// job returns. err is a *PanicError when the job panicked, nil otherwise.
func WithAfterJob(fn func(workerID int, err error)) Option {
	return func(cfg *config) {
		cfg.afterJob = fn
	}
}

// WithRateLimit throttles how fast workers start claimed jobs.
// jobsPerSecond is the sustained rate and burst the bucket size. Submission
// is never throttled; jobs wait in the queue instead.
//
// Example:
//
//	WithRateLimit(10, 5) // start at most 10 jobs/sec, bursts of 5
func WithRateLimit(jobsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if jobsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(jobsPerSecond), burst)
		}
	}
}

// WithCPUAffinity dedicates one OS thread to each worker and, on linux and
// windows, pins worker i to the i-th allowed CPU (wrapping around the set).
func WithCPUAffinity() Option {
	return func(cfg *config) {
		cfg.pinWorkers = true
	}
}

// WithMeterProvider records pool metrics through the given OpenTelemetry
// meter provider. Without it metrics go to a no-op provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = mp
	}
}
