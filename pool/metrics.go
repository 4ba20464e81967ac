package pool

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/utkarsh5026/jobpool/pool"

// Metric names.
const (
	metricJobsSubmitted = "jobpool.jobs.submitted"
	metricJobsCompleted = "jobpool.jobs.completed"
	metricJobDuration   = "jobpool.job.duration"
	metricQueueDepth    = "jobpool.queue.depth"
)

// metrics holds the OpenTelemetry instruments of one pool.
type metrics struct {
	submitted  metric.Int64Counter
	completed  metric.Int64Counter
	duration   metric.Float64Histogram
	queueDepth metric.Int64UpDownCounter

	base    metric.MeasurementOption
	ok      metric.MeasurementOption
	panicky metric.MeasurementOption
}

func newMetrics(mp metric.MeterProvider, poolName string) (*metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	submitted, err := meter.Int64Counter(
		metricJobsSubmitted,
		metric.WithDescription("Jobs accepted by Submit"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	completed, err := meter.Int64Counter(
		metricJobsCompleted,
		metric.WithDescription("Jobs that finished running, by outcome"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		metricJobDuration,
		metric.WithDescription("Time spent running a job"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter(
		metricQueueDepth,
		metric.WithDescription("Jobs waiting to be claimed by a worker"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	name := attribute.String("pool", poolName)
	return &metrics{
		submitted:  submitted,
		completed:  completed,
		duration:   duration,
		queueDepth: queueDepth,
		base:       metric.WithAttributes(name),
		ok:         metric.WithAttributes(name, attribute.String("outcome", "ok")),
		panicky:    metric.WithAttributes(name, attribute.String("outcome", "panic")),
	}, nil
}

func (m *metrics) jobSubmitted() {
	ctx := context.Background()
	m.submitted.Add(ctx, 1, m.base)
	m.queueDepth.Add(ctx, 1, m.base)
}

func (m *metrics) jobClaimed() {
	m.queueDepth.Add(context.Background(), -1, m.base)
}

func (m *metrics) jobFinished(elapsed time.Duration, panicked bool) {
	ctx := context.Background()
	outcome := m.ok
	if panicked {
		outcome = m.panicky
	}
	m.completed.Add(ctx, 1, outcome)
	m.duration.Record(ctx, elapsed.Seconds(), outcome)
}
