package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)
	return mp, reader
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %q not recorded", name)
	return metricdata.Metrics{}
}

func sumByOutcome(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %q is %T, want Sum[int64]", m.Name, m.Data)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		out[outcome.AsString()] += dp.Value
	}
	return out
}

func TestMetrics(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	p := MustNew(2,
		WithMeterProvider(mp),
		WithName("metrics"),
		WithLogger(quietLogger()),
	)
	for i := range 10 {
		if i%5 == 0 {
			p.Submit(func() { panic("metered") })
			continue
		}
		p.Submit(func() {})
	}
	require.NoError(t, p.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	submitted := sumByOutcome(t, findMetric(t, rm, metricJobsSubmitted))
	assert.Equal(t, int64(10), submitted[""])

	completed := sumByOutcome(t, findMetric(t, rm, metricJobsCompleted))
	assert.Equal(t, int64(8), completed["ok"])
	assert.Equal(t, int64(2), completed["panic"])

	depth := sumByOutcome(t, findMetric(t, rm, metricQueueDepth))
	assert.Equal(t, int64(0), depth[""], "queue depth should return to zero after drain")

	hist, ok := findMetric(t, rm, metricJobDuration).Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		name, _ := dp.Attributes.Value(attribute.Key("pool"))
		assert.Equal(t, "metrics", name.AsString())
		count += dp.Count
	}
	assert.Equal(t, uint64(10), count)
}

func TestMetrics_DefaultNoop(t *testing.T) {
	m, err := newMetrics(nil, "")
	require.NoError(t, err)

	// Recording against the no-op provider must be safe.
	m.jobSubmitted()
	m.jobClaimed()
	m.jobFinished(0, false)
}
