package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/utkarsh5026/jobpool/pool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// lumberjack starts its mill goroutine once per Logger and never stops it.
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func testConfig() runConfig {
	cfg := defaultRunConfig()
	cfg.Workers = 3
	cfg.Jobs = 60
	cfg.Submitters = 4
	cfg.MinWork = 0
	cfg.MaxWork = time.Millisecond
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWorkload(t *testing.T) {
	cfg := testConfig()
	cfg.PanicEvery = 10

	rep, err := runWorkload(context.Background(), cfg, discard(), nil)
	require.NoError(t, err)

	assert.False(t, rep.Aborted)
	assert.Equal(t, uint64(60), rep.Stats.Submitted)
	assert.Equal(t, uint64(60), rep.Stats.Completed)
	assert.Equal(t, uint64(6), rep.Stats.Panicked)
	assert.Equal(t, 0, rep.Stats.Live)

	require.Len(t, rep.PerWorker, 3)
	var total int64
	for _, n := range rep.PerWorker {
		total += n
	}
	assert.Equal(t, int64(60), total)
	assert.Greater(t, rep.Throughput(), 0.0)
}

func TestRunWorkload_InvalidWorkers(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0

	_, err := runWorkload(context.Background(), cfg, discard(), nil)
	assert.ErrorIs(t, err, pool.ErrLessThanOne)
}

func TestRunWorkload_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := runWorkload(ctx, testConfig(), discard(), nil)
	require.NoError(t, err)

	assert.True(t, rep.Aborted)
	assert.Equal(t, rep.Stats.Submitted, rep.Stats.Completed, "whatever was submitted must still run")
}

func TestSimulatedWork(t *testing.T) {
	cfg := testConfig()
	cfg.MinWork = 2 * time.Millisecond
	cfg.MaxWork = 5 * time.Millisecond
	for range 100 {
		d := simulatedWork(cfg)
		assert.GreaterOrEqual(t, d, cfg.MinWork)
		assert.LessOrEqual(t, d, cfg.MaxWork)
	}

	cfg.MaxWork = cfg.MinWork
	assert.Equal(t, cfg.MinWork, simulatedWork(cfg))
}

func TestPrintReport(t *testing.T) {
	rep, err := runWorkload(context.Background(), testConfig(), discard(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	printConfiguration(&buf, rep.Config)
	printReport(&buf, rep)

	out := buf.String()
	assert.Contains(t, out, "Configuration:")
	assert.Contains(t, out, "Jobs per worker:")
	assert.Contains(t, out, "All jobs completed.")
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatNumber(in))
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		_, _, err := newLogger("loud", "")
		assert.Error(t, err)
	})

	t.Run("rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jobpool.log")
		logger, closer, err := newLogger("debug", path)
		require.NoError(t, err)

		logger.Debug("hello from the pool")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from the pool")
	})
}
