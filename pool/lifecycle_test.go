package pool

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Close(t *testing.T) {
	t.Run("waits for in-flight and queued jobs", func(t *testing.T) {
		p := MustNew(3)

		var counter countingJob
		for range 30 {
			p.Submit(func() {
				time.Sleep(5 * time.Millisecond)
				counter.n.Add(1)
			})
		}

		require.NoError(t, p.Close())
		assert.Equal(t, int64(30), counter.n.Load())
		assert.Equal(t, 3, p.joined)
		assert.Equal(t, 0, p.Stats().Live)
	})

	t.Run("close on idle pool", func(t *testing.T) {
		p := MustNew(4)
		require.NoError(t, p.Close())
		assert.Equal(t, 0, p.Stats().Live)
	})

	t.Run("second close is a no-op", func(t *testing.T) {
		p := MustNew(2)
		require.NoError(t, p.Close())

		done := make(chan error, 1)
		go func() { done <- p.Close() }()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("second Close hung")
		}
		assert.Equal(t, 2, p.joined, "workers must not be joined twice")
	})

	t.Run("concurrent close", func(t *testing.T) {
		p := MustNew(4)
		g := newGate()
		p.Submit(g.job())
		<-g.entered

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = p.Close()
			}()
		}

		// Every closer is stuck behind the gated job.
		time.Sleep(20 * time.Millisecond)
		select {
		case <-p.Done():
			t.Fatal("pool finished while a job was still running")
		default:
		}

		g.open()
		wg.Wait()
		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, 0, p.Stats().Live)
	})
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := MustNew(2)
	require.NoError(t, p.Close())

	assert.PanicsWithError(t, ErrPoolClosed.Error(), func() {
		p.Submit(func() {})
	})
	assert.ErrorIs(t, p.TrySubmit(func() {}), ErrPoolClosed)
	assert.Equal(t, uint64(0), p.Stats().Submitted)
}

func TestPool_Shutdown(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		p := MustNew(1)
		defer p.Close()

		//nolint:staticcheck // exercising the nil guard
		assert.ErrorIs(t, p.Shutdown(nil), ErrNilContext)
	})

	t.Run("returns when workers finish", func(t *testing.T) {
		p := MustNew(2)
		var counter countingJob
		for range 10 {
			p.Submit(counter.job())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, p.Shutdown(ctx))
		assert.Equal(t, int64(10), counter.n.Load())
	})

	t.Run("deadline leaves workers draining", func(t *testing.T) {
		p := MustNew(2)
		g := newGate()
		p.Submit(g.job())
		<-g.entered

		var counter countingJob
		for range 5 {
			p.Submit(counter.job())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := p.Shutdown(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		// The queue is already closed even though teardown timed out.
		assert.ErrorIs(t, p.TrySubmit(func() {}), ErrPoolClosed)

		g.open()
		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("workers did not drain after the gate opened")
		}

		require.NoError(t, p.Close())
		assert.Equal(t, int64(5), counter.n.Load())
		assert.Equal(t, 2, p.joined)
	})

	t.Run("cancelled context still joins exited workers", func(t *testing.T) {
		p := MustNew(8)
		p.state.queue.Close()
		<-p.Done()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, p.Shutdown(ctx))
		assert.Equal(t, 8, p.joined)
	})
}

func TestPool_Done(t *testing.T) {
	p := MustNew(3)

	select {
	case <-p.Done():
		t.Fatal("Done closed before teardown")
	default:
	}

	require.NoError(t, p.Close())

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}

// abandonedPool builds a pool, runs a job on it and drops it without Close.
// Only the Done channel escapes, so nothing keeps the Pool itself alive.
func abandonedPool(t *testing.T) <-chan struct{} {
	t.Helper()

	p := MustNew(2)
	ran := make(chan struct{})
	p.Submit(func() { close(ran) })
	<-ran
	return p.Done()
}

func TestPool_AbandonedPoolReleasesWorkers(t *testing.T) {
	done := abandonedPool(t)

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("workers of an unreachable pool never exited")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
