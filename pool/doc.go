// Package pool provides a fixed-size worker pool that runs fire-and-forget
// jobs with bounded concurrency.
//
// A Pool owns N long-lived worker goroutines and one unbounded FIFO job
// queue. Submit pushes a job and returns at once; whichever worker is free
// first claims it and runs it to completion. Jobs are claimed in the order
// they were submitted, but may finish in any order.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	var n atomic.Int64
//	for range 100 {
//	    p.Submit(func() { n.Add(1) })
//	}
//
// MustNew is the panicking counterpart of New, for callers whose worker
// count is a known-good constant.
//
// # Teardown
//
// Close is the only stop signal. It closes the queue, lets the workers drain
// every job submitted before it, and joins them in creation order. A second
// Close is a no-op. Shutdown does the same but stops waiting when its
// context ends:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := p.Shutdown(ctx); err != nil {
//	    // workers are still draining; p.Done() closes when they finish
//	}
//
// Submitting after teardown has begun panics with ErrPoolClosed; TrySubmit
// returns the error instead. A pool that becomes unreachable without Close
// has its queue closed by a runtime cleanup so its workers still exit.
//
// # Faults
//
// Each job runs inside a recover boundary. A panicking job is logged with
// its stack, counted in Stats, handed to the WithPanicHandler callback, and
// the worker moves on to the next job. The pool never loses capacity to a
// failed job.
//
// # Configuration Options
//
//   - WithLogger(l): slog logger for lifecycle and fault records (default: slog.Default())
//   - WithName(s): label added to log records and metric attributes
//   - WithQueueCapacity(n): initial queue ring size (a hint, never a bound)
//   - WithPanicHandler(h): callback for recovered job panics
//   - WithBeforeJob(fn) / WithAfterJob(fn): per-job hooks on the worker goroutine
//   - WithRateLimit(r, b): cap how fast workers start jobs (submission stays non-blocking)
//   - WithCPUAffinity(): lock each worker to an OS thread pinned to one CPU
//   - WithMeterProvider(mp): OpenTelemetry metrics
//
// # Memory
//
// The queue has no bound and Submit never blocks, so a producer that
// submits faster than the workers drain grows memory without limit.
// Stats().Pending reports the backlog.
package pool
