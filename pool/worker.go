package pool

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/jobpool/internal/cpu"
	"github.com/utkarsh5026/jobpool/internal/queue"
)

// poolState is everything the workers share. It deliberately holds no
// reference back to the Pool so that an abandoned Pool can still be
// collected while its workers are running.
type poolState struct {
	conf    *config
	logger  *slog.Logger
	queue   *queue.Queue[Job]
	metrics *metrics

	submitted atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
	running   atomic.Int64
	throttled atomic.Int64
	live      atomic.Int64

	done chan struct{} // closed by the last worker to exit
}

// worker is one long-lived goroutine bound to the consuming end of the queue.
type worker struct {
	id   int
	done chan struct{} // join handle, closed when run returns
}

func startWorker(id int, s *poolState) *worker {
	w := &worker{
		id:   id,
		done: make(chan struct{}),
	}
	go w.run(s)
	return w
}

// run is the dispatch loop: claim the next job, run it, repeat until the
// queue reports it is closed and drained.
func (w *worker) run(s *poolState) {
	defer func() {
		if s.live.Add(-1) == 0 {
			close(s.done)
		}
		close(w.done)
	}()

	if s.conf.pinWorkers {
		if err := cpu.Bind(w.id); err != nil {
			s.logger.Debug("worker not pinned to cpu", "worker", w.id, "error", err)
		}
	}
	s.logger.Debug("worker started", "worker", w.id)

	for {
		job, ok := s.queue.Pop()
		if !ok {
			s.logger.Debug("worker disconnected; shutting down", "worker", w.id)
			return
		}
		s.metrics.jobClaimed()
		s.execute(w.id, job)
	}
}

// execute runs one claimed job with the configured throttle and hooks.
// A panic in the job or in a hook is contained here so the worker survives.
func (s *poolState) execute(workerID int, job Job) {
	if s.conf.rateLimiter != nil {
		s.throttled.Add(1)
		err := s.conf.rateLimiter.Wait(context.Background())
		s.throttled.Add(-1)
		if err != nil {
			s.logger.Warn("rate limiter wait failed; running job anyway", "worker", workerID, "error", err)
		}
	}

	s.logger.Debug("worker got a job; executing", "worker", workerID)

	if s.conf.beforeJob != nil {
		if perr := protect(workerID, func() { s.conf.beforeJob(workerID) }); perr != nil {
			s.logger.Error("before-job hook panicked", "worker", workerID, "panic", perr.Value)
		}
	}

	s.running.Add(1)
	start := time.Now()
	perr := protect(workerID, job)
	elapsed := time.Since(start)
	s.running.Add(-1)

	s.completed.Add(1)
	s.metrics.jobFinished(elapsed, perr != nil)

	var jobErr error
	if perr != nil {
		jobErr = perr
		s.panicked.Add(1)
		s.logger.Error("job panicked; worker recovered",
			"worker", workerID,
			"panic", perr.Value,
			"stack", string(perr.Stack),
		)
		if s.conf.onPanic != nil {
			if herr := protect(workerID, func() { s.conf.onPanic(perr) }); herr != nil {
				s.logger.Error("panic handler panicked", "worker", workerID, "panic", herr.Value)
			}
		}
	}

	if s.conf.afterJob != nil {
		if herr := protect(workerID, func() { s.conf.afterJob(workerID, jobErr) }); herr != nil {
			s.logger.Error("after-job hook panicked", "worker", workerID, "panic", herr.Value)
		}
	}
}

// protect calls fn and converts a panic into a *PanicError.
func protect(workerID int, fn func()) (perr *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &PanicError{
				WorkerID: workerID,
				Value:    r,
				Stack:    debug.Stack(),
			}
		}
	}()

	fn()
	return nil
}
