package pool

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/utkarsh5026/jobpool/internal/queue"
)

// Pool is a fixed-size set of workers that run submitted jobs from one
// shared FIFO queue.
//
// A Pool is created with New or MustNew, accepts jobs through Submit until
// it is closed, and is torn down with Close (or Shutdown). Teardown closes
// the queue, lets the workers drain every job already submitted, and joins
// them in the order they were created.
type Pool struct {
	state   *poolState
	workers []*worker

	closeMu sync.Mutex // serializes teardown
	joined  int        // workers[:joined] have been joined

	cleanup runtime.Cleanup
}

var _ io.Closer = (*Pool)(nil)

// New creates a pool with n workers and starts them right away. Each
// worker gets an id in [0, n) and blocks on the empty queue until a job
// arrives.
//
// n must be at least one; otherwise New returns a *CreationError matching
// ErrLessThanOne and starts nothing.
//
// Example:
//
//	p, err := pool.New(4, pool.WithName("thumbnails"))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	p.Submit(func() { resize(img) })
func New(n int, opts ...Option) (*Pool, error) {
	if n < 1 {
		return nil, &CreationError{Kind: LessThanOne, Count: n}
	}

	cfg := newConfig(opts...)

	logger := cfg.logger
	if cfg.name != "" {
		logger = logger.With("pool", cfg.name)
	}

	m, err := newMetrics(cfg.meterProvider, cfg.name)
	if err != nil {
		return nil, err
	}

	state := &poolState{
		conf:    cfg,
		logger:  logger,
		queue:   queue.New[Job](cfg.queueCapacity),
		metrics: m,
		done:    make(chan struct{}),
	}
	state.live.Store(int64(n))

	p := &Pool{
		state:   state,
		workers: make([]*worker, 0, n),
	}
	for id := range n {
		p.workers = append(p.workers, startWorker(id, state))
	}

	// A pool dropped without Close still releases its workers: closing the
	// queue lets them drain and exit on their own.
	p.cleanup = runtime.AddCleanup(p, func(q *queue.Queue[Job]) {
		q.Close()
	}, state.queue)

	logger.Debug("pool started", "workers", n)
	return p, nil
}

// MustNew is like New but panics if the pool cannot be created. It suits
// callers whose thread count is a trusted constant.
func MustNew(n int, opts ...Option) *Pool {
	p, err := New(n, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Submit queues job for execution by the next free worker and returns
// immediately. It never waits for capacity.
//
// Submitting after teardown has begun, or submitting a nil job, is a
// programming error and panics with ErrPoolClosed or ErrNilJob. Use
// TrySubmit when submission may race with Close.
func (p *Pool) Submit(job Job) {
	if err := p.TrySubmit(job); err != nil {
		panic(err)
	}
}

// TrySubmit is like Submit but reports ErrPoolClosed or ErrNilJob instead
// of panicking.
func (p *Pool) TrySubmit(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	s := p.state
	s.submitted.Add(1)
	if err := s.queue.Push(job); err != nil {
		s.submitted.Add(^uint64(0))
		return ErrPoolClosed
	}
	s.metrics.jobSubmitted()
	return nil
}

// Close tears the pool down: it closes the queue, then waits for every
// worker to finish the jobs already submitted and exit. Calling Close again,
// or concurrently, is safe; later calls return once teardown is complete.
//
// Close must not be called from inside a job, since the worker would wait
// for itself.
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Shutdown is like Close but gives up waiting when ctx is done and returns
// ctx.Err(). The queue stays closed and the workers keep draining in the
// background; a later Close or Shutdown finishes joining them.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := p.Shutdown(ctx); err != nil {
//	    log.Printf("workers still draining: %v", err)
//	}
func (p *Pool) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	p.closeMu.Lock()
	defer p.closeMu.Unlock()

	s := p.state
	if s.queue.Close() {
		p.cleanup.Stop()
		s.logger.Debug("job queue closed", "pending", s.queue.Len())
	}

	for p.joined < len(p.workers) {
		w := p.workers[p.joined]
		s.logger.Debug("shutting down worker", "worker", w.id)

		// An exited worker counts as joined even when ctx is already done.
		select {
		case <-w.done:
			p.joined++
			continue
		default:
		}

		select {
		case <-w.done:
			p.joined++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Done returns a channel that is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} {
	return p.state.done
}

// Size returns the number of workers, fixed at construction.
func (p *Pool) Size() int {
	return len(p.workers)
}
