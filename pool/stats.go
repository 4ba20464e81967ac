package pool

// Stats is a point-in-time snapshot of a pool's counters. Fields are read
// independently, so a snapshot taken while jobs are moving may be slightly
// inconsistent across fields.
type Stats struct {
	Workers   int    // fixed pool size
	Live      int    // workers whose dispatch loop has not exited
	Running   int    // jobs executing right now
	Throttled int    // jobs claimed by a worker and waiting on the rate limit
	Pending   int    // jobs queued but not yet claimed
	Submitted uint64 // jobs accepted by Submit/TrySubmit
	Completed uint64 // jobs that finished, including ones that panicked
	Panicked  uint64 // jobs that panicked and were recovered
}

// Stats returns a snapshot of the pool's counters.
//
// Pending is the place to watch for unbounded growth: submission never
// blocks, so a producer that outpaces the workers grows the queue without
// limit. A job leaves Pending when a worker claims it; under WithRateLimit it
// sits in Throttled until the limiter lets it start and only then counts as
// Running.
func (p *Pool) Stats() Stats {
	s := p.state
	return Stats{
		Workers:   len(p.workers),
		Live:      int(s.live.Load()),
		Running:   int(s.running.Load()),
		Throttled: int(s.throttled.Load()),
		Pending:   s.queue.Len(),
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Panicked:  s.panicked.Load(),
	}
}
