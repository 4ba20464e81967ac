package pool

import (
	"sync"
	"sync/atomic"
)

// countingJob hands out jobs that bump a shared counter.
type countingJob struct {
	n atomic.Int64
}

func (c *countingJob) job() Job {
	return func() { c.n.Add(1) }
}

// gate is a job that blocks its worker until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gate) job() Job {
	return func() {
		g.entered <- struct{}{}
		<-g.release
	}
}

func (g *gate) open() {
	g.once.Do(func() { close(g.release) })
}
