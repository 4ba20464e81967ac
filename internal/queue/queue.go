package queue

import (
	"errors"
	"math/bits"
	"sync"
)

// ErrClosed is returned by Push once the queue has been closed.
var ErrClosed = errors.New("queue is closed")

const (
	defaultInitialCapacity = 64
	// maxInitialCapacity caps the up-front allocation; larger hints grow
	// the ring on demand instead.
	maxInitialCapacity = 1 << 16
)

// Queue is an unbounded FIFO queue safe for any number of producers and
// consumers.
//
// Items live in a power-of-two ring buffer that doubles when full, so head
// and tail wrap with a mask instead of a modulo. A single mutex guards the
// ring. Consumers park on a condition variable while the queue is empty and
// open.
//
// Closing is the only stop signal: after Close, Push fails while Pop keeps
// returning already queued items until the queue is empty, then reports
// closure to every consumer.
type Queue[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond

	ring []T
	mask int
	head int
	size int

	closed bool
}

// New creates an empty queue whose ring starts with room for at least
// capacity items. A non-positive capacity selects a small default and
// hints above 65536 are clamped; the ring still grows past either.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = defaultInitialCapacity
	}
	capacity = nextPowerOfTwo(min(capacity, maxInitialCapacity))

	q := &Queue[T]{
		ring: make([]T, capacity),
		mask: capacity - 1,
	}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail of the queue and wakes one waiting consumer.
// It never blocks for capacity.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}

	if q.size == len(q.ring) {
		q.grow()
	}
	q.ring[(q.head+q.size)&q.mask] = v
	q.size++
	q.mu.Unlock()

	q.nonEmpty.Signal()
	return nil
}

// Pop removes and returns the item at the head of the queue, blocking while
// the queue is empty and open. It returns false once the queue is closed and
// drained; every later call returns false immediately.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 {
		if q.closed {
			var zero T
			return zero, false
		}
		q.nonEmpty.Wait()
	}
	return q.take(), true
}

// TryPop is the non-blocking form of Pop. It returns false when no item is
// immediately available, whether or not the queue is closed.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.take(), true
}

// Close marks the queue closed and wakes every waiting consumer. It reports
// whether this call performed the close; later calls are no-ops.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.closed = true
	q.mu.Unlock()

	q.nonEmpty.Broadcast()
	return true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// take must be called with q.mu held and q.size > 0.
func (q *Queue[T]) take() T {
	var zero T
	v := q.ring[q.head]
	q.ring[q.head] = zero // release the reference for the GC
	q.head = (q.head + 1) & q.mask
	q.size--
	return v
}

// grow doubles the ring, unrolling the wrapped contents so head lands at 0.
// Must be called with q.mu held.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.ring)*2)
	n := copy(next, q.ring[q.head:])
	copy(next[n:], q.ring[:q.head])

	q.ring = next
	q.mask = len(next) - 1
	q.head = 0
}

// nextPowerOfTwo returns the smallest power of two greater than or equal to n,
// saturating at the largest power of two an int can hold.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if n > maxPowerOfTwo {
		return maxPowerOfTwo
	}
	return 1 << bits.Len(uint(n-1))
}

const maxPowerOfTwo = 1 << (bits.UintSize - 2)
