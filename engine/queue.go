package engine

import "sync/atomic"

// Queue is a bounded single-producer, single-consumer FIFO. Send and Receive
// never block and never allocate: Send reports false when the queue is full,
// Receive reports false when it is empty. At most one goroutine may send and
// at most one may receive at a time.
type Queue[T any] struct {
	head  atomic.Uint64 // next slot to read, owned by the consumer
	_     [56]byte      // keep head and tail on separate cache lines
	tail  atomic.Uint64 // next slot to write, owned by the producer
	_     [56]byte
	slots []T
}

// CommandQueueCapacity is the number of commands that can wait for the next
// render buffer.
const CommandQueueCapacity = 1024

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{slots: make([]T, max(capacity, 1))}
}

// Send appends v to the queue. It returns false, leaving the queue
// unchanged, if the queue is full.
func (q *Queue[T]) Send(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.slots)) {
		return false
	}
	q.slots[tail%uint64(len(q.slots))] = v
	q.tail.Store(tail + 1)
	return true
}

// Receive removes the oldest value from the queue.
func (q *Queue[T]) Receive() (v T, ok bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return v, false
	}
	i := head % uint64(len(q.slots))
	v = q.slots[i]
	var zero T
	q.slots[i] = zero
	q.head.Store(head + 1)
	return v, true
}

// Len returns the number of queued values. It is exact only when called from
// the producer or the consumer while the other side is idle.
func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

func (q *Queue[T]) Cap() int { return len(q.slots) }
