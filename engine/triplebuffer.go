package engine

import "sync/atomic"

// TripleBuffer passes the latest value of T from one writer goroutine to one
// reader goroutine. Neither side ever blocks or waits for the other: the
// writer always has a private slot to fill, the reader always has a private
// slot to read, and the third slot is exchanged with a single atomic swap.
// Values published between two reads are skipped; a read never sees a
// partially written value.
type TripleBuffer[T any] struct {
	slots [3]T
	state atomic.Uint32 // index of the shared slot, plus dirtyBit if it holds an unread value
	write int           // owned by the writer
	read  int           // owned by the reader
}

const (
	dirtyBit  = 4
	indexMask = 3
)

// NewTripleBuffer returns a buffer where every slot holds initial.
func NewTripleBuffer[T any](initial T) *TripleBuffer[T] {
	b := &TripleBuffer[T]{write: 0, read: 2}
	for i := range b.slots {
		b.slots[i] = initial
	}
	b.state.Store(1)
	return b
}

// Slot returns the writer's private slot. The writer may fill it in place and
// then call Publish. Only the writer goroutine may call Slot, Publish and
// Write.
func (b *TripleBuffer[T]) Slot() *T { return &b.slots[b.write] }

// Publish makes the writer's slot the latest value and takes the previously
// shared slot as the new private slot.
func (b *TripleBuffer[T]) Publish() {
	old := b.state.Swap(uint32(b.write) | dirtyBit)
	b.write = int(old & indexMask)
}

// Write copies v into the writer's slot and publishes it.
func (b *TripleBuffer[T]) Write(v T) {
	b.slots[b.write] = v
	b.Publish()
}

// Read returns the latest published value. fresh is false when nothing new
// has been published since the previous Read. Only the reader goroutine may
// call Read and Peek.
func (b *TripleBuffer[T]) Read() (v T, fresh bool) {
	p, fresh := b.Peek()
	return *p, fresh
}

// Peek is like Read but returns a pointer to the reader's slot, which stays
// valid until the next Read or Peek.
func (b *TripleBuffer[T]) Peek() (v *T, fresh bool) {
	if b.state.Load()&dirtyBit != 0 {
		old := b.state.Swap(uint32(b.read))
		b.read = int(old & indexMask)
		fresh = true
	}
	return &b.slots[b.read], fresh
}
