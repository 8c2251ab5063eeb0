package engine

import (
	"sync/atomic"

	"github.com/sixop/sixop"
)

// Broker connects the control side and the render side. The render side
// never blocks on it: commands travel through a bounded queue, global
// parameters and status through triple buffers, and a panic through an
// atomic flag so that it gets through even when the queue is full.
type Broker struct {
	Commands *Queue[Command]
	Globals  *TripleBuffer[sixop.Globals]
	Status   *TripleBuffer[sixop.Status]

	panic   atomic.Bool
	dropped atomic.Uint64
}

func NewBroker() *Broker {
	return &Broker{
		Commands: NewQueue[Command](CommandQueueCapacity),
		Globals:  NewTripleBuffer(sixop.DefaultGlobals()),
		Status:   NewTripleBuffer(sixop.Status{}),
	}
}

// TrySend queues a command for the render side. It returns false and counts
// the command as dropped if the queue is full.
func (b *Broker) TrySend(c Command) bool {
	if b.Commands.Send(c) {
		return true
	}
	b.dropped.Add(1)
	return false
}

// Dropped returns how many commands were discarded because the queue was
// full.
func (b *Broker) Dropped() uint64 { return b.dropped.Load() }

// RequestPanic asks the render side to stop every voice at the start of the
// next buffer.
func (b *Broker) RequestPanic() { b.panic.Store(true) }

// TakePanic reports and clears a pending panic request.
func (b *Broker) TakePanic() bool { return b.panic.Swap(false) }
