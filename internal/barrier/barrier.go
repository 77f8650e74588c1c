// Package barrier provides a reusable rendezvous point for a fixed number of
// goroutines.
//
// A Barrier is generation counted: every release advances the generation, and
// a waiter only leaves once the generation it arrived in has been released.
// A participant that is released and immediately calls Wait again is counted
// toward the next cycle and cannot disturb participants still leaving the
// previous one.
package barrier

import (
	"fmt"
	"sync"
)

// Observer receives arrival and departure notifications for every Wait call.
// Callbacks run on the waiting goroutine, outside the barrier's lock.
type Observer interface {
	// Arrive is called before the participant blocks.
	Arrive(participant int, generation uint64)

	// Depart is called after the participant has been released.
	Depart(participant int, generation uint64)
}

// Barrier blocks callers of Wait until exactly parties of them have arrived.
type Barrier struct {
	parties int

	mu         sync.Mutex
	cond       *sync.Cond
	arrived    int
	generation uint64

	observer Observer
}

// Option configures a Barrier.
type Option func(*Barrier)

// WithObserver attaches an Observer to the barrier.
func WithObserver(o Observer) Option {
	return func(b *Barrier) {
		b.observer = o
	}
}

// New creates a barrier for the given number of parties.
// parties must be > 0.
func New(parties int, opts ...Option) (*Barrier, error) {
	if parties <= 0 {
		return nil, fmt.Errorf("barrier parties must be positive, got %d", parties)
	}

	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Wait blocks until all parties have called Wait in the current cycle and
// returns the generation that was released.
func (b *Barrier) Wait() uint64 {
	return b.WaitAs(-1)
}

// WaitAs is Wait with the caller's participant index reported to the Observer.
func (b *Barrier) WaitAs(participant int) uint64 {
	// The generation cannot advance before this participant arrives.
	gen := b.Generation()

	if b.observer != nil {
		b.observer.Arrive(participant, gen)
	}

	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
	} else {
		for gen == b.generation {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()

	if b.observer != nil {
		b.observer.Depart(participant, gen)
	}

	return gen
}

// Parties returns the number of participants the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Generation returns the number of completed cycles.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Serial is a rendezvous with an elected leader: all parties wait, the
// participant whose index equals leader runs fn while the others are parked
// at the second rendezvous, then everyone is released together. Writes made
// by fn are visible to every participant once Serial returns.
//
// Serial advances the generation by two.
func (b *Barrier) Serial(participant, leader int, fn func()) {
	b.WaitAs(participant)
	if participant == leader && fn != nil {
		fn()
	}
	b.WaitAs(participant)
}
