// Package barrier provides a reusable, fixed-party synchronization
// barrier. It is the driver loop's and the resize coordinator's only
// cross-goroutine rendezvous point: every worker that calls Wait blocks
// until the last of the barrier's parties also calls Wait, at which
// point all of them are released together and the barrier is ready to
// be reused for the next phase.
//
// The implementation is adapted from a Phaser/Epoch pair: phase and
// arrival counts packed into one atomic word, waiters parked on a
// semaphore and released in a single pass when a phase completes, which
// avoids the thundering-herd wakeup a sync.Cond broadcast would cause
// under high party counts.
package barrier

import (
	"sync"
	"sync/atomic"

	"github.com/riftlabs/chainhash/internal/opt"
)

// Barrier synchronizes a fixed number of parties across repeated phases.
// The zero value is not usable; construct with New.
type Barrier struct {
	parties int

	// state packs phase<<32 | arrived. parties is fixed at construction
	// and never stored in state.
	state atomic.Uint64

	mu   sync.Mutex
	head *waiter
	tail *waiter
}

type waiter struct {
	target uint32
	sema   opt.Sema
	next   *waiter
}

// New creates a Barrier for the given number of parties. parties must be
// at least 1.
func New(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{parties: parties}
}

// Parties reports the fixed number of parties registered with the barrier.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait signals that the calling goroutine has reached the barrier and
// blocks until every other party has also called Wait for the current
// phase. It returns the phase number that was just completed (0-based,
// incrementing by one every time all parties arrive).
func (b *Barrier) Wait() int {
	for {
		s := b.state.Load()
		phase := uint32(s >> 32)
		arrived := uint32(s)

		next := arrived + 1
		if int(next) == b.parties {
			if !b.state.CompareAndSwap(s, uint64(phase+1)<<32) {
				continue
			}
			b.release(phase + 1)
			return int(phase)
		}
		if b.state.CompareAndSwap(s, uint64(phase)<<32|uint64(next)) {
			b.waitAtLeast(phase + 1)
			return int(phase)
		}
	}
}

func (b *Barrier) release(newPhase uint32) {
	b.mu.Lock()
	var prev *waiter
	cur := b.head
	for cur != nil {
		if cur.target <= newPhase {
			cur.sema.Release()
			if prev == nil {
				b.head = cur.next
			} else {
				prev.next = cur.next
			}
			if cur == b.tail {
				b.tail = prev
			}
			cur = cur.next
			continue
		}
		prev = cur
		cur = cur.next
	}
	b.mu.Unlock()
}

func (b *Barrier) waitAtLeast(target uint32) {
	if uint32(b.state.Load()>>32) >= target {
		return
	}

	b.mu.Lock()
	if uint32(b.state.Load()>>32) >= target {
		b.mu.Unlock()
		return
	}
	w := &waiter{target: target}
	if b.tail == nil {
		b.head, b.tail = w, w
	} else {
		b.tail.next = w
		b.tail = w
	}
	b.mu.Unlock()

	w.sema.Acquire()
}
