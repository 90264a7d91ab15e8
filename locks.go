package chainhash

import (
	"sync/atomic"
	"time"
	_ "unsafe" // for go:linkname

	"github.com/riftlabs/chainhash/internal/opt"
)

// spinMutex is a fair, FIFO ticket spin-lock. It is the striped
// variant's per-stripe lock: bucket-chain critical sections are a short
// scan plus at most one allocation, exactly the workload a ticket lock
// is meant for, and FIFO ordering keeps tail latency bounded under
// contention instead of letting newcomers barge ahead of a goroutine
// that has been waiting.
type spinMutex struct {
	next    atomic.Uint32
	serving atomic.Uint32
	// pad rounds the lock up to a cache line so that two adjacent
	// stripes never share one, which would turn every Lock/Unlock pair
	// into a cross-core cache-coherence round trip for unrelated buckets.
	_ [(opt.CacheLineSize - 8%opt.CacheLineSize) % opt.CacheLineSize]byte
}

func (m *spinMutex) Lock() {
	my := m.next.Add(1) - 1
	var spins int
	for m.serving.Load() != my {
		delay(&spins)
	}
}

func (m *spinMutex) Unlock() {
	m.serving.Add(1)
}

// delay spins briefly using the runtime's own spin heuristic, then falls
// back to a short sleep. A pure busy-wait would burn a core indefinitely
// under heavy contention; a short sleep between spin bursts lets the
// scheduler make progress on whoever actually holds the lock.
func delay(spins *int) {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return
	}
	*spins = 0
	time.Sleep(100 * time.Microsecond)
}

//go:linkname runtime_canSpin sync.runtime_canSpin
func runtime_canSpin(i int) bool

//go:linkname runtime_doSpin sync.runtime_doSpin
func runtime_doSpin()

// lockArray is the striped variant's fixed-size array of stripe locks.
// Bucket b is governed by lock b % len(locks) — a smaller lock array
// covering a larger bucket array by modulo mapping, so that the number
// of concurrently-held locks is bounded independent of bucket count.
type lockArray struct {
	locks []spinMutex
}

func newLockArray(numLocks uint64) *lockArray {
	return &lockArray{locks: make([]spinMutex, numLocks)}
}

func (l *lockArray) lockFor(b uint64) *spinMutex {
	return &l.locks[b%uint64(len(l.locks))]
}
