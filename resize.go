package chainhash

import "github.com/riftlabs/chainhash/internal/barrier"

// Resize performs spec §4.4's collective, barrier-coordinated rehash.
// It must be entered by every one of numWorkers goroutines that share
// this table, simultaneously, with no Lookup/Insert in flight — the
// driver loop (internal/driver) guarantees that by draining all
// outstanding tasks before any worker calls Resize. workerID must be a
// distinct value in [0, numWorkers) across the calling goroutines; bar
// must have exactly numWorkers parties and must be the same *Barrier
// instance passed to every caller.
//
// Worker 0 is the designated allocator/finalizer; every worker
// (including 0) participates in the partitioned rehash.
func (t *Table) Resize(workerID, numWorkers int, bar *barrier.Barrier) {
	old := t.loadData()

	bar.Wait() // barrier: no insert/lookup may be in flight past this point

	if workerID == 0 {
		t.pendingResize.Store(t.allocateResized(old))
	}

	bar.Wait() // barrier: pendingResize is now visible to every worker

	newData := t.pendingResize.Load()
	start, end := partitionRange(old.numBuckets, workerID, numWorkers)
	t.rehashRange(old, newData, start, end)

	bar.Wait() // barrier: every worker has finished rehashing its range

	if workerID == 0 {
		t.data.Store(newData)
		t.resizeNeeded.Store(false)
		t.pendingResize.Store(nil)
	}

	bar.Wait() // barrier: the swapped-in table is visible to every worker
}

// allocateResized builds T_new with double the bucket count (and,
// striped variant, double the lock count), per spec §4.4 step 2.
// T_new.num_items is not copied here because numItems lives on Table
// itself and is never reset across a resize.
func (t *Table) allocateResized(old *tableData) *tableData {
	nd := &tableData{
		buckets:    make([]bucket, old.numBuckets*2),
		numBuckets: old.numBuckets * 2,
	}
	if t.variant == Striped {
		nd.numLocks = old.numLocks * 2
		nd.locks = newLockArray(nd.numLocks)
	}
	return nd
}

// rehashRange walks old buckets [start, end) and bulk-inserts every
// node's payload into newData, per spec §4.4 step 4. The range is this
// worker's static partition of the old bucket array.
func (t *Table) rehashRange(old, newData *tableData, start, end uint64) {
	for b := start; b < end; b++ {
		for n := old.buckets[b].head.Load(); n != nil; n = n.next.Load() {
			key, value := n.key, n.Value()
			if t.variant == LockFree {
				resizeInsertLockFree(newData, key, value)
			} else {
				resizeInsertStriped(newData, key, value)
			}
		}
	}
}

// partitionRange splits [0, total) into numWorkers contiguous,
// near-equal chunks and returns the chunk assigned to workerID — the
// static work-sharing referenced in spec §4.4.
func partitionRange(total uint64, workerID, numWorkers int) (start, end uint64) {
	n := uint64(numWorkers)
	base := total / n
	rem := total % n
	id := uint64(workerID)

	extra := id
	if extra > rem {
		extra = rem
	}
	start = id*base + extra

	end = start + base
	if id < rem {
		end++
	}
	return start, end
}
