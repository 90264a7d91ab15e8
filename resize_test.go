package chainhash

import (
	"testing"

	"github.com/riftlabs/chainhash/internal/barrier"
)

// resizeOnce runs the table's collective Resize on a single simulated
// worker — the degenerate numWorkers=1 case of the driver's barrier
// protocol, sufficient for exercising the rehash itself.
func resizeOnce(tbl *Table) {
	bar := barrier.New(1)
	tbl.Resize(0, 1, bar)
}

func TestResizeTriggerAndRetrieval(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 2, true)

		// All even keys hash to the same bucket when numBuckets == 2,
		// since h(k) = (37k+13) mod 2 = (k+1) mod 2.
		keys := make([]uint64, 20)
		for i := range keys {
			keys[i] = uint64(2 * (i + 1))
			tbl.Insert(keys[i], keys[i]*10)
		}

		if !tbl.ResizeNeeded() {
			t.Fatalf("variant=%d: expected a resize trigger after a %d-deep chain", variant, len(keys))
		}

		for tbl.ResizeNeeded() {
			resizeOnce(tbl)
		}

		if got := tbl.NumBuckets(); got < 4 {
			t.Errorf("variant=%d NumBuckets() = %d, want >= 4", variant, got)
		}

		for _, k := range keys {
			if got := tbl.Lookup(k); got != k*10 {
				t.Errorf("variant=%d Lookup(%d) = %d, want %d", variant, k, got, k*10)
			}
		}
	}
}

func TestResizePreservesContents(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 8, false)

		const n = 500
		for k := uint64(0); k < n; k++ {
			tbl.Insert(k, k*k+1)
		}

		before := make([]uint64, n)
		for k := uint64(0); k < n; k++ {
			before[k] = tbl.Lookup(k)
		}

		resizeOnce(tbl)

		for k := uint64(0); k < n; k++ {
			got := tbl.Lookup(k)
			if got != before[k] {
				t.Errorf("variant=%d key %d: pre-resize %d, post-resize %d", variant, k, before[k], got)
			}
		}
		if got := tbl.NumBuckets(); got != 16 {
			t.Errorf("variant=%d NumBuckets() = %d, want 16", variant, got)
		}
		if got := tbl.NumItems(); got != n {
			t.Errorf("variant=%d NumItems() = %d, want %d", variant, got, n)
		}
	}
}

func TestResizeDoublesLockCount(t *testing.T) {
	tbl := New(Config{Variant: Striped, NumBuckets: 4, NumLocks: 2})
	resizeOnce(tbl)

	td := tbl.loadData()
	if td.numLocks != 4 {
		t.Errorf("numLocks = %d, want 4", td.numLocks)
	}
	if uint64(len(td.locks.locks)) != 4 {
		t.Errorf("len(locks) = %d, want 4", len(td.locks.locks))
	}
}

func TestPlacementInvariantAfterResize(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 8, false)
		for k := uint64(0); k < 300; k++ {
			tbl.Insert(k, k)
		}
		resizeOnce(tbl)

		td := tbl.loadData()
		for b := uint64(0); b < td.numBuckets; b++ {
			for n := td.buckets[b].head.Load(); n != nil; n = n.next.Load() {
				if got := bucketIndex(n.key, td.numBuckets); got != b {
					t.Errorf("variant=%d key %d stored in bucket %d, but h(key)=%d", variant, n.key, b, got)
				}
			}
		}
	}
}
