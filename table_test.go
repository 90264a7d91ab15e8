package chainhash

import "testing"

func newTestTable(t *testing.T, variant Variant, numBuckets uint64, resizeEnabled bool) *Table {
	t.Helper()
	return New(Config{
		Variant:        variant,
		NumBuckets:     numBuckets,
		ResizeEnabled:  resizeEnabled,
		MetricsEnabled: true,
	})
}

func TestSingleThreadInsertLookup(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 4, false)

		tbl.Insert(1, 100)
		tbl.Insert(5, 500)
		tbl.Insert(9, 900)

		cases := []struct {
			key  uint64
			want uint64
		}{
			{1, 100},
			{5, 500},
			{9, 900},
			{2, InvalidValue},
		}
		for _, c := range cases {
			if got := tbl.Lookup(c.key); got != c.want {
				t.Errorf("variant=%d Lookup(%d) = %d, want %d", variant, c.key, got, c.want)
			}
		}
	}
}

func TestOverwrite(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 16, false)

		tbl.Insert(7, 1)
		tbl.Insert(7, 2)

		if got := tbl.Lookup(7); got != 2 {
			t.Errorf("variant=%d Lookup(7) = %d, want 2", variant, got)
		}
		if got := tbl.NumItems(); got != 1 {
			t.Errorf("variant=%d NumItems() = %d, want 1", variant, got)
		}
	}
}

func TestIdempotentInsert(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 16, false)

		tbl.Insert(42, 99)
		tbl.Insert(42, 99)

		if got := tbl.Lookup(42); got != 99 {
			t.Errorf("variant=%d Lookup(42) = %d, want 99", variant, got)
		}
		if got := tbl.NumItems(); got != 1 {
			t.Errorf("variant=%d NumItems() = %d, want 1", variant, got)
		}
	}
}

func TestSentinelRejection(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 16, false)

		tbl.Insert(InvalidKey, 5)
		tbl.Insert(3, InvalidValue)

		if got := tbl.Lookup(3); got != InvalidValue {
			t.Errorf("variant=%d Lookup(3) = %d, want InvalidValue", variant, got)
		}
		if got := tbl.Lookup(InvalidKey); got != InvalidValue {
			t.Errorf("variant=%d Lookup(InvalidKey) = %d, want InvalidValue", variant, got)
		}
		if got := tbl.NumItems(); got != 0 {
			t.Errorf("variant=%d NumItems() = %d, want 0", variant, got)
		}
	}
}

func TestPlacementInvariant(t *testing.T) {
	for _, variant := range []Variant{Striped, LockFree} {
		tbl := newTestTable(t, variant, 8, false)
		for k := uint64(0); k < 200; k++ {
			tbl.Insert(k, k*10)
		}

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

func TestMetricsSnapshot(t *testing.T) {
	tbl := newTestTable(t, Striped, 8, false)

	tbl.Insert(1, 10)
	tbl.Insert(2, 20)
	tbl.Insert(1, 11) // update, not a new key, but still a counted insert operation

	tbl.Lookup(1)
	tbl.Lookup(99)

	snap := tbl.Snapshot()
	if snap.TotalInserts != 3 {
		t.Errorf("TotalInserts = %d, want 3", snap.TotalInserts)
	}
	if got := tbl.NumItems(); got != 2 {
		t.Errorf("NumItems() = %d, want 2 (distinct keys, not insert operations)", got)
	}
	if snap.TotalLookups != 2 {
		t.Errorf("TotalLookups = %d, want 2", snap.TotalLookups)
	}
	if snap.SuccessfulLookups != 1 {
		t.Errorf("SuccessfulLookups = %d, want 1", snap.SuccessfulLookups)
	}
	if snap.MissedLookups != 1 {
		t.Errorf("MissedLookups = %d, want 1", snap.MissedLookups)
	}
}

func TestRecordExpectedValueMismatch(t *testing.T) {
	tbl := newTestTable(t, Striped, 8, false)
	tbl.Insert(5, 50)

	got := tbl.Lookup(5)
	tbl.RecordExpectedValue(got, 50) // matches
	tbl.RecordExpectedValue(got, 999) // mismatch

	if snap := tbl.Snapshot(); snap.FailedMatches != 1 {
		t.Errorf("FailedMatches = %d, want 1", snap.FailedMatches)
	}
}
