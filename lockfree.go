package chainhash

// lookupLockFree implements spec §4.2's lock-free protocol: an atomic
// load of the bucket head (safe because nodes are never recycled while
// any lookup might still be traversing them — the resize barrier is the
// only point at which an old chain is ever freed), walking the chain
// until a match or the end, reading the matched node's value with an
// atomic load so a concurrent in-place update can never be observed
// torn. No CAS is needed on the read path: this is wait-free.
func (t *Table) lookupLockFree(td *tableData, key uint64) uint64 {
	b := bucketIndex(key, td.numBuckets)
	for n := td.buckets[b].head.Load(); n != nil; n = n.next.Load() {
		if n.key == key {
			return n.Value()
		}
	}
	return InvalidValue
}

// insertLockFree implements spec §4.3's lock-free protocol: snapshot the
// head, scan for the key, overwrite in place on a hit, or CAS-prepend a
// new node on a miss, retrying the whole scan if the CAS lost the race
// to another inserter. Go's garbage collector makes the protocol's
// "free the unused pre-allocated node" step moot, so the node is only
// allocated once the scan has confirmed it is actually needed.
func (t *Table) insertLockFree(td *tableData, key, value uint64) {
	b := bucketIndex(key, td.numBuckets)
	head := &td.buckets[b].head

	for {
		expected := head.Load()

		depth := uint64(0)
		found := false
		for n := expected; n != nil; n = n.next.Load() {
			depth++
			if n.key == key {
				n.value.Store(value)
				found = true
				break
			}
		}
		if found {
			return
		}

		node := newNode(key, value, expected)
		if head.CompareAndSwap(expected, node) {
			t.afterNewNodeInsert(depth + 1)
			return
		}
		// Lost the race to a concurrent prepend; the scan
		// above is now stale, so retry from a fresh head snapshot.
	}
}

// resizeInsertLockFree is the bulk-insert used by resize's rehash pass.
// It CAS-prepends without a uniqueness check: correctness depends on
// I1 holding in the source table and on the driver barrier guaranteeing
// no ordinary insert races with the rehash (see spec §4.4 and §9's
// design note on resize_insert).
func resizeInsertLockFree(dst *tableData, key, value uint64) {
	b := bucketIndex(key, dst.numBuckets)
	head := &dst.buckets[b].head

	for {
		expected := head.Load()
		node := newNode(key, value, expected)
		if head.CompareAndSwap(expected, node) {
			return
		}
	}
}
