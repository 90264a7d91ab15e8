package chainhash

// lookupStriped implements spec §4.2's striped protocol: acquire the
// stripe lock for bucket b, walk the chain, release on every exit path
// (handled here by a single deferless unlock before each return).
func (t *Table) lookupStriped(td *tableData, key uint64) uint64 {
	b := bucketIndex(key, td.numBuckets)
	lock := td.locks.lockFor(b)

	lock.Lock()
	for n := td.buckets[b].head.Load(); n != nil; n = n.next.Load() {
		if n.key == key {
			v := n.Value()
			lock.Unlock()
			return v
		}
	}
	lock.Unlock()
	return InvalidValue
}

// insertStriped implements spec §4.3's striped protocol: acquire the
// bucket's lock, scan for an existing key (overwrite in place), else
// prepend a new node at the head. depth is the resulting chain length,
// which drives the resize trigger.
func (t *Table) insertStriped(td *tableData, key, value uint64) {
	b := bucketIndex(key, td.numBuckets)
	lock := td.locks.lockFor(b)

	lock.Lock()
	depth := uint64(0)
	for n := td.buckets[b].head.Load(); n != nil; n = n.next.Load() {
		depth++
		if n.key == key {
			n.value.Store(value)
			lock.Unlock()
			return
		}
	}

	head := td.buckets[b].head.Load()
	node := newNode(key, value, head)
	td.buckets[b].head.Store(node)
	depth++
	lock.Unlock()

	t.afterNewNodeInsert(depth)
}

// resizeInsertStriped is the bulk-insert used by resize's rehash pass:
// it locks the destination bucket in the new table and prepends a copy
// of the source node's payload. It does not check for duplicates —
// correctness relies on the old table having held at most one node per
// key (I1) and the driver barrier guaranteeing no concurrent ordinary
// insert can race with the rehash.
func resizeInsertStriped(dst *tableData, key, value uint64) {
	b := bucketIndex(key, dst.numBuckets)
	lock := dst.locks.lockFor(b)

	lock.Lock()
	head := dst.buckets[b].head.Load()
	dst.buckets[b].head.Store(newNode(key, value, head))
	lock.Unlock()
}
