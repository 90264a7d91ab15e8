package chainhash

import "sync/atomic"

// Variant selects the table's internal synchronisation discipline.
// Both variants implement the identical external contract (Lookup,
// Insert, Resize); only the mechanism protecting a bucket's chain
// differs.
type Variant int

const (
	// Striped protects each bucket chain with one lock drawn from a
	// fixed-size array of stripe locks, indexed by bucket index modulo
	// the lock count.
	Striped Variant = iota
	// LockFree mutates bucket chains with atomic compare-and-swap on
	// the chain head; per-node value updates use atomic stores.
	LockFree
)

// Config configures a new Table. The zero value selects the striped
// variant with the package defaults.
type Config struct {
	// Variant selects Striped or LockFree. Defaults to Striped.
	Variant Variant

	// NumBuckets is the initial bucket count. Values below 1 reset to
	// the default of 64.
	NumBuckets uint64

	// NumLocks is the initial stripe lock count, striped variant only.
	// Values below 1 reset to NumBuckets/8 (at least 1).
	NumLocks uint64

	// ResizeEnabled controls whether a long chain triggers a resize.
	// When false, chains grow without bound and performance degrades
	// linearly, but no backpressure is applied — this matches running
	// with resizing disabled for a speed test or a fixed workload.
	ResizeEnabled bool

	// MetricsEnabled controls whether Insert/Lookup maintain the
	// operation counters exposed by Snapshot. Disable for speed-test
	// runs where the counter increments themselves are overhead.
	MetricsEnabled bool
}

const (
	defaultNumBuckets = 64

	// defaultNumLocksRatio mirrors the original driver's
	// INIT_NUM_LOCKS_RATIO: the default stripe lock count is the bucket
	// count divided by this ratio, not a 1:1 lock-per-bucket array.
	defaultNumLocksRatio = 8
)

func (c Config) normalized() Config {
	if c.NumBuckets < 1 {
		c.NumBuckets = defaultNumBuckets
	}
	if c.Variant == Striped && c.NumLocks < 1 {
		c.NumLocks = c.NumBuckets / defaultNumLocksRatio
		if c.NumLocks < 1 {
			c.NumLocks = 1
		}
	}
	return c
}

// tableData is the table's live, shared state: bucket array, and
// (striped variant only) the lock array sized independently of the
// bucket count. A resize builds a new tableData and swaps it in,
// never mutating one in place — any goroutine that has already loaded
// the old pointer keeps a perfectly consistent, if stale, view.
type tableData struct {
	buckets    []bucket
	numBuckets uint64
	locks      *lockArray
	numLocks   uint64
}

// Table is a concurrent, dynamically resizable, bucketized hash map
// from uint64 keys to uint64 values. The zero value is not usable;
// construct with New.
type Table struct {
	variant        Variant
	resizeEnabled  bool
	metricsEnabled bool

	data atomic.Pointer[tableData]

	numItems     atomic.Uint64
	resizeNeeded atomic.Bool

	// pendingResize hands the newly allocated tableData from the
	// resize leader to the other participating workers between the
	// allocate and rehash phases (see resize.go).
	pendingResize atomic.Pointer[tableData]

	metrics metrics
}

// New creates a Table per cfg. It corresponds to spec's create_table;
// NumLocks is ignored for the LockFree variant.
func New(cfg Config) *Table {
	cfg = cfg.normalized()

	t := &Table{
		variant:        cfg.Variant,
		resizeEnabled:  cfg.ResizeEnabled,
		metricsEnabled: cfg.MetricsEnabled,
	}

	td := &tableData{
		buckets:    make([]bucket, cfg.NumBuckets),
		numBuckets: cfg.NumBuckets,
	}
	if cfg.Variant == Striped {
		td.locks = newLockArray(cfg.NumLocks)
		td.numLocks = cfg.NumLocks
	}
	t.data.Store(td)
	return t
}

// Destroy releases the table's bucket and lock storage. It must not be
// called while any other goroutine might still call Lookup/Insert on
// the table.
func (t *Table) Destroy() {
	t.data.Store(nil)
}

// NumItems returns the number of distinct keys currently stored. It is
// only tracked when Config.MetricsEnabled is true — as in the
// reference driver's speed_test mode, a table built with
// MetricsEnabled: false never advances this counter.
func (t *Table) NumItems() uint64 {
	return t.numItems.Load()
}

// NumBuckets returns the current bucket count (I5: always a power-of-two
// multiple of the initial count, since each resize doubles it).
func (t *Table) NumBuckets() uint64 {
	return t.data.Load().numBuckets
}

func (t *Table) loadData() *tableData {
	return t.data.Load()
}
