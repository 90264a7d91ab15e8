package chainhash

import (
	"sync/atomic"

	"github.com/riftlabs/chainhash/internal/opt"
)

// counterStripe is one padded atomic counter. The full metrics set is a
// handful of these, each on its own cache line, so incrementing
// "successful lookups" from one goroutine never contends with another
// goroutine incrementing "total inserts".
type counterStripe struct {
	v atomic.Uint64
	_ [(opt.CacheLineSize - 8%opt.CacheLineSize) % opt.CacheLineSize]byte
}

func (c *counterStripe) add(n uint64) {
	c.v.Add(n)
}

func (c *counterStripe) load() uint64 {
	return c.v.Load()
}

// metrics holds the counters reported by Snapshot, disabled entirely in
// speed-test mode (Config.MetricsEnabled == false). All fields are
// accumulated with atomic adds and read only at reporting time, which
// per spec §6.5/§8.5 is total ops, total lookups, successful lookups,
// missed lookups, total inserts, and failed key/value matches.
type metrics struct {
	lookups     counterStripe
	lookupsHit  counterStripe
	lookupsMiss counterStripe
	inserts     counterStripe
	mismatches  counterStripe
}

// Snapshot is a point-in-time read of a Table's metrics.
type Snapshot struct {
	TotalOps          uint64
	TotalLookups      uint64
	SuccessfulLookups uint64
	MissedLookups     uint64
	TotalInserts      uint64
	FailedMatches     uint64
}

// Snapshot returns the table's current metric counters. It is only
// meaningful when the table was created with Config.MetricsEnabled;
// otherwise every field is 0.
func (t *Table) Snapshot() Snapshot {
	lookups := t.metrics.lookups.load()
	inserts := t.metrics.inserts.load()
	return Snapshot{
		TotalOps:          lookups + inserts,
		TotalLookups:      lookups,
		SuccessfulLookups: t.metrics.lookupsHit.load(),
		MissedLookups:     t.metrics.lookupsMiss.load(),
		TotalInserts:      inserts,
		FailedMatches:     t.metrics.mismatches.load(),
	}
}

// RecordExpectedValue folds an input-file verification line's expected
// value against the value actually returned by a preceding Lookup,
// incrementing the failed-key/value-match counter on a mismatch. The
// input file format (spec §6.2) carries a value alongside every 'L'
// opcode solely for this check; it plays no role in the lookup itself.
// A missed lookup (got == InvalidValue) is never counted as a failed
// match — it already has its own counter.
func (t *Table) RecordExpectedValue(got, want uint64) {
	if !t.metricsEnabled {
		return
	}
	if got != InvalidValue && got != want {
		t.metrics.mismatches.add(1)
	}
}
