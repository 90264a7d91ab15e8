package chainhash

import (
	"sync/atomic"
	"unsafe"

	"github.com/riftlabs/chainhash/internal/opt"
)

// bucket is one slot of the table's bucket array. head is mutated either
// under the bucket's stripe lock (striped variant) or via CAS
// (lock-free variant); both variants read it with an atomic load.
//
// padding rounds the struct up to a cache line so that two adjacent
// buckets, which are very likely governed by two different stripe
// locks, never bounce the same cache line between cores.
type bucket struct {
	head atomic.Pointer[Node]
	_    [(opt.CacheLineSize - unsafe.Sizeof(atomic.Pointer[Node]{})%opt.CacheLineSize) % opt.CacheLineSize]byte
}
