// Package chainhash implements a concurrent, dynamically resizable,
// bucketized hash map from uint64 keys to uint64 values.
//
// Two interchangeable variants are provided through the same Table API:
//
//   - Striped: each bucket chain is protected by one of a fixed-size
//     array of spin locks, indexed by bucket index modulo the lock
//     count.
//   - LockFree: bucket chains are mutated with atomic compare-and-swap
//     on the chain head; value updates are atomic stores.
//
// Both variants support only Lookup and Insert (no delete) and grow by
// a coordinated, stop-the-world resize that doubles the bucket count.
// Resize is collective: every worker thread that shares the table must
// call Resize at the same time, which is the job of the driver loop in
// internal/driver (used by cmd/chainhash and cmd/chainhash-lockfree).
package chainhash
