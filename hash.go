package chainhash

const (
	// InvalidKey is the reserved sentinel key. Keys equal to it are
	// never stored; Insert silently drops them and Lookup returns
	// InvalidValue immediately.
	InvalidKey uint64 = ^uint64(0)

	// InvalidValue is the reserved sentinel value, also returned by
	// Lookup for an absent key.
	InvalidValue uint64 = ^uint64(0)

	// MaxChainSize is the chain length that triggers a resize. Only a
	// successful new-node insert (not an update-in-place) checks this.
	MaxChainSize = 8
)

// bucketIndex computes h(k) = (k*37 + 13) mod numBuckets. This exact
// function must never change: the distribution and saturation behavior
// that callers rely on (and that the resize trigger is tuned against)
// depends on it bit-for-bit.
func bucketIndex(key, numBuckets uint64) uint64 {
	return (key*37 + 13) % numBuckets
}
