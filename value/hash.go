package value

import "github.com/cespare/xxhash/v2"

// Hash returns a deterministic hash of the viewed bytes.
//
// The hash is computed on first call and cached; values that are equal
// according to [Compare] always produce equal hashes. The cache records
// presence explicitly, so every possible hash output is cacheable.
//
// The cache is published atomically, making the first-use race between
// goroutines benign: every racing writer computes and stores the identical
// result.
func (v *Value) Hash() uint32 {
	if sum, ok := v.hash.Load(); ok {
		return sum
	}

	sum := uint32(xxhash.Sum64(v.view()))
	v.hash.Store(sum)

	return sum
}
