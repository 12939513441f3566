// Package bitint provides the power-of-two helpers used when sizing FFT
// windows. Radix-2 lengths are not required by the transform but are the
// fast path, so callers may round up to one.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Powers of
// two map to themselves; non-positive sizes map to 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
