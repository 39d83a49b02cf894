// Package fixp provides fixed-width two's-complement helpers used by the
// accelerator datapath. All arithmetic in the core wraps silently within a
// configured bit width; these helpers centralise the wrap and range checks so
// the datapath code reads like the hardware it models.
package fixp

// Wrap reduces v modulo 2^bits and sign-extends the result, i.e. it returns
// the value a two's-complement register of the given width would hold after
// storing v. bits must be in [1, 63].
func Wrap(v int64, bits uint) int64 {
	mask := int64(1)<<bits - 1
	v &= mask
	if v&(int64(1)<<(bits-1)) != 0 {
		v -= int64(1) << bits
	}
	return v
}

// Fits reports whether v is representable in a signed register of the given
// width without wrapping.
func Fits(v int64, bits uint) bool {
	return v == Wrap(v, bits)
}

// MinMax returns the inclusive range of a signed register of the given width.
func MinMax(bits uint) (min, max int64) {
	max = int64(1)<<(bits-1) - 1
	min = -max - 1
	return min, max
}

// Abs returns the magnitude of v. The caller is expected to have widened v
// beyond its storage width first; the most negative value of the storage
// width then has a representable magnitude, matching the hardware's unsigned
// magnitude datapath.
func Abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
