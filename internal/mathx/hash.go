package mathx

// ChunkHash maps chunk coordinates to a bucket of a power-of-two table.
// Overflow wraps; negative sums map through their two's complement so the
// same coordinate always lands in the same bucket.
func ChunkHash(x, y, z int32, bucketMask uint32) uint32 {
	h := 19*x + 7*y + 3*z
	return uint32(h) & bucketMask
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
