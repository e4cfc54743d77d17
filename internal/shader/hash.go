package shader

// hashSeed is the fixed seed for all content hashes. Hashes are cache keys
// and change detectors, not security digests.
const hashSeed uint32 = 127

// hsiehHash is Paul Hsieh's SuperFastHash, folded incrementally so source
// text and both definition strings can feed one digest.
func hsiehHash(data []byte, hash uint32) uint32 {
	n := len(data)
	if n == 0 {
		return hash
	}

	rem := n & 3
	n >>= 2

	for i := 0; i < n; i++ {
		off := i * 4
		hash += uint32(data[off]) | uint32(data[off+1])<<8
		tmp := ((uint32(data[off+2]) | uint32(data[off+3])<<8) << 11) ^ hash
		hash = (hash << 16) ^ tmp
		hash += hash >> 11
	}

	off := n * 4
	switch rem {
	case 3:
		hash += uint32(data[off]) | uint32(data[off+1])<<8
		hash ^= hash << 16
		hash ^= uint32(data[off+2]) << 18
		hash += hash >> 11
	case 2:
		hash += uint32(data[off]) | uint32(data[off+1])<<8
		hash ^= hash << 11
		hash += hash >> 17
	case 1:
		hash += uint32(data[off])
		hash ^= hash << 10
		hash += hash >> 1
	}

	hash ^= hash << 3
	hash += hash >> 5
	hash ^= hash << 4
	hash += hash >> 17
	hash ^= hash << 25
	hash += hash >> 6

	return hash
}

// stringHash keys uniform-state tables by name. Stable across relinks,
// unlike native uniform locations.
func stringHash(s string) uint32 {
	return hsiehHash([]byte(s), uint32(len(s)))
}
