package rng

// ChunkSeed mixes a world seed and a chunk row into the 32-bit seed of that
// chunk's generation stream. The world seed is avalanched with fmix64 from
// MurmurHash3; the row is then folded in and finished with fmix32. Every step
// applied to the row is a bijection on 32 bits, which guarantees distinct
// streams for distinct chunk rows of one world.
func ChunkSeed(worldSeed int64, chunkY int32) uint32 {
	h := uint64(worldSeed)
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	h *= 0xC4CEB9FE1A85EC53
	h ^= h >> 33
	x := uint32(h) ^ uint32(h>>32) ^ uint32(chunkY)*0x9E3779B9
	x ^= x >> 16
	x *= 0x85EBCA6B
	x ^= x >> 13
	x *= 0xC2B2AE35
	x ^= x >> 16
	return x
}

// DerivedSeed mixes a world seed with a stream salt for the non-terrain
// streams (loot, events, drop jitter).
func DerivedSeed(worldSeed int64, salt uint32) uint32 {
	return ChunkSeed(worldSeed^int64(salt)<<17, int32(salt))
}

// ForChunk returns the generation stream of one chunk.
func ForChunk(worldSeed int64, chunkY int32) *Stream {
	return New(ChunkSeed(worldSeed, chunkY))
}

// ForLoot returns the loot-roll stream of a world.
func ForLoot(worldSeed int64) *Stream {
	return New(DerivedSeed(worldSeed, SaltLoot))
}

// ForEvents returns the random-event stream of a world.
func ForEvents(worldSeed int64) *Stream {
	return New(DerivedSeed(worldSeed, SaltEvents))
}

// ForJitter returns the drop-position jitter stream of a world.
func ForJitter(worldSeed int64) *Stream {
	return New(DerivedSeed(worldSeed, SaltJitter))
}
