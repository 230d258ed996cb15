package world

import (
	"time"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/rng"
)

// Modification is one durable local change to a generated chunk. Replaying
// a chunk's modifications over freshly regenerated terrain reproduces the
// current data.
type Modification struct {
	X    int            `json:"x"`
	Y    int            `json:"y"`
	Type game.BlockType `json:"type"`
	HP   float64        `json:"hp"`
}

// ChunkRecord is one realized vertical strip of terrain,
// game.ChunkWidth x game.ChunkHeight blocks stored column-major
// (x outer, local y inner).
type ChunkRecord struct {
	ChunkY       int32
	Blocks       []Block
	Dirty        bool
	LastAccessed time.Time

	mods map[Coord]Modification
}

// blockIndex returns the column-major slab index of a local coordinate.
func blockIndex(x, localY int) int {
	return x*game.ChunkHeight + localY
}

// generateChunk realizes the chunk row from the world seed. One PRNG draw
// is consumed per block in column-major order, so single-block lookups can
// reproduce any placement by skipping to the block's index.
func generateChunk(worldSeed int64, chunkY int32) *ChunkRecord {
	r := rng.ForChunk(worldSeed, chunkY)
	blocks := make([]Block, game.ChunkWidth*game.ChunkHeight)

	for x := 0; x < game.ChunkWidth; x++ {
		for localY := 0; localY < game.ChunkHeight; localY++ {
			y := int(chunkY)*game.ChunkHeight + localY
			layer := game.LayerAt(y)

			// Draw once per block, hazard band or not, to keep the stream
			// index aligned with blockIndex.
			roll := r.Float64()

			t := layer.Block
			if y >= game.SafeSpawnBlocks && roll < layer.TNTSpawnChance {
				t = game.BlockTNT
			}

			hp := game.HardnessAt(y)
			blocks[blockIndex(x, localY)] = Block{Type: t, HP: hp, MaxHP: hp, X: x, Y: y}
		}
	}

	return &ChunkRecord{
		ChunkY: chunkY,
		Blocks: blocks,
		mods:   make(map[Coord]Modification),
	}
}

// GeneratedBlockAt reproduces the generated (pre-modification) block at a
// single coordinate without realizing the whole chunk, by skipping the
// stream to the block's index.
func GeneratedBlockAt(worldSeed int64, x, y int) Block {
	x = WrapX(x)
	chunkY := ChunkYFor(y)
	localY := y - int(chunkY)*game.ChunkHeight

	r := rng.ForChunk(worldSeed, chunkY)
	r.Skip(blockIndex(x, localY))
	roll := r.Float64()

	layer := game.LayerAt(y)
	t := layer.Block
	if y >= game.SafeSpawnBlocks && roll < layer.TNTSpawnChance {
		t = game.BlockTNT
	}
	hp := game.HardnessAt(y)
	return Block{Type: t, HP: hp, MaxHP: hp, X: x, Y: y}
}

// Modifications returns the chunk's local changes. Each coordinate appears
// at most once.
func (c *ChunkRecord) Modifications() []Modification {
	out := make([]Modification, 0, len(c.mods))
	for _, m := range c.mods {
		out = append(out, m)
	}
	return out
}

func (c *ChunkRecord) recordMod(x, y int, t game.BlockType, hp float64) {
	c.mods[Coord{x, y}] = Modification{X: x, Y: y, Type: t, HP: hp}
	c.Dirty = true
}
