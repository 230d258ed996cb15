package world

import (
	"testing"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

func TestGenerateChunkDeterministic(t *testing.T) {
	a := generateChunk(12345, 3)
	b := generateChunk(12345, 3)

	for i := range a.Blocks {
		if a.Blocks[i] != b.Blocks[i] {
			t.Fatalf("block %d diverged: %+v != %+v", i, a.Blocks[i], b.Blocks[i])
		}
	}
}

func TestGenerateChunkSeedSensitivity(t *testing.T) {
	a := generateChunk(12345, 3)
	b := generateChunk(12346, 3)

	same := 0
	for i := range a.Blocks {
		if a.Blocks[i].Type == b.Blocks[i].Type {
			same++
		}
	}
	if same == len(a.Blocks) {
		t.Fatal("different world seeds produced identical hazard placement")
	}
}

func TestSafeSpawnBandHasNoHazards(t *testing.T) {
	c := generateChunk(12345, 0)
	for _, b := range c.Blocks {
		if b.Y < game.SafeSpawnBlocks && b.Type.IsHazard() {
			t.Fatalf("hazard generated at depth %d inside the safe band", b.Y)
		}
	}
}

func TestVoidStoneHardnessGrowth(t *testing.T) {
	// Chunk row 40 covers depths 1280..1311, all past the growth knee.
	c := generateChunk(12345, 40)
	for _, b := range c.Blocks {
		want := game.LayerAt(b.Y).BaseHardness + float64(b.Y-game.VoidStoneGrowthDepth)*game.VoidStoneGrowthRate
		if b.MaxHP != want {
			t.Fatalf("block at depth %d has maxHp %v, want %v", b.Y, b.MaxHP, want)
		}
	}
}

func TestGeneratedBlockAtMatchesFullGeneration(t *testing.T) {
	const seed = 98765
	c := generateChunk(seed, 2)

	probes := []struct{ x, y int }{
		{0, 64}, {1, 65}, {999, 80}, {1999, 95}, {500, 77},
	}
	for _, p := range probes {
		localY := p.y - 2*game.ChunkHeight
		want := c.Blocks[blockIndex(p.x, localY)]
		got := GeneratedBlockAt(seed, p.x, p.y)
		if got != want {
			t.Errorf("GeneratedBlockAt(%d,%d) = %+v, want %+v", p.x, p.y, got, want)
		}
	}
}

func TestHazardRatePlausible(t *testing.T) {
	// Row 0 is topsoil with a 2% hazard chance outside the safe band;
	// expect roughly 2% with a generous tolerance.
	c := generateChunk(555, 0)
	eligible, hazards := 0, 0
	for _, b := range c.Blocks {
		if b.Y < game.SafeSpawnBlocks {
			continue
		}
		eligible++
		if b.Type.IsHazard() {
			hazards++
		}
	}
	rate := float64(hazards) / float64(eligible)
	if rate < 0.01 || rate > 0.04 {
		t.Errorf("hazard rate %v far from the configured 0.02", rate)
	}
}

func TestWrapX(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0},
		{1999, 1999},
		{2000, 0},
		{2001, 1},
		{-1, 1999},
		{-2000, 0},
	}
	for _, tt := range tests {
		if got := WrapX(tt.in); got != tt.want {
			t.Errorf("WrapX(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
