package world

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

func testStore(seed int64) *Store {
	log := logrus.NewEntry(logrus.New())
	return NewStore(seed, clock.NewMock(), log)
}

func TestGetBlockWrapsAndRejectsNegative(t *testing.T) {
	s := testStore(12345)

	require.Nil(t, s.GetBlock(10, -1))

	a := s.GetBlock(10, 5)
	b := s.GetBlock(10+game.ChunkWidth, 5)
	require.NotNil(t, a)
	assert.Equal(t, a, b, "x should wrap modulo chunk width")
}

func TestDamageBlockLifecycle(t *testing.T) {
	s := testStore(12345)

	b := s.GetBlock(10, 1)
	require.NotNil(t, b)
	require.Equal(t, game.BlockDirt, b.Type)
	require.Equal(t, 1.0, b.MaxHP)

	res := s.DamageBlock(10, 1, 1)
	assert.True(t, res.Destroyed)
	assert.Equal(t, 0.0, res.RemainingHP)

	after := s.GetBlock(10, 1)
	assert.Equal(t, game.BlockEmpty, after.Type)
	assert.Equal(t, 0.0, after.HP)

	// Damaging an empty block is a no-op.
	res = s.DamageBlock(10, 1, 5)
	assert.False(t, res.Destroyed)
}

func TestDamageBlockPartial(t *testing.T) {
	s := testStore(12345)

	// Stone layer blocks have hardness 4.
	res := s.DamageBlock(50, 200, 1)
	assert.False(t, res.Destroyed)
	assert.Equal(t, 3.0, res.RemainingHP)

	assert.Contains(t, s.DirtyChunks(), ChunkYFor(200))
}

func TestModificationReplayReproducesState(t *testing.T) {
	s := testStore(777)
	s.DamageBlock(5, 10, 100)
	s.DamageBlock(6, 10, 0.5)
	s.DestroyBlock(7, 11)

	chunkY := ChunkYFor(10)
	mods := s.ChunkModifications(chunkY)
	require.NotEmpty(t, mods)

	fresh := testStore(777)
	fresh.ApplyModifications(chunkY, mods)

	for _, c := range []Coord{{5, 10}, {6, 10}, {7, 11}} {
		want := s.GetBlock(c.X, c.Y)
		got := fresh.GetBlock(c.X, c.Y)
		assert.Equal(t, want.Type, got.Type, "type at %v", c)
		assert.Equal(t, want.HP, got.HP, "hp at %v", c)
	}
}

func TestMarkChunksSavedClearsDirty(t *testing.T) {
	s := testStore(1)
	s.DestroyBlock(1, 1)
	require.NotEmpty(t, s.DirtyChunks())

	s.MarkChunksSaved(s.DirtyChunks())
	assert.Empty(t, s.DirtyChunks())
}

func TestEvictionPinsDirtyChunks(t *testing.T) {
	s := testStore(42)
	s.DestroyBlock(0, 0) // row 0 becomes dirty

	// Touch enough rows to evict row 0 from the LRU.
	for i := 1; i <= game.MaxLoadedChunks+5; i++ {
		s.GetBlock(0, i*game.ChunkHeight)
	}

	assert.Contains(t, s.DirtyChunks(), int32(0), "dirty chunk must survive eviction")

	// Its modification is still applied.
	b := s.GetBlock(0, 0)
	assert.Equal(t, game.BlockEmpty, b.Type)
}

func TestGetChunkForClientMasksDistantHazards(t *testing.T) {
	s := testStore(12345)

	playerPos := Coord{X: 10, Y: 0}
	torchTier := 1
	radius := game.TorchRadius(torchTier)

	blocks := s.GetChunkForClient(0, playerPos, torchTier)
	require.NotEmpty(t, blocks)

	for _, cb := range blocks {
		assert.NotEqual(t, game.BlockEmpty, cb.Type, "empty blocks are omitted")
		d := dist(playerPos, Coord{cb.X, cb.Y})
		if cb.Type == game.BlockTNT {
			assert.LessOrEqual(t, d, radius, "unmasked hazard outside torch radius at (%d,%d)", cb.X, cb.Y)
		}
		if cb.Type == game.BlockUnknown {
			actual := s.GetBlock(cb.X, cb.Y)
			assert.True(t, actual.Type.IsHazard(), "only hazards mask as unknown")
		}
	}
}

func TestRevealedHazardsOnlyNewlyVisible(t *testing.T) {
	s := testStore(12345)
	old := Coord{X: 100, Y: 50}
	cur := Coord{X: 103, Y: 50}
	tier := 2
	radius := game.TorchRadius(tier)

	for _, b := range s.RevealedHazards(cur, tier, old) {
		assert.True(t, b.Type.IsHazard())
		assert.LessOrEqual(t, dist(cur, Coord{b.X, b.Y}), radius)
		assert.Greater(t, dist(old, Coord{b.X, b.Y}), radius)
	}
}
