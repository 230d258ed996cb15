package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// chainView builds a snapshot of solid rock with hazards at the given
// coordinates.
func chainView(hazards ...Coord) map[Coord]game.BlockType {
	view := make(map[Coord]game.BlockType)
	for x := 40; x <= 60; x++ {
		for y := 90; y <= 110; y++ {
			view[Coord{x, y}] = game.BlockRock
		}
	}
	for _, h := range hazards {
		view[h] = game.BlockTNT
	}
	return view
}

func TestChainTwoPhases(t *testing.T) {
	// Hazards at (50,100), (51,100), (50,102). The second chains off the
	// first; the third is two rows below the second, outside its 3x3, and
	// survives.
	view := chainView(Coord{50, 100}, Coord{51, 100}, Coord{50, 102})
	res := ComputeChain(view, Coord{50, 100})

	require.Len(t, res.Detonations, 2)
	assert.Equal(t, 2, res.ChainLength)
	assert.Equal(t, Coord{50, 100}, res.Detonations[0].Center)
	assert.Equal(t, Coord{51, 100}, res.Detonations[1].Center)

	assert.Equal(t, time.Duration(0), res.Detonations[0].Delay)
	assert.Equal(t, game.TNTChainDelay, res.Detonations[1].Delay)

	// Phase 0 destroys its full 3x3 including the chained hazard.
	assert.Len(t, res.Detonations[0].Destroyed, 9)
	assert.Contains(t, res.Detonations[0].Destroyed, Coord{51, 100})
	assert.Contains(t, res.Detonations[1].Destroyed, Coord{50, 101})
	assert.Contains(t, res.Detonations[1].Destroyed, Coord{52, 101})

	// The far hazard never detonates but (50,102) is untouched entirely:
	// not within either 3x3.
	for _, det := range res.Detonations {
		assert.NotEqual(t, Coord{50, 102}, det.Center)
		assert.NotContains(t, det.Destroyed, Coord{50, 102})
	}

	assert.Equal(t, game.TNTLaunchDistance+game.TNTChainExtraLaunch, res.TotalLaunchDistance)
	assert.Equal(t, 85, res.LaunchY(100))
	assert.Equal(t, 0, res.LaunchY(12))
}

func TestChainSingle(t *testing.T) {
	view := chainView(Coord{50, 100})
	res := ComputeChain(view, Coord{50, 100})

	assert.Equal(t, 1, res.ChainLength)
	assert.Len(t, res.Destroyed, 9)
	assert.Equal(t, game.TNTLaunchDistance, res.TotalLaunchDistance)
	assert.Equal(t, game.TNTPenaltyAt(100), res.TotalGoldPenalty)
}

func TestChainDestroyedDeduped(t *testing.T) {
	view := chainView(Coord{50, 100}, Coord{51, 100}, Coord{52, 100})
	res := ComputeChain(view, Coord{50, 100})

	seen := make(map[Coord]struct{})
	for _, c := range res.Destroyed {
		if _, dup := seen[c]; dup {
			t.Fatalf("coordinate %v destroyed twice", c)
		}
		seen[c] = struct{}{}
	}
}

func TestChainIdempotent(t *testing.T) {
	view := chainView(Coord{50, 100}, Coord{51, 101}, Coord{49, 99})
	a := ComputeChain(view, Coord{50, 100})
	b := ComputeChain(view, Coord{50, 100})

	assert.Equal(t, a.Destroyed, b.Destroyed)
	assert.Equal(t, a.TotalGoldPenalty, b.TotalGoldPenalty)
	assert.Equal(t, a.ChainLength, b.ChainLength)
}

func TestChainEveryNeighbourHazardDetonates(t *testing.T) {
	hazards := []Coord{{50, 100}, {51, 100}, {52, 101}, {53, 102}}
	view := chainView(hazards...)
	res := ComputeChain(view, Coord{50, 100})

	centers := make(map[Coord]struct{})
	for _, det := range res.Detonations {
		centers[det.Center] = struct{}{}
	}
	// Each hazard is adjacent to the previous; all four must detonate.
	for _, h := range hazards {
		if _, ok := centers[h]; !ok {
			t.Errorf("hazard %v never detonated", h)
		}
	}
	assert.Equal(t, 4, res.ChainLength)
}

func TestChainPenaltySumsPerCenter(t *testing.T) {
	view := chainView(Coord{50, 100}, Coord{51, 100})
	res := ComputeChain(view, Coord{50, 100})
	assert.Equal(t, 2*game.TNTPenaltyAt(100), res.TotalGoldPenalty)
}

func TestChainStopsAtSurface(t *testing.T) {
	view := map[Coord]game.BlockType{
		{10, 0}: game.BlockTNT,
		{10, 1}: game.BlockDirt,
	}
	res := ComputeChain(view, Coord{10, 0})
	for _, c := range res.Destroyed {
		assert.GreaterOrEqual(t, c.Y, 0, "must not destroy above the surface")
	}
}

func TestSnapshotCopiesHalo(t *testing.T) {
	s := testStore(12345)
	view := Snapshot(s, Coord{100, 50}, 5)

	// 11x11 halo fully below the surface.
	assert.Len(t, view, 121)
	for c, typ := range view {
		assert.Equal(t, s.GetBlock(c.X, c.Y).Type, typ, "snapshot mismatch at %v", c)
	}
}
