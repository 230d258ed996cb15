package world

import (
	"time"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// Detonation is one exploding hazard center within a chain.
type Detonation struct {
	Center    Coord
	Destroyed []Coord
	Delay     time.Duration
}

// ChainResult is the full outcome of a TNT cascade.
type ChainResult struct {
	Detonations []Detonation
	// Destroyed is the globally deduplicated set of destroyed coordinates
	// in detonation order.
	Destroyed []Coord

	ChainLength         int
	TotalGoldPenalty    int
	TotalLaunchDistance int
}

// ComputeChain evaluates the multi-phase destruction set starting from one
// hazard coordinate over an immutable snapshot of block types. The
// snapshot, not the live store, decides which blocks chain, so repeated
// invocation over the same snapshot is idempotent.
func ComputeChain(view map[Coord]game.BlockType, initial Coord) ChainResult {
	res := ChainResult{}
	destroyed := make(map[Coord]struct{})
	processed := map[Coord]struct{}{initial: {}}

	phase := []Coord{initial}
	for k := 0; len(phase) > 0; k++ {
		var next []Coord
		delay := time.Duration(k) * game.TNTChainDelay

		for _, center := range phase {
			det := Detonation{Center: center, Delay: delay}

			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					c := Coord{center.X + dx, center.Y + dy}
					if c.Y < 0 {
						continue
					}
					det.Destroyed = append(det.Destroyed, c)
					if _, seen := destroyed[c]; !seen {
						destroyed[c] = struct{}{}
						res.Destroyed = append(res.Destroyed, c)
					}

					// Neighbouring hazards chain into the next phase.
					if t, ok := view[c]; ok && t.IsHazard() {
						if _, done := processed[c]; !done {
							processed[c] = struct{}{}
							next = append(next, c)
						}
					}
				}
			}

			res.TotalGoldPenalty += game.TNTPenaltyAt(center.Y)
			res.Detonations = append(res.Detonations, det)
		}

		phase = next
		res.ChainLength = k + 1
	}

	res.TotalLaunchDistance = game.TNTLaunchDistance +
		(res.ChainLength-1)*game.TNTChainExtraLaunch
	return res
}

// LaunchY returns the depth a player at currentY is thrown to by the chain.
func (r ChainResult) LaunchY(currentY int) int {
	y := currentY - r.TotalLaunchDistance
	if y < 0 {
		y = 0
	}
	return y
}

// Snapshot copies a halo of blocks around a center out of the store into an
// immutable view for the chain engine.
func Snapshot(s *Store, center Coord, halo int) map[Coord]game.BlockType {
	view := make(map[Coord]game.BlockType)
	for dx := -halo; dx <= halo; dx++ {
		for dy := -halo; dy <= halo; dy++ {
			c := Coord{center.X + dx, center.Y + dy}
			if c.Y < 0 {
				continue
			}
			if b := s.GetBlock(c.X, c.Y); b != nil {
				view[c] = b.Type
			}
		}
	}
	return view
}
