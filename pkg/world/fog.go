package world

import (
	"math"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// Reveal is one hazard block disclosed to a player.
type Reveal struct {
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Type  game.BlockType `json:"blockType"`
	HP    float64        `json:"hp"`
	MaxHP float64        `json:"maxHp"`
}

type fogState struct {
	pos       Coord
	torchTier int
	blind     bool
	revealed  map[Coord]struct{}
}

// FogOfWar tracks, per player, which hazards have entered the torch radius.
// The revealed set is monotone: once disclosed, a hazard stays disclosed,
// so repeated boundary crossings never re-emit reveals.
type FogOfWar struct {
	store   *Store
	players map[string]*fogState
}

// NewFogOfWar creates the fog subsystem over one shard's store.
func NewFogOfWar(store *Store) *FogOfWar {
	return &FogOfWar{store: store, players: make(map[string]*fogState)}
}

// AddPlayer enrolls a player and returns the reveals for every hazard
// already inside the torch radius at the spawn position.
func (f *FogOfWar) AddPlayer(id string, pos Coord, torchTier int) []Reveal {
	st := &fogState{pos: pos, torchTier: torchTier, revealed: make(map[Coord]struct{})}
	f.players[id] = st
	return f.revealAround(st, pos)
}

// RemovePlayer drops a player's fog state.
func (f *FogOfWar) RemovePlayer(id string) {
	delete(f.players, id)
}

// MovePlayer updates a player's position and returns reveals for hazards
// newly inside the radius.
func (f *FogOfWar) MovePlayer(id string, newPos Coord) []Reveal {
	st, ok := f.players[id]
	if !ok {
		return nil
	}
	oldPos := st.pos
	st.pos = newPos
	if st.blind {
		return nil
	}

	blocks := f.store.RevealedHazards(newPos, st.torchTier, oldPos)
	return f.emit(st, blocks)
}

// Teleport moves a player without reference to the old position: every
// hazard inside the radius at the destination is considered.
func (f *FogOfWar) Teleport(id string, pos Coord) []Reveal {
	st, ok := f.players[id]
	if !ok {
		return nil
	}
	st.pos = pos
	return f.revealAround(st, pos)
}

// SetTorchTier records a torch upgrade; the next move naturally reveals
// with the larger radius.
func (f *FogOfWar) SetTorchTier(id string, tier int) {
	if st, ok := f.players[id]; ok {
		st.torchTier = tier
	}
}

// SetBlind blanks or restores a player's torch. While blind, nothing new
// is revealed and every hazard masks; already-revealed hazards stay
// revealed.
func (f *FogOfWar) SetBlind(id string, blind bool) {
	if st, ok := f.players[id]; ok {
		st.blind = blind
	}
}

// MaskBlockType hides a hazard type from the player unless the block sits
// inside the current torch radius.
func (f *FogOfWar) MaskBlockType(id string, x, y int, actual game.BlockType) game.BlockType {
	if !actual.IsHazard() {
		return actual
	}
	st, ok := f.players[id]
	if !ok || st.blind {
		return game.BlockUnknown
	}
	if dist(st.pos, Coord{x, y}) > game.TorchRadius(st.torchTier) {
		return game.BlockUnknown
	}
	return actual
}

// Revealed reports whether the player has already seen the coordinate.
func (f *FogOfWar) Revealed(id string, c Coord) bool {
	st, ok := f.players[id]
	if !ok {
		return false
	}
	_, seen := st.revealed[c]
	return seen
}

// revealAround discloses every hazard within the radius of pos, regardless
// of prior position.
func (f *FogOfWar) revealAround(st *fogState, pos Coord) []Reveal {
	if st.blind {
		return nil
	}
	radius := game.TorchRadius(st.torchTier)
	r := int(math.Ceil(radius))

	var blocks []*Block
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			c := Coord{pos.X + dx, pos.Y + dy}
			if c.Y < 0 || dist(pos, c) > radius {
				continue
			}
			if b := f.store.GetBlock(c.X, c.Y); b != nil && b.Type.IsHazard() {
				blocks = append(blocks, b)
			}
		}
	}
	return f.emit(st, blocks)
}

// emit filters already-revealed coordinates and records the rest.
func (f *FogOfWar) emit(st *fogState, blocks []*Block) []Reveal {
	var out []Reveal
	for _, b := range blocks {
		c := Coord{b.X, b.Y}
		if _, seen := st.revealed[c]; seen {
			continue
		}
		st.revealed[c] = struct{}{}
		out = append(out, Reveal{X: b.X, Y: b.Y, Type: b.Type, HP: b.HP, MaxHP: b.MaxHP})
	}
	return out
}
