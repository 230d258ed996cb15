package world

import (
	"math"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// ClientBlock is one block as sent to a client: the fog-of-war mask has
// already been applied to the type.
type ClientBlock struct {
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Type  game.BlockType `json:"type"`
	HP    float64        `json:"hp"`
	MaxHP float64        `json:"maxHp"`
}

// DamageResult reports the outcome of damaging a block.
type DamageResult struct {
	Destroyed   bool
	RemainingHP float64
}

// Store owns the terrain of one shard: a bounded cache of generated chunks
// plus their local modifications. It is single-writer; all access happens
// on the shard's loop.
type Store struct {
	seed  int64
	clock clock.Clock
	log   *logrus.Entry

	// cache holds clean chunks with LRU eviction; dirty chunks displaced
	// from it are pinned until saved.
	cache  *lru.Cache[int32, *ChunkRecord]
	pinned map[int32]*ChunkRecord
}

// NewStore creates a store for the given world seed.
func NewStore(seed int64, clk clock.Clock, log *logrus.Entry) *Store {
	s := &Store{
		seed:   seed,
		clock:  clk,
		log:    log,
		pinned: make(map[int32]*ChunkRecord),
	}
	cache, _ := lru.NewWithEvict[int32, *ChunkRecord](game.MaxLoadedChunks, s.onEvict)
	s.cache = cache
	return s
}

// Seed returns the world seed.
func (s *Store) Seed() int64 { return s.seed }

func (s *Store) onEvict(chunkY int32, rec *ChunkRecord) {
	if rec.Dirty {
		// Dirty chunks survive eviction until MarkChunksSaved.
		s.pinned[chunkY] = rec
		return
	}
	s.log.WithField("chunkY", chunkY).Debug("evicted chunk")
}

// chunk returns the chunk row, generating it on first access.
func (s *Store) chunk(chunkY int32) *ChunkRecord {
	if rec, ok := s.cache.Get(chunkY); ok {
		rec.LastAccessed = s.clock.Now()
		return rec
	}
	if rec, ok := s.pinned[chunkY]; ok {
		rec.LastAccessed = s.clock.Now()
		return rec
	}
	rec := generateChunk(s.seed, chunkY)
	rec.LastAccessed = s.clock.Now()
	s.cache.Add(chunkY, rec)
	s.log.WithField("chunkY", chunkY).Debug("generated chunk")
	return rec
}

// GetBlock returns the current block at (x, y), generating the containing
// chunk if needed. X wraps; negative depths return nil.
func (s *Store) GetBlock(x, y int) *Block {
	if y < 0 {
		return nil
	}
	x = WrapX(x)
	rec := s.chunk(ChunkYFor(y))
	localY := y - int(rec.ChunkY)*game.ChunkHeight
	return &rec.Blocks[blockIndex(x, localY)]
}

// DamageBlock subtracts damage from the block at (x, y). Any damage records a
// modification and marks the chunk dirty; a block reaching zero hp becomes
// empty.
func (s *Store) DamageBlock(x, y int, damage float64) DamageResult {
	b := s.GetBlock(x, y)
	if b == nil || !b.Type.IsSolid() {
		return DamageResult{}
	}

	b.HP -= damage
	rec := s.chunk(ChunkYFor(y))
	if b.HP <= 0 {
		b.HP = 0
		b.Type = game.BlockEmpty
		rec.recordMod(b.X, y, game.BlockEmpty, 0)
		return DamageResult{Destroyed: true}
	}
	rec.recordMod(b.X, y, b.Type, b.HP)
	return DamageResult{RemainingHP: b.HP}
}

// DestroyBlock unconditionally empties the block at (x, y).
func (s *Store) DestroyBlock(x, y int) {
	b := s.GetBlock(x, y)
	if b == nil || b.Type == game.BlockEmpty {
		return
	}
	b.Type = game.BlockEmpty
	b.HP = 0
	s.chunk(ChunkYFor(y)).recordMod(b.X, y, game.BlockEmpty, 0)
}

// GetChunkForClient emits every non-empty block of a chunk row with hazard
// types outside the player's torch radius masked as unknown.
func (s *Store) GetChunkForClient(chunkY int32, playerPos Coord, torchTier int) []ClientBlock {
	if chunkY < 0 {
		return nil
	}
	rec := s.chunk(chunkY)
	radius := game.TorchRadius(torchTier)

	out := make([]ClientBlock, 0, len(rec.Blocks)/2)
	for i := range rec.Blocks {
		b := &rec.Blocks[i]
		if b.Type == game.BlockEmpty {
			continue
		}
		t := b.Type
		if t.IsHazard() && dist(playerPos, Coord{b.X, b.Y}) > radius {
			t = game.BlockUnknown
		}
		out = append(out, ClientBlock{X: b.X, Y: b.Y, Type: t, HP: b.HP, MaxHP: b.MaxHP})
	}
	return out
}

// RevealedHazards returns every hazard block within torch radius of newPos
// that was strictly outside the radius of oldPos.
func (s *Store) RevealedHazards(newPos Coord, torchTier int, oldPos Coord) []*Block {
	radius := game.TorchRadius(torchTier)
	r := int(math.Ceil(radius))

	var out []*Block
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			c := Coord{newPos.X + dx, newPos.Y + dy}
			if c.Y < 0 {
				continue
			}
			if dist(newPos, c) > radius || dist(oldPos, c) <= radius {
				continue
			}
			if b := s.GetBlock(c.X, c.Y); b != nil && b.Type.IsHazard() {
				out = append(out, b)
			}
		}
	}
	return out
}

// DirtyChunks returns the rows whose modifications have not been saved.
func (s *Store) DirtyChunks() []int32 {
	var out []int32
	for _, chunkY := range s.cache.Keys() {
		if rec, ok := s.cache.Peek(chunkY); ok && rec.Dirty {
			out = append(out, chunkY)
		}
	}
	for chunkY := range s.pinned {
		out = append(out, chunkY)
	}
	return out
}

// ChunkModifications returns the modification log of one row, or nil when
// the row is not loaded.
func (s *Store) ChunkModifications(chunkY int32) []Modification {
	if rec, ok := s.cache.Peek(chunkY); ok {
		return rec.Modifications()
	}
	if rec, ok := s.pinned[chunkY]; ok {
		return rec.Modifications()
	}
	return nil
}

// MarkChunksSaved clears the dirty flag of the given rows. Pinned rows
// rejoin the LRU cache.
func (s *Store) MarkChunksSaved(chunkYs []int32) {
	for _, chunkY := range chunkYs {
		if rec, ok := s.cache.Peek(chunkY); ok {
			rec.Dirty = false
			continue
		}
		if rec, ok := s.pinned[chunkY]; ok {
			rec.Dirty = false
			delete(s.pinned, chunkY)
			s.cache.Add(chunkY, rec)
		}
	}
}

// ApplyModifications replays persisted modifications over freshly
// generated terrain, reestablishing a saved chunk's state.
func (s *Store) ApplyModifications(chunkY int32, mods []Modification) {
	rec := s.chunk(chunkY)
	for _, m := range mods {
		x := WrapX(m.X)
		localY := m.Y - int(chunkY)*game.ChunkHeight
		if localY < 0 || localY >= game.ChunkHeight {
			continue
		}
		b := &rec.Blocks[blockIndex(x, localY)]
		b.Type = m.Type
		b.HP = m.HP
		rec.mods[Coord{x, m.Y}] = m
	}
}

// LoadedChunks returns how many rows are currently resident.
func (s *Store) LoadedChunks() int {
	return s.cache.Len() + len(s.pinned)
}

func dist(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
