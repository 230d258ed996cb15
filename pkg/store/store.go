// Package store is the persistence facade: a key/value contract for player
// records and dirty chunk modifications. The in-memory implementation
// serves development and tests; production deployments back it with an
// external store.
package store

import (
	"context"
	"sync"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// CheckpointRecord ties a saved rope checkpoint to the shard it was set on.
type CheckpointRecord struct {
	ShardID string `json:"shardId"`
	Depth   int    `json:"depth"`
}

// InventoryEntry is one persisted inventory slot.
type InventoryEntry struct {
	SlotIndex int           `json:"slotIndex"`
	ItemType  game.ItemType `json:"itemType"`
	Quantity  int           `json:"quantity"`
}

// PlayerRecord is the persisted form of a player.
type PlayerRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Gold        int    `json:"gold"`

	ShovelTier int `json:"shovelTier"`
	HelmetTier int `json:"helmetTier"`
	VestTier   int `json:"vestTier"`
	TorchTier  int `json:"torchTier"`
	RopeTier   int `json:"ropeTier"`

	InventorySlots  int `json:"inventorySlots"`
	InventoryLevel  int `json:"inventoryLevel"`
	MaxDepthReached int `json:"maxDepthReached"`

	TotalBlocksMined int `json:"totalBlocksMined"`
	TotalGoldEarned  int `json:"totalGoldEarned"`
	TotalExplosions  int `json:"totalExplosions"`

	Inventory   []InventoryEntry   `json:"inventory"`
	Checkpoints []CheckpointRecord `json:"checkpoints"`
}

// ChunkRecord is the persisted modification log of one dirty chunk.
type ChunkRecord struct {
	WorldSeed     int64                `json:"worldSeed"`
	ChunkY        int32                `json:"chunkY"`
	Modifications []world.Modification `json:"modifications"`
}

// Store is the persistence contract. Implementations must be safe for
// concurrent use; shards and the gateway both call in.
type Store interface {
	SavePlayer(ctx context.Context, rec *PlayerRecord) error
	// LoadPlayer returns (nil, nil) when no record exists.
	LoadPlayer(ctx context.Context, id string) (*PlayerRecord, error)
	SaveChunk(ctx context.Context, rec *ChunkRecord) error
	LoadChunks(ctx context.Context, worldSeed int64) ([]*ChunkRecord, error)
}

// RecordFromState converts live player state to its persisted form.
func RecordFromState(p *game.PlayerState, shardID string) *PlayerRecord {
	rec := &PlayerRecord{
		ID:               p.ID,
		DisplayName:      p.DisplayName,
		Gold:             p.Gold,
		ShovelTier:       p.Tier(game.SlotShovel),
		HelmetTier:       p.Tier(game.SlotHelmet),
		VestTier:         p.Tier(game.SlotVest),
		TorchTier:        p.Tier(game.SlotTorch),
		RopeTier:         p.Tier(game.SlotRope),
		InventorySlots:   p.BaseSlots(),
		InventoryLevel:   p.InventoryLevel,
		MaxDepthReached:  p.MaxDepthReached,
		TotalBlocksMined: p.TotalBlocksMined,
		TotalGoldEarned:  p.TotalGoldEarned,
		TotalExplosions:  p.TotalExplosions,
	}
	for i, s := range p.Inventory {
		if s.Empty() {
			continue
		}
		rec.Inventory = append(rec.Inventory, InventoryEntry{SlotIndex: i, ItemType: s.Item, Quantity: s.Quantity})
	}
	for _, d := range p.Checkpoints {
		rec.Checkpoints = append(rec.Checkpoints, CheckpointRecord{ShardID: shardID, Depth: d})
	}
	return rec
}

// StateFromRecord restores live player state from its persisted form.
func StateFromRecord(rec *PlayerRecord) *game.PlayerState {
	p := game.NewPlayerState(rec.ID, rec.DisplayName)
	p.Gold = rec.Gold
	p.Equipment[game.SlotShovel] = rec.ShovelTier
	p.Equipment[game.SlotHelmet] = rec.HelmetTier
	p.Equipment[game.SlotVest] = rec.VestTier
	p.Equipment[game.SlotTorch] = rec.TorchTier
	p.Equipment[game.SlotRope] = rec.RopeTier
	p.InventoryLevel = rec.InventoryLevel
	p.MaxDepthReached = rec.MaxDepthReached
	p.TotalBlocksMined = rec.TotalBlocksMined
	p.TotalGoldEarned = rec.TotalGoldEarned
	p.TotalExplosions = rec.TotalExplosions

	slots := rec.InventorySlots
	if slots < game.BaseInventorySlots {
		slots = game.BaseInventorySlots
	}
	p.Inventory = make([]game.InventorySlot, slots)
	for _, e := range rec.Inventory {
		if e.SlotIndex >= 0 && e.SlotIndex < len(p.Inventory) {
			p.Inventory[e.SlotIndex] = game.InventorySlot{Item: e.ItemType, Quantity: e.Quantity}
		}
	}
	for _, c := range rec.Checkpoints {
		p.Checkpoints = append(p.Checkpoints, c.Depth)
	}
	return p
}

type chunkKey struct {
	seed   int64
	chunkY int32
}

// MemoryStore is the development Store: process-local maps behind a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]*PlayerRecord
	chunks  map[chunkKey]*ChunkRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*PlayerRecord),
		chunks:  make(map[chunkKey]*ChunkRecord),
	}
}

// SavePlayer stores a copy of the record.
func (m *MemoryStore) SavePlayer(_ context.Context, rec *PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.Inventory = append([]InventoryEntry(nil), rec.Inventory...)
	cp.Checkpoints = append([]CheckpointRecord(nil), rec.Checkpoints...)
	m.players[rec.ID] = &cp
	return nil
}

// LoadPlayer returns a copy of the stored record, or nil when absent.
func (m *MemoryStore) LoadPlayer(_ context.Context, id string) (*PlayerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.Inventory = append([]InventoryEntry(nil), rec.Inventory...)
	cp.Checkpoints = append([]CheckpointRecord(nil), rec.Checkpoints...)
	return &cp, nil
}

// SaveChunk stores one dirty chunk's modification log.
func (m *MemoryStore) SaveChunk(_ context.Context, rec *ChunkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.Modifications = append([]world.Modification(nil), rec.Modifications...)
	m.chunks[chunkKey{rec.WorldSeed, rec.ChunkY}] = &cp
	return nil
}

// LoadChunks returns every saved chunk of a world.
func (m *MemoryStore) LoadChunks(_ context.Context, worldSeed int64) ([]*ChunkRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ChunkRecord
	for k, rec := range m.chunks {
		if k.seed != worldSeed {
			continue
		}
		cp := *rec
		cp.Modifications = append([]world.Modification(nil), rec.Modifications...)
		out = append(out, &cp)
	}
	return out, nil
}
