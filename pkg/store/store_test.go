package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

func TestPlayerRecordRoundTrip(t *testing.T) {
	p := game.NewPlayerState("p1", "Rusty")
	p.Gold = 420
	p.Equipment[game.SlotShovel] = 3
	p.Equipment[game.SlotTorch] = 5
	p.InventoryLevel = 2
	p.Inventory = make([]game.InventorySlot, game.InventorySlotRows[2])
	p.Inventory[0] = game.InventorySlot{Item: game.ItemGoldOre, Quantity: 7}
	p.Inventory[4] = game.InventorySlot{Item: game.ItemRuby, Quantity: 2}
	p.MaxDepthReached = 312
	p.Checkpoints = []int{50, 200}
	p.TotalBlocksMined = 999

	rec := RecordFromState(p, "shard-1")
	back := StateFromRecord(rec)

	assert.Equal(t, p.Gold, back.Gold)
	assert.Equal(t, p.Equipment, back.Equipment)
	assert.Equal(t, p.InventoryLevel, back.InventoryLevel)
	assert.Equal(t, p.MaxDepthReached, back.MaxDepthReached)
	assert.Equal(t, p.TotalBlocksMined, back.TotalBlocksMined)
	assert.Equal(t, p.Checkpoints, back.Checkpoints)
	assert.Len(t, back.Inventory, game.InventorySlotRows[2])
	assert.Equal(t, p.Inventory[0], back.Inventory[0])
	assert.Equal(t, p.Inventory[4], back.Inventory[4])
}

func TestMemoryStorePlayers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	got, err := m.LoadPlayer(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "absent player loads as nil, nil")

	rec := &PlayerRecord{ID: "p1", DisplayName: "Rusty", Gold: 10}
	require.NoError(t, m.SavePlayer(ctx, rec))

	got, err = m.LoadPlayer(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Gold)

	// The store hands out copies.
	got.Gold = 9999
	again, _ := m.LoadPlayer(ctx, "p1")
	assert.Equal(t, 10, again.Gold)
}

func TestMemoryStoreChunks(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.SaveChunk(ctx, &ChunkRecord{
		WorldSeed: 12345,
		ChunkY:    3,
		Modifications: []world.Modification{
			{X: 1, Y: 100, Type: game.BlockEmpty, HP: 0},
		},
	}))
	require.NoError(t, m.SaveChunk(ctx, &ChunkRecord{WorldSeed: 777, ChunkY: 0}))

	recs, err := m.LoadChunks(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, recs, 1, "chunks filter by world seed")
	assert.Equal(t, int32(3), recs[0].ChunkY)
	assert.Len(t, recs[0].Modifications, 1)
}
