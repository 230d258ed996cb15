package server

import (
	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// rollEvent rolls the random-event table once for a destroyed block. At
// most one event fires per block, in priority order. Equipment gates can
// swallow negative events; positive events are never gated.
func (s *Shard) rollEvent(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State

	for _, ev := range game.EventPriority {
		if s.eventRNG.Float64() >= game.EventChance(ev) {
			continue
		}

		switch ev {
		case game.EventCaveIn:
			if s.eventRNG.Float64() < game.VestProtection(st.Tier(game.SlotVest)) {
				return nil, nil
			}
			return s.applyCaveIn(sp, x, y)
		case game.EventGasPocket:
			if st.Tier(game.SlotTorch) >= game.TorchGasImmuneTier {
				return nil, nil
			}
			return s.applyGasPocket(sp, x, y)
		case game.EventRockSlide:
			if st.Tier(game.SlotHelmet) >= game.HelmetRockSlideImmuneTier {
				return nil, nil
			}
			return s.applyRockSlide(sp, x, y)
		case game.EventUndergroundSpring:
			return s.applySpring(sp, x, y)
		case game.EventTreasureChest:
			return s.applyTreasureChest(sp, x, y)
		}
	}
	return nil, nil
}

func (s *Shard) applyCaveIn(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	st.Y = maxInt(0, st.Y-game.CaveInPushDistance)
	st.IsOnSurface = st.Y == 0

	var lost []game.ItemType
	for i := 0; i < game.CaveInItemsLost; i++ {
		if it, ok := s.removeRandomItem(st); ok {
			lost = append(lost, it)
		}
	}

	msg := protocol.Event{
		Event:    game.EventCaveIn,
		PlayerID: st.ID,
		X:        x,
		Y:        y,
		Detail: map[string]any{
			"pushedToY": st.Y,
			"itemsLost": lost,
		},
	}

	own := []protocol.Message{msg}
	for _, r := range s.fog.Teleport(st.ID, world.Coord{X: st.X, Y: st.Y}) {
		own = append(own, revealMsg(r))
	}
	peers := []protocol.Message{
		msg,
		protocol.OtherPlayerUpdate{PlayerID: st.ID, X: st.X, Y: st.Y, Action: "idle"},
	}
	return own, peers
}

func (s *Shard) applyGasPocket(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	st.GasBlindUntil = s.clock.Now().Add(game.GasPocketDuration)
	s.fog.SetBlind(st.ID, true)

	msg := protocol.Event{
		Event:    game.EventGasPocket,
		PlayerID: st.ID,
		X:        x,
		Y:        y,
		Detail:   map[string]any{"durationMs": game.GasPocketDuration.Milliseconds()},
	}
	return []protocol.Message{msg}, []protocol.Message{msg}
}

func (s *Shard) applyRockSlide(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	st.RockSlideBlocks = game.RockSlideDurationBlocks

	msg := protocol.Event{
		Event:    game.EventRockSlide,
		PlayerID: st.ID,
		X:        x,
		Y:        y,
		Detail: map[string]any{
			"hardnessBonus": game.RockSlideHardnessBonus,
			"blocks":        game.RockSlideDurationBlocks,
		},
	}
	return []protocol.Message{msg}, []protocol.Message{msg}
}

func (s *Shard) applySpring(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	layer := game.LayerAt(y)

	n := 3 + s.eventRNG.IntN(3)
	drops := make([]protocol.DropInfo, 0, n)
	for i := 0; i < n; i++ {
		item := weightedPick(s.eventRNG, layer.Loot)
		d := s.spawnDrop(item, world.Coord{X: st.X, Y: st.Y})
		drops = append(drops, protocol.DropInfo{ID: d.ID, ItemType: d.Item, X: d.Pos.X, Y: d.Pos.Y})
	}

	msg := protocol.Event{
		Event:    game.EventUndergroundSpring,
		PlayerID: st.ID,
		X:        x,
		Y:        y,
		Detail:   map[string]any{"drops": drops},
	}
	return []protocol.Message{msg}, []protocol.Message{msg}
}

func (s *Shard) applyTreasureChest(sp *ShardPlayer, x, y int) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	layer := game.LayerAt(y)

	var drops []protocol.DropInfo
	d := s.spawnDrop(weightedPick(s.eventRNG, layer.Loot), world.Coord{X: st.X, Y: st.Y})
	drops = append(drops, protocol.DropInfo{ID: d.ID, ItemType: d.Item, X: d.Pos.X, Y: d.Pos.Y})

	// Half the chests carry a bonus from the layer below.
	if s.eventRNG.Float64() < 0.5 {
		below := layer
		if layer.MaxDepth > 0 {
			below = game.LayerAt(layer.MaxDepth)
		}
		d := s.spawnDrop(weightedPick(s.eventRNG, below.Loot), world.Coord{X: st.X, Y: st.Y})
		drops = append(drops, protocol.DropInfo{ID: d.ID, ItemType: d.Item, X: d.Pos.X, Y: d.Pos.Y})
	}

	msg := protocol.Event{
		Event:    game.EventTreasureChest,
		PlayerID: st.ID,
		X:        x,
		Y:        y,
		Detail:   map[string]any{"drops": drops},
	}
	return []protocol.Message{msg}, []protocol.Message{msg}
}

// removeRandomItem takes one unit from a random non-empty slot.
func (s *Shard) removeRandomItem(st *game.PlayerState) (game.ItemType, bool) {
	var occupied []int
	for i, slot := range st.Inventory {
		if !slot.Empty() {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) == 0 {
		return "", false
	}
	idx := occupied[s.eventRNG.IntN(len(occupied))]
	slot := &st.Inventory[idx]
	item := slot.Item
	slot.Quantity--
	if slot.Quantity == 0 {
		*slot = game.InventorySlot{}
	}
	return item, true
}
