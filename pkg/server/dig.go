package server

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/TheFkingisback/deep-mine/pkg/economy"
	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// DigValidator enforces the preconditions of a dig: stun, adjacency, depth
// cap, and block presence.
type DigValidator struct {
	World *world.Store
	Clock clock.Clock
}

// Validate checks a dig request against the player's state. On rejection
// the returned code names the reason.
func (v *DigValidator) Validate(p *game.PlayerState, x, y int) (*world.Block, protocol.ErrorCode, bool) {
	if p.IsStunned && p.StunEnd.After(v.Clock.Now()) {
		return nil, protocol.ErrStunned, false
	}
	if wrappedDelta(x, p.X) > 1 || absInt(y-p.Y) > 1 {
		return nil, protocol.ErrNotAdjacent, false
	}
	if y > game.HelmetMaxDepth(p.Tier(game.SlotHelmet)) {
		return nil, protocol.ErrDepthLimit, false
	}
	b := v.World.GetBlock(x, y)
	if b == nil || !b.Type.IsSolid() {
		return nil, protocol.ErrNoBlock, false
	}
	return b, "", true
}

// wrappedDelta is the horizontal distance across the world seam.
func wrappedDelta(x1, x2 int) int {
	d := absInt(world.WrapX(x1) - world.WrapX(x2))
	if alt := game.ChunkWidth - d; alt < d {
		return alt
	}
	return d
}

// explosionHalo is the pre-scan radius snapshotted around a detonating
// hazard for the chain engine.
const explosionHalo = 5

func (s *Shard) handleDig(sp *ShardPlayer, cmd *protocol.Dig) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	x, y := world.WrapX(cmd.X), cmd.Y

	b, code, ok := s.dig.Validate(st, x, y)
	if !ok {
		return []protocol.Message{protocol.Errorf(code, "dig rejected")}, nil
	}

	if b.Type == game.BlockTNT {
		return s.explode(sp, world.Coord{X: x, Y: y})
	}

	damage := game.ShovelDamage(st.Tier(game.SlotShovel))
	if st.RockSlideBlocks > 0 {
		// Rock slide debris hardens blocks against the shovel.
		damage -= game.RockSlideHardnessBonus
		if damage < 0.5 {
			damage = 0.5
		}
	}

	res := s.world.DamageBlock(x, y, damage)
	if !res.Destroyed {
		upd := protocol.BlockUpdate{X: x, Y: y, NewHP: res.RemainingHP, MaxHP: b.MaxHP, Actor: st.ID}
		return []protocol.Message{upd}, []protocol.Message{upd}
	}

	if st.RockSlideBlocks > 0 {
		st.RockSlideBlocks--
	}
	st.TotalBlocksMined++

	destroyed := protocol.BlockDestroyed{X: x, Y: y, Actor: st.ID}
	if drop := s.rollLoot(world.Coord{X: x, Y: y}); drop != nil {
		destroyed.Drop = &protocol.DropInfo{ID: drop.ID, ItemType: drop.Item, X: drop.Pos.X, Y: drop.Pos.Y}
	}

	own := []protocol.Message{destroyed}
	peers := []protocol.Message{destroyed}

	evOwn, evPeers := s.rollEvent(sp, x, y)
	own = append(own, evOwn...)
	peers = append(peers, evPeers...)

	own = append(own, protocol.PlayerStateUpdate{State: st})
	return own, peers
}

// rollLoot consumes the loot stream for one destroyed block and spawns a
// drop when the layer's table pays out.
func (s *Shard) rollLoot(pos world.Coord) *DropItem {
	layer := game.LayerAt(pos.Y)
	if s.lootRNG.Float64() >= layer.DropChance {
		return nil
	}
	item := weightedPick(s.lootRNG, layer.Loot)
	return s.spawnDrop(item, pos)
}

// spawnDrop registers a drop near the given position with slight jitter.
func (s *Shard) spawnDrop(item game.ItemType, pos world.Coord) *DropItem {
	drop := &DropItem{
		ID:   uuid.NewString(),
		Item: item,
		Pos: world.Coord{
			X: world.WrapX(pos.X + s.jitterRNG.IntN(3) - 1),
			Y: pos.Y,
		},
		SpawnedAt: s.clock.Now(),
	}
	s.drops[drop.ID] = drop
	return drop
}

func weightedPick(r interface{ Float64() float64 }, table []game.LootEntry) game.ItemType {
	total := 0
	for _, e := range table {
		total += e.Weight
	}
	roll := int(r.Float64() * float64(total))
	for _, e := range table {
		roll -= e.Weight
		if roll < 0 {
			return e.Item
		}
	}
	return table[len(table)-1].Item
}

// explode runs the chain engine from a dug hazard and applies the fallout:
// destruction, penalty, stun, and launch.
func (s *Shard) explode(sp *ShardPlayer, center world.Coord) ([]protocol.Message, []protocol.Message) {
	st := sp.State

	view := world.Snapshot(s.world, center, explosionHalo)
	res := world.ComputeChain(view, center)

	for _, c := range res.Destroyed {
		s.world.DestroyBlock(c.X, c.Y)
	}

	goldLost, newGold := economy.ApplyTNTPenalty(st.Gold, center.Y)
	st.Gold = newGold
	st.TotalExplosions++

	launchY := res.LaunchY(st.Y)
	st.Y = launchY
	st.IsOnSurface = launchY == 0
	st.IsStunned = true
	st.StunEnd = s.clock.Now().Add(game.StunDuration)

	// Chain tail: every detonation after the initiating one, with delays.
	var chain []protocol.ChainLink
	for _, det := range res.Detonations[1:] {
		chain = append(chain, protocol.ChainLink{
			X:         det.Center.X,
			Y:         det.Center.Y,
			Destroyed: det.Destroyed,
			DelayMs:   det.Delay.Milliseconds(),
		})
	}

	boom := protocol.Explosion{
		Center:          center,
		Radius:          1,
		DestroyedBlocks: res.Destroyed,
		Chain:           chain,
		GoldPenalty:     goldLost,
		AffectedPlayer:  st.ID,
		PlayerLaunchToY: launchY,
	}

	own := []protocol.Message{boom}
	for _, r := range s.fog.Teleport(st.ID, world.Coord{X: st.X, Y: launchY}) {
		own = append(own, revealMsg(r))
	}
	own = append(own, protocol.PlayerStateUpdate{State: st})

	peers := []protocol.Message{
		boom,
		protocol.OtherPlayerUpdate{PlayerID: st.ID, X: st.X, Y: launchY, Action: "idle"},
	}
	return own, peers
}
