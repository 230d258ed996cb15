package server

import (
	"time"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// chunkFlushTicks spaces out dirty-chunk persistence (every ~10 s at the
// standard tick rate).
const chunkFlushTicks = 100

// Tick is the per-tick housekeeping hook, invoked by the loop after the
// command batch drains: grace expiry, stun and gas timers, drop cleanup,
// periodic chunk flush.
func (s *Shard) Tick(now time.Time) {
	s.expireGrace(now)
	s.tickTimers(now)
	s.expireDrops(now)

	s.tickCount++
	if s.tickCount%chunkFlushTicks == 0 {
		s.flushDirtyChunks()
	}
}

// expireGrace finalizes seats whose disconnect grace ran out.
func (s *Shard) expireGrace(now time.Time) {
	var expired []string
	s.mu.RLock()
	for id, sp := range s.players {
		if !sp.DisconnectedAt.IsZero() && now.Sub(sp.DisconnectedAt) >= game.PlayerDisconnectGrace {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.finalizeRemove(id, true)
	}
}

// tickTimers clears elapsed stun and gas-blindness effects.
func (s *Shard) tickTimers(now time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.players {
		st := sp.State
		if st.IsStunned && !st.StunEnd.After(now) {
			st.IsStunned = false
			s.sendTo(sp, protocol.PlayerStateUpdate{State: st})
		}
		if !st.GasBlindUntil.IsZero() && !st.GasBlindUntil.After(now) {
			st.GasBlindUntil = time.Time{}
			s.fog.SetBlind(st.ID, false)
			// Relight the torch: disclose whatever the player walked past
			// while blinded.
			for _, r := range s.fog.Teleport(st.ID, world.Coord{X: st.X, Y: st.Y}) {
				s.sendTo(sp, revealMsg(r))
			}
			s.sendTo(sp, protocol.PlayerStateUpdate{State: st})
		}
	}
}

// expireDrops removes uncollected drops past their TTL.
func (s *Shard) expireDrops(now time.Time) {
	for id, drop := range s.drops {
		if now.Sub(drop.SpawnedAt) >= game.DropItemTTL {
			delete(s.drops, id)
		}
	}
}
