package server

import (
	"encoding/json"
	"net/http"
	"sort"
)

// ShardStats is one shard's row in the stats aggregation.
type ShardStats struct {
	ID      string     `json:"id"`
	State   ShardState `json:"state"`
	Players int        `json:"players"`
	Private bool       `json:"private"`
	TopGold []GoldRow  `json:"topGold,omitempty"`
}

// GoldRow is one leaderboard entry.
type GoldRow struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Gold        int    `json:"gold"`
}

// StatsSnapshot summarizes one shard for the aggregator.
func (s *Shard) StatsSnapshot() ShardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := ShardStats{
		ID:      s.ID,
		State:   s.state,
		Players: len(s.players),
		Private: s.RoomCode != "",
	}
	for _, sp := range s.players {
		st.TopGold = append(st.TopGold, GoldRow{
			PlayerID:    sp.State.ID,
			DisplayName: sp.State.DisplayName,
			Gold:        sp.State.Gold,
		})
	}
	sort.Slice(st.TopGold, func(i, j int) bool { return st.TopGold[i].Gold > st.TopGold[j].Gold })
	return st
}

// handleStats is the thin aggregator over per-shard state: player counts
// and gold standings, read-only.
func (g *Gateway) handleStats(w http.ResponseWriter, _ *http.Request) {
	shards := g.manager.Shards()
	out := struct {
		Shards  []ShardStats `json:"shards"`
		Players int          `json:"players"`
	}{Shards: make([]ShardStats, 0, len(shards))}

	for _, s := range shards {
		snap := s.StatsSnapshot()
		out.Players += snap.Players
		out.Shards = append(out.Shards, snap)
	}
	sort.Slice(out.Shards, func(i, j int) bool { return out.Shards[i].ID < out.Shards[j].ID })

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
