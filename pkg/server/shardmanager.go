package server

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/store"
)

// ShardManager owns shard lifecycle and the player→shard mapping.
type ShardManager struct {
	clock   clock.Clock
	log     *logrus.Entry
	persist store.Store

	defaultMaxPlayers int

	mu          sync.Mutex
	shards      map[string]*Shard
	byRoomCode  map[string]*Shard
	playerShard map[string]string
}

// NewShardManager creates an empty manager.
func NewShardManager(clk clock.Clock, log *logrus.Entry, persist store.Store, defaultMaxPlayers int) *ShardManager {
	if defaultMaxPlayers <= 0 {
		defaultMaxPlayers = game.DefaultMaxPlayers
	}
	return &ShardManager{
		clock:             clk,
		log:               log,
		persist:           persist,
		defaultMaxPlayers: defaultMaxPlayers,
		shards:            make(map[string]*Shard),
		byRoomCode:        make(map[string]*Shard),
		playerShard:       make(map[string]string),
	}
}

// CreateOptions configures a new shard.
type CreateOptions struct {
	MaxPlayers int
	Private    bool
}

// CreateShard allocates, wires, and starts one shard.
func (m *ShardManager) CreateShard(opts CreateOptions) *Shard {
	if opts.MaxPlayers <= 0 || opts.MaxPlayers > m.defaultMaxPlayers {
		opts.MaxPlayers = m.defaultMaxPlayers
	}

	id := uuid.NewString()
	var roomCode string
	if opts.Private {
		roomCode = m.generateRoomCode()
	}

	shard := NewShard(ShardOptions{
		ID:         id,
		Seed:       randomSeed(),
		MaxPlayers: opts.MaxPlayers,
		RoomCode:   roomCode,
		Persist:    m.persist,
		Clock:      m.clock,
		Logger:     m.log,
		OnEmpty:    m.onShardEmpty,
		OnPlayerRemoved: func(_, playerID string) {
			m.UnbindPlayer(playerID)
		},
	})

	m.mu.Lock()
	m.shards[id] = shard
	if roomCode != "" {
		m.byRoomCode[roomCode] = shard
	}
	m.mu.Unlock()

	shard.Start()
	m.log.WithFields(logrus.Fields{"shard": id, "roomCode": roomCode}).Info("shard created")
	return shard
}

// DestroyShard stops a shard and unlinks every player mapping to it.
func (m *ShardManager) DestroyShard(id string) {
	m.mu.Lock()
	shard, ok := m.shards[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.shards, id)
	if shard.RoomCode != "" {
		delete(m.byRoomCode, shard.RoomCode)
	}
	for pid, sid := range m.playerShard {
		if sid == id {
			delete(m.playerShard, pid)
		}
	}
	m.mu.Unlock()

	shard.Stop()
	m.log.WithField("shard", id).Info("shard destroyed")
}

// onShardEmpty auto-destructs a shard whose last player left.
func (m *ShardManager) onShardEmpty(id string) {
	m.DestroyShard(id)
}

// BindPlayer records the player's shard.
func (m *ShardManager) BindPlayer(playerID, shardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerShard[playerID] = shardID
}

// UnbindPlayer clears the player's mapping.
func (m *ShardManager) UnbindPlayer(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.playerShard, playerID)
}

// ShardForPlayer returns the player's bound shard, if any.
func (m *ShardManager) ShardForPlayer(playerID string) *Shard {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.playerShard[playerID]
	if !ok {
		return nil
	}
	return m.shards[id]
}

// ByRoomCode looks up a private shard.
func (m *ShardManager) ByRoomCode(code string) *Shard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byRoomCode[code]
}

// QuickPlay picks the best active, non-full, non-private shard, preferring
// part-filled rooms, or creates a fresh one.
func (m *ShardManager) QuickPlay() *Shard {
	m.mu.Lock()
	var best *Shard
	bestScore := -1
	for _, s := range m.shards {
		if s.Private() || s.State() != ShardActive || s.IsFull() {
			continue
		}
		score := quickPlayScore(s.PlayerCount())
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	m.mu.Unlock()

	if best != nil {
		return best
	}
	return m.CreateShard(CreateOptions{})
}

// quickPlayScore prefers rooms with company but not crowds.
func quickPlayScore(count int) int {
	switch {
	case count >= 3 && count <= 6:
		return 10
	case count >= 1:
		return 5
	default:
		return 1
	}
}

// RemovePlayerFromShard finalizes a player's removal, e.g. on grace
// expiry detected by the session sweeper.
func (m *ShardManager) RemovePlayerFromShard(playerID string) {
	shard := m.ShardForPlayer(playerID)
	if shard == nil {
		return
	}
	shard.RemovePlayer(playerID)
	m.UnbindPlayer(playerID)
}

// Shards returns a snapshot of all live shards.
func (m *ShardManager) Shards() []*Shard {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Shard, 0, len(m.shards))
	for _, s := range m.shards {
		out = append(out, s)
	}
	return out
}

// StopAll destroys every shard; used on server shutdown.
func (m *ShardManager) StopAll() {
	for _, s := range m.Shards() {
		m.DestroyShard(s.ID)
	}
}

// generateRoomCode draws a human-friendly code over the unambiguous
// alphabet.
func (m *ShardManager) generateRoomCode() string {
	buf := make([]byte, game.RoomCodeLength)
	for {
		rand.Read(buf)
		code := make([]byte, game.RoomCodeLength)
		for i, b := range buf {
			code[i] = game.RoomCodeAlphabet[int(b)%len(game.RoomCodeAlphabet)]
		}
		s := string(code)
		m.mu.Lock()
		_, taken := m.byRoomCode[s]
		m.mu.Unlock()
		if !taken {
			return s
		}
	}
}

func randomSeed() int64 {
	var buf [8]byte
	rand.Read(buf[:])
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
