package server

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/rng"
	"github.com/TheFkingisback/deep-mine/pkg/store"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// ShardState is the lifecycle phase of a shard.
type ShardState string

const (
	ShardWaiting ShardState = "waiting"
	ShardActive  ShardState = "active"
	ShardClosing ShardState = "closing"
)

// ShardPlayer is one seat on a shard: authoritative state plus the live
// connection, if any.
type ShardPlayer struct {
	State          *game.PlayerState
	Conn           Conn
	DisconnectedAt time.Time // zero while connected
}

// DropItem is a collectible spawned by a destroyed block. Owned by the
// shard that spawned it.
type DropItem struct {
	ID          string
	Item        game.ItemType
	Pos         world.Coord
	SpawnedAt   time.Time
	CollectedBy string
}

// Shard is one isolated simulation: a world, its players, fog-of-war, and
// the loop that drives them. All authoritative mutation happens on the
// loop goroutine; the gateway only enqueues.
type Shard struct {
	ID         string
	Seed       int64
	MaxPlayers int
	RoomCode   string

	clock   clock.Clock
	log     *logrus.Entry
	persist store.Store

	world     *world.Store
	fog       *world.FogOfWar
	dig       *DigValidator
	loop      *GameLoop
	chatLimit *slidingWindow

	lootRNG   *rng.Stream
	eventRNG  *rng.Stream
	jitterRNG *rng.Stream

	// mu guards players and state for cross-context reads (matchmaker
	// capacity checks); everything else is loop-owned.
	mu      sync.RWMutex
	state   ShardState
	players map[string]*ShardPlayer

	drops     map[string]*DropItem
	tickCount uint64

	// onEmpty fires (off the loop) when the last player leaves;
	// onPlayerRemoved fires for every finalized removal.
	onEmpty         func(shardID string)
	onPlayerRemoved func(shardID, playerID string)
}

// ShardOptions configures a new shard.
type ShardOptions struct {
	ID         string
	Seed       int64
	MaxPlayers int
	RoomCode   string
	Persist    store.Store
	Clock      clock.Clock
	Logger     *logrus.Entry

	OnEmpty         func(shardID string)
	OnPlayerRemoved func(shardID, playerID string)
}

// NewShard wires one shard and its subsystems. Call Start to begin
// ticking.
func NewShard(opts ShardOptions) *Shard {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = game.DefaultMaxPlayers
	}
	log := opts.Logger.WithField("shard", opts.ID)

	s := &Shard{
		ID:              opts.ID,
		Seed:            opts.Seed,
		MaxPlayers:      opts.MaxPlayers,
		RoomCode:        opts.RoomCode,
		clock:           opts.Clock,
		log:             log,
		persist:         opts.Persist,
		world:           world.NewStore(opts.Seed, opts.Clock, log),
		lootRNG:         rng.ForLoot(opts.Seed),
		eventRNG:        rng.ForEvents(opts.Seed),
		jitterRNG:       rng.ForJitter(opts.Seed),
		state:           ShardWaiting,
		players:         make(map[string]*ShardPlayer),
		drops:           make(map[string]*DropItem),
		onEmpty:         opts.OnEmpty,
		onPlayerRemoved: opts.OnPlayerRemoved,
	}
	s.fog = world.NewFogOfWar(s.world)
	s.dig = &DigValidator{World: s.world, Clock: opts.Clock}
	s.loop = NewGameLoop(opts.Clock, log, s)
	s.loop.onFatal = s.fatal
	s.chatLimit = newSlidingWindow(opts.Clock, game.ChatRateLimit, game.ChatRateWindow)

	// Replay saved chunk modifications over freshly generated terrain.
	if opts.Persist != nil {
		if recs, err := opts.Persist.LoadChunks(context.Background(), opts.Seed); err == nil {
			for _, rec := range recs {
				s.world.ApplyModifications(rec.ChunkY, rec.Modifications)
			}
			s.world.MarkChunksSaved(s.world.DirtyChunks())
		}
	}
	return s
}

// Start begins the tick loop.
func (s *Shard) Start() {
	s.mu.Lock()
	s.state = ShardActive
	s.mu.Unlock()
	s.loop.Start()
	s.log.WithField("seed", s.Seed).Info("shard started")
}

// Stop halts the loop, flushes dirty chunks and player records, and closes
// every connection.
func (s *Shard) Stop() {
	s.mu.Lock()
	s.state = ShardClosing
	s.mu.Unlock()

	s.loop.Stop()
	s.flushDirtyChunks()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.players {
		s.persistPlayer(sp.State)
		if sp.Conn != nil {
			sp.Conn.Close(protocol.CloseGoingAway)
		}
	}
	s.players = make(map[string]*ShardPlayer)
	s.log.Info("shard stopped")
}

// State returns the lifecycle phase.
func (s *Shard) State() ShardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// PlayerCount returns the number of occupied seats, connected or in grace.
func (s *Shard) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// IsFull reports whether another player can join.
func (s *Shard) IsFull() bool {
	return s.PlayerCount() >= s.MaxPlayers
}

// Private reports whether the shard is a code-gated room.
func (s *Shard) Private() bool {
	return s.RoomCode != ""
}

// AddPlayer reserves a seat and schedules enrollment on the loop. The
// initial chunk, reveals, and join broadcast are emitted from the tick
// that processes the join.
func (s *Shard) AddPlayer(conn Conn, state *game.PlayerState) bool {
	s.mu.Lock()
	if s.state != ShardActive && s.state != ShardWaiting {
		s.mu.Unlock()
		return false
	}
	if len(s.players) >= s.MaxPlayers {
		s.mu.Unlock()
		return false
	}
	sp := &ShardPlayer{State: state, Conn: conn}
	s.players[state.ID] = sp
	s.mu.Unlock()

	s.loop.Enqueue(QueuedCommand{PlayerID: state.ID, Cmd: &joinCommand{player: sp}})
	return true
}

// RemovePlayer schedules the player's final removal on the loop.
func (s *Shard) RemovePlayer(playerID string) {
	s.loop.Enqueue(QueuedCommand{PlayerID: playerID, Cmd: &leaveCommand{}})
}

// OnPlayerDisconnect marks the seat as in grace; the tick hook finalizes
// removal after game.PlayerDisconnectGrace.
func (s *Shard) OnPlayerDisconnect(playerID string) {
	s.loop.Enqueue(QueuedCommand{PlayerID: playerID, Cmd: &disconnectCommand{}})
}

// OnPlayerReconnect rebinds a connection to a seat still in grace. Peers
// are not notified; the player never visibly left. Returns false when the
// seat is gone.
func (s *Shard) OnPlayerReconnect(playerID string, conn Conn) bool {
	s.mu.RLock()
	sp, ok := s.players[playerID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	s.loop.Enqueue(QueuedCommand{PlayerID: playerID, Cmd: &reconnectCommand{conn: conn, player: sp}})
	return true
}

// EnqueueMessage forwards a client command to the loop. Returns false when
// the queue is saturated.
func (s *Shard) EnqueueMessage(playerID string, cmd protocol.Command) bool {
	return s.loop.Enqueue(QueuedCommand{PlayerID: playerID, Cmd: cmd})
}

// player returns the seat for a player id, loop context only.
func (s *Shard) player(id string) *ShardPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[id]
}

// sendTo delivers messages to one player's connection, if live.
func (s *Shard) sendTo(sp *ShardPlayer, msgs ...protocol.Message) {
	if sp == nil || sp.Conn == nil {
		return
	}
	for _, m := range msgs {
		sp.Conn.Send(m)
	}
}

// broadcast delivers messages to every connected player except the one
// named by exclude (empty string excludes nobody).
func (s *Shard) broadcast(exclude string, msgs ...protocol.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, sp := range s.players {
		if id == exclude || sp.Conn == nil {
			continue
		}
		for _, m := range msgs {
			sp.Conn.Send(m)
		}
	}
}

// fatal handles an unrecoverable tick fault: players are told, their
// connections close with 1011, and the shard is torn down.
func (s *Shard) fatal(cause any) {
	s.mu.Lock()
	if s.state == ShardClosing {
		s.mu.Unlock()
		return
	}
	s.state = ShardClosing
	conns := make([]Conn, 0, len(s.players))
	for _, sp := range s.players {
		if sp.Conn != nil {
			conns = append(conns, sp.Conn)
		}
	}
	s.mu.Unlock()

	s.log.WithField("cause", cause).Error("shard fault, closing")
	for _, c := range conns {
		c.Send(protocol.Errorf(protocol.ErrShardFault, "shard encountered an unrecoverable fault"))
		c.Close(protocol.CloseInternalError)
	}
	if s.onEmpty != nil {
		go s.onEmpty(s.ID)
	}
}

func (s *Shard) chatLimiterForget(playerID string) {
	s.chatLimit.Forget(playerID)
}

// persistPlayer writes the player's record through the persistence facade.
func (s *Shard) persistPlayer(state *game.PlayerState) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SavePlayer(context.Background(), store.RecordFromState(state, s.ID)); err != nil {
		s.log.WithError(err).WithField("player", state.ID).Warn("persist player failed")
	}
}

// flushDirtyChunks saves every dirty chunk's modification log.
func (s *Shard) flushDirtyChunks() {
	if s.persist == nil {
		return
	}
	dirty := s.world.DirtyChunks()
	var saved []int32
	for _, chunkY := range dirty {
		rec := &store.ChunkRecord{
			WorldSeed:     s.Seed,
			ChunkY:        chunkY,
			Modifications: s.world.ChunkModifications(chunkY),
		}
		if err := s.persist.SaveChunk(context.Background(), rec); err != nil {
			s.log.WithError(err).WithField("chunkY", chunkY).Warn("persist chunk failed")
			continue
		}
		saved = append(saved, chunkY)
	}
	s.world.MarkChunksSaved(saved)
}
