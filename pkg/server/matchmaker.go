package server

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
)

// Matchmaker applies the join policy: quick-play, solo, private-room
// creation, and join-by-code.
type Matchmaker struct {
	manager *ShardManager
	log     *logrus.Entry
}

// NewMatchmaker creates a matchmaker over the shard manager.
func NewMatchmaker(manager *ShardManager, log *logrus.Entry) *Matchmaker {
	return &Matchmaker{manager: manager, log: log}
}

// QuickPlay joins the best available public shard.
func (m *Matchmaker) QuickPlay(conn Conn, state *game.PlayerState) protocol.MatchmakingResult {
	shard := m.manager.QuickPlay()
	return m.join(shard, conn, state)
}

// PlaySolo creates a single-seat shard.
func (m *Matchmaker) PlaySolo(conn Conn, state *game.PlayerState) protocol.MatchmakingResult {
	shard := m.manager.CreateShard(CreateOptions{MaxPlayers: 1})
	return m.join(shard, conn, state)
}

// CreateParty creates a private room and seats the creator.
func (m *Matchmaker) CreateParty(conn Conn, state *game.PlayerState, maxPlayers int) protocol.MatchmakingResult {
	shard := m.manager.CreateShard(CreateOptions{MaxPlayers: maxPlayers, Private: true})
	return m.join(shard, conn, state)
}

// JoinParty seats the player in an existing private room.
func (m *Matchmaker) JoinParty(conn Conn, state *game.PlayerState, roomCode string) protocol.MatchmakingResult {
	code := strings.ToUpper(strings.TrimSpace(roomCode))
	shard := m.manager.ByRoomCode(code)
	if shard == nil {
		return protocol.MatchmakingResult{Error: "room not found"}
	}
	return m.join(shard, conn, state)
}

func (m *Matchmaker) join(shard *Shard, conn Conn, state *game.PlayerState) protocol.MatchmakingResult {
	if !shard.AddPlayer(conn, state) {
		return protocol.MatchmakingResult{Error: "shard is full"}
	}
	m.manager.BindPlayer(state.ID, shard.ID)
	m.log.WithFields(logrus.Fields{"player": state.ID, "shard": shard.ID}).Info("player matched")
	return protocol.MatchmakingResult{
		Success:  true,
		ShardID:  shard.ID,
		RoomCode: shard.RoomCode,
	}
}
