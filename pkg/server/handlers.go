package server

import (
	"sort"
	"time"

	"github.com/TheFkingisback/deep-mine/pkg/chat"
	"github.com/TheFkingisback/deep-mine/pkg/economy"
	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// Internal loop commands. They ride the same queue as client commands so
// membership changes serialize with gameplay.
type joinCommand struct{ player *ShardPlayer }
type leaveCommand struct{}
type disconnectCommand struct{}
type reconnectCommand struct {
	conn   Conn
	player *ShardPlayer
}

func (joinCommand) CommandType() string       { return "internal_join" }
func (leaveCommand) CommandType() string      { return "internal_leave" }
func (disconnectCommand) CommandType() string { return "internal_disconnect" }
func (reconnectCommand) CommandType() string  { return "internal_reconnect" }

// HandleCommand processes one queued command on the loop goroutine.
func (s *Shard) HandleCommand(qc QueuedCommand) {
	switch cmd := qc.Cmd.(type) {
	case *joinCommand:
		s.handleJoin(qc.PlayerID, cmd.player)
		return
	case *leaveCommand:
		s.finalizeRemove(qc.PlayerID, true)
		return
	case *disconnectCommand:
		s.handleDisconnect(qc.PlayerID)
		return
	case *reconnectCommand:
		s.handleReconnect(qc.PlayerID, cmd)
		return
	}

	sp := s.player(qc.PlayerID)
	if sp == nil || !sp.DisconnectedAt.IsZero() {
		return
	}

	var own, peers []protocol.Message
	switch cmd := qc.Cmd.(type) {
	case *protocol.Dig:
		own, peers = s.handleDig(sp, cmd)
	case *protocol.Move:
		own, peers = s.handleMove(sp, cmd)
	case *protocol.Sell:
		own, peers = s.handleSell(sp, cmd)
	case *protocol.BuyEquipment:
		own, peers = s.handleBuyEquipment(sp, cmd)
	case *protocol.BuyInventoryUpgrade:
		own, peers = s.handleBuyInventoryUpgrade(sp)
	case *protocol.CollectItem:
		own, peers = s.handleCollect(sp, cmd)
	case *protocol.GoSurface:
		own, peers = s.handleGoSurface(sp)
	case *protocol.SetCheckpoint:
		own, peers = s.handleSetCheckpoint(sp, cmd)
	case *protocol.Descend:
		own, peers = s.handleDescend(sp, cmd)
	case *protocol.Chat:
		own, peers = s.handleChat(sp, cmd)
	default:
		own = []protocol.Message{protocol.Errorf(protocol.ErrUnknownType, "unhandled command %s", qc.Cmd.CommandType())}
	}

	s.sendTo(sp, own...)
	if len(peers) > 0 {
		s.broadcast(qc.PlayerID, peers...)
	}
}

// HandleOverLimit rejects a rate-limited command.
func (s *Shard) HandleOverLimit(qc QueuedCommand) {
	sp := s.player(qc.PlayerID)
	s.sendTo(sp, protocol.Errorf(protocol.ErrRateLimited, "dig rate limit exceeded"))
}

func (s *Shard) handleJoin(playerID string, sp *ShardPlayer) {
	st := sp.State
	pos := world.Coord{X: world.WrapX(st.X), Y: maxInt(st.Y, 0)}
	st.X, st.Y = pos.X, pos.Y

	// Initial chunk, masked for this player's torch.
	torch := st.Tier(game.SlotTorch)
	blocks := s.world.GetChunkForClient(world.ChunkYFor(pos.Y), pos, torch)
	s.sendTo(sp, protocol.WorldChunk{ChunkY: world.ChunkYFor(pos.Y), Blocks: blocks})

	for _, r := range s.fog.AddPlayer(playerID, pos, torch) {
		s.sendTo(sp, revealMsg(r))
	}
	s.sendTo(sp, protocol.PlayerStateUpdate{State: st})

	s.broadcast(playerID, protocol.OtherPlayerJoined{
		PlayerID:    playerID,
		DisplayName: st.DisplayName,
		X:           pos.X,
		Y:           pos.Y,
	})
	s.log.WithField("player", playerID).Info("player joined")
}

func (s *Shard) handleDisconnect(playerID string) {
	sp := s.player(playerID)
	if sp == nil {
		return
	}
	sp.DisconnectedAt = s.clock.Now()
	sp.Conn = nil
	s.log.WithField("player", playerID).Info("player disconnected, grace begins")
}

func (s *Shard) handleReconnect(playerID string, cmd *reconnectCommand) {
	sp := s.player(playerID)
	if sp == nil {
		return
	}
	sp.Conn = cmd.conn
	sp.DisconnectedAt = time.Time{}

	// Resync the rejoining client; peers saw nothing.
	st := sp.State
	pos := world.Coord{X: st.X, Y: st.Y}
	torch := st.Tier(game.SlotTorch)
	blocks := s.world.GetChunkForClient(world.ChunkYFor(st.Y), pos, torch)
	s.sendTo(sp, protocol.WorldChunk{ChunkY: world.ChunkYFor(st.Y), Blocks: blocks})
	s.sendTo(sp, protocol.PlayerStateUpdate{State: st})
	s.log.WithField("player", playerID).Info("player reconnected within grace")
}

// finalizeRemove drops the seat for good. announce controls the peer
// broadcast; reconnect-expiry and explicit removal both announce.
func (s *Shard) finalizeRemove(playerID string, announce bool) {
	s.mu.Lock()
	sp, ok := s.players[playerID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.players, playerID)
	empty := len(s.players) == 0
	s.mu.Unlock()

	s.persistPlayer(sp.State)
	s.fog.RemovePlayer(playerID)
	s.loop.ForgetPlayer(playerID)
	s.chatLimiterForget(playerID)
	if sp.Conn != nil {
		sp.Conn.Close(protocol.CloseGoingAway)
	}

	if announce {
		s.broadcast(playerID, protocol.OtherPlayerLeft{PlayerID: playerID})
	}
	s.log.WithField("player", playerID).Info("player removed")

	if s.onPlayerRemoved != nil {
		s.onPlayerRemoved(s.ID, playerID)
	}
	if empty && s.onEmpty != nil {
		go s.onEmpty(s.ID)
	}
}

func (s *Shard) handleMove(sp *ShardPlayer, cmd *protocol.Move) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	if cmd.Y < 0 {
		cmd.Y = 0
	}
	newPos := world.Coord{X: world.WrapX(cmd.X), Y: cmd.Y}

	oldChunk := world.ChunkYFor(st.Y)
	st.X, st.Y = newPos.X, newPos.Y
	st.IsOnSurface = newPos.Y == 0
	if newPos.Y > st.MaxDepthReached {
		st.MaxDepthReached = newPos.Y
	}

	var own []protocol.Message
	if newChunk := world.ChunkYFor(newPos.Y); newChunk != oldChunk {
		torch := st.Tier(game.SlotTorch)
		own = append(own, protocol.WorldChunk{
			ChunkY: newChunk,
			Blocks: s.world.GetChunkForClient(newChunk, newPos, torch),
		})
	}
	for _, r := range s.fog.MovePlayer(st.ID, newPos) {
		own = append(own, revealMsg(r))
	}

	peers := []protocol.Message{protocol.OtherPlayerUpdate{
		PlayerID: st.ID,
		X:        newPos.X,
		Y:        newPos.Y,
		Action:   "walking",
	}}
	return own, peers
}

func (s *Shard) handleSell(sp *ShardPlayer, cmd *protocol.Sell) ([]protocol.Message, []protocol.Message) {
	res := economy.ProcessSell(sp.State, cmd.Items)
	if !res.Success {
		return []protocol.Message{
			protocol.Errorf(protocol.ErrSellFailed, "%s", res.Reason),
		}, nil
	}
	economy.ApplySell(sp.State, res)
	return []protocol.Message{
		protocol.SellResult{SellResult: res},
		protocol.PlayerStateUpdate{State: sp.State},
	}, nil
}

func (s *Shard) handleBuyEquipment(sp *ShardPlayer, cmd *protocol.BuyEquipment) ([]protocol.Message, []protocol.Message) {
	res := economy.ProcessEquipmentPurchase(sp.State, cmd.Slot)
	if !res.Success {
		return []protocol.Message{protocol.BuyResult{Equipment: &res}}, nil
	}
	economy.ApplyEquipmentPurchase(sp.State, res)
	if res.Slot == game.SlotTorch {
		s.fog.SetTorchTier(sp.State.ID, res.NewTier)
	}
	return []protocol.Message{
		protocol.BuyResult{Equipment: &res},
		protocol.PlayerStateUpdate{State: sp.State},
	}, nil
}

func (s *Shard) handleBuyInventoryUpgrade(sp *ShardPlayer) ([]protocol.Message, []protocol.Message) {
	res := economy.ProcessInventoryUpgrade(sp.State)
	if !res.Success {
		return []protocol.Message{protocol.BuyResult{Inventory: &res}}, nil
	}
	economy.ApplyInventoryUpgrade(sp.State, res)
	return []protocol.Message{
		protocol.BuyResult{Inventory: &res},
		protocol.PlayerStateUpdate{State: sp.State},
	}, nil
}

// collectRange is how far (Chebyshev) a player can reach a drop.
const collectRange = 3

func (s *Shard) handleCollect(sp *ShardPlayer, cmd *protocol.CollectItem) ([]protocol.Message, []protocol.Message) {
	drop, ok := s.drops[cmd.ItemID]
	if !ok || drop.CollectedBy != "" {
		return []protocol.Message{protocol.CollectResult{
			ItemID: cmd.ItemID, Reason: "item gone",
		}}, nil
	}
	st := sp.State
	if chebyshev(st.X, st.Y, drop.Pos.X, drop.Pos.Y) > collectRange {
		return []protocol.Message{protocol.CollectResult{
			ItemID: cmd.ItemID, Reason: "too far away",
		}}, nil
	}
	if !st.AddItem(drop.Item, 1) {
		return []protocol.Message{protocol.InventoryFull{ItemID: cmd.ItemID}}, nil
	}

	drop.CollectedBy = st.ID
	delete(s.drops, drop.ID)
	return []protocol.Message{
		protocol.CollectResult{Success: true, ItemID: drop.ID, ItemType: drop.Item},
		protocol.PlayerStateUpdate{State: st},
	}, nil
}

func (s *Shard) handleGoSurface(sp *ShardPlayer) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	st.Y = 0
	st.IsOnSurface = true

	pos := world.Coord{X: st.X, Y: 0}
	var own []protocol.Message
	own = append(own, protocol.WorldChunk{
		ChunkY: 0,
		Blocks: s.world.GetChunkForClient(0, pos, st.Tier(game.SlotTorch)),
	})
	for _, r := range s.fog.Teleport(st.ID, pos) {
		own = append(own, revealMsg(r))
	}
	own = append(own, protocol.PlayerStateUpdate{State: st})

	peers := []protocol.Message{protocol.OtherPlayerUpdate{
		PlayerID: st.ID, X: st.X, Y: 0, Action: "walking",
	}}
	return own, peers
}

func (s *Shard) handleSetCheckpoint(sp *ShardPlayer, cmd *protocol.SetCheckpoint) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	depth := cmd.Depth
	if depth < 0 || depth > st.MaxDepthReached || depth > game.HelmetMaxDepth(st.Tier(game.SlotHelmet)) {
		return []protocol.Message{protocol.Errorf(protocol.ErrDepthLimit, "checkpoint depth %d out of range", depth)}, nil
	}

	for _, d := range st.Checkpoints {
		if d == depth {
			return []protocol.Message{protocol.PlayerStateUpdate{State: st}}, nil
		}
	}
	st.Checkpoints = append(st.Checkpoints, depth)
	sort.Ints(st.Checkpoints)

	// Over capacity, the shallowest checkpoint gives way.
	if limit := game.RopeMaxCheckpoints(st.Tier(game.SlotRope)); len(st.Checkpoints) > limit {
		st.Checkpoints = st.Checkpoints[len(st.Checkpoints)-limit:]
	}
	return []protocol.Message{protocol.PlayerStateUpdate{State: st}}, nil
}

func (s *Shard) handleDescend(sp *ShardPlayer, cmd *protocol.Descend) ([]protocol.Message, []protocol.Message) {
	st := sp.State
	if len(st.Checkpoints) == 0 {
		return []protocol.Message{protocol.Errorf(protocol.ErrNoBlock, "no checkpoints set")}, nil
	}

	target := st.Checkpoints[len(st.Checkpoints)-1]
	if cmd.Checkpoint != nil {
		target = -1
		for _, d := range st.Checkpoints {
			if d == *cmd.Checkpoint {
				target = d
				break
			}
		}
		if target < 0 {
			return []protocol.Message{protocol.Errorf(protocol.ErrNoBlock, "unknown checkpoint")}, nil
		}
	}
	if target > game.HelmetMaxDepth(st.Tier(game.SlotHelmet)) {
		return []protocol.Message{protocol.Errorf(protocol.ErrDepthLimit, "checkpoint below helmet depth limit")}, nil
	}

	st.Y = target
	st.IsOnSurface = target == 0
	pos := world.Coord{X: st.X, Y: target}

	var own []protocol.Message
	chunkY := world.ChunkYFor(target)
	own = append(own, protocol.WorldChunk{
		ChunkY: chunkY,
		Blocks: s.world.GetChunkForClient(chunkY, pos, st.Tier(game.SlotTorch)),
	})
	for _, r := range s.fog.Teleport(st.ID, pos) {
		own = append(own, revealMsg(r))
	}
	own = append(own, protocol.PlayerStateUpdate{State: st})

	peers := []protocol.Message{protocol.OtherPlayerUpdate{
		PlayerID: st.ID, X: st.X, Y: target, Action: "walking",
	}}
	return own, peers
}

func (s *Shard) handleChat(sp *ShardPlayer, cmd *protocol.Chat) ([]protocol.Message, []protocol.Message) {
	msg, ok := chat.Sanitize(cmd.Message)
	if !ok {
		return []protocol.Message{protocol.Errorf(protocol.ErrInvalidMessage, "empty chat message")}, nil
	}
	if !s.chatLimit.Allow(sp.State.ID) {
		return []protocol.Message{protocol.Errorf(protocol.ErrChatRateLimit, "chat rate limit exceeded")}, nil
	}

	frame := protocol.ChatMessage{
		PlayerID:    sp.State.ID,
		DisplayName: sp.State.DisplayName,
		Message:     msg,
	}
	return []protocol.Message{frame}, []protocol.Message{frame}
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx := absInt(x1 - x2)
	dy := absInt(y1 - y2)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func revealMsg(r world.Reveal) protocol.RevealBlock {
	return protocol.RevealBlock{X: r.X, Y: r.Y, BlockType: r.Type, HP: r.HP, MaxHP: r.MaxHP}
}
