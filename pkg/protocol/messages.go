package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/TheFkingisback/deep-mine/pkg/economy"
	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/world"
)

// Message is one server→client frame. Variants are discriminated on the
// wire by the "type" field, injected by EncodeMessage.
type Message interface {
	MessageType() string
}

// Message type tags.
const (
	MsgWelcome           = "welcome"
	MsgMatchmakingResult = "matchmaking_result"
	MsgWorldChunk        = "world_chunk"
	MsgRevealBlock       = "reveal_block"
	MsgBlockUpdate       = "block_update"
	MsgBlockDestroyed    = "block_destroyed"
	MsgExplosion         = "explosion"
	MsgPlayerStateUpdate = "player_state_update"
	MsgSellResult        = "sell_result"
	MsgBuyResult         = "buy_result"
	MsgCollectResult     = "collect_result"
	MsgInventoryFull     = "inventory_full"
	MsgEvent             = "event"
	MsgOtherPlayerJoined = "other_player_joined"
	MsgOtherPlayerLeft   = "other_player_left"
	MsgOtherPlayerUpdate = "other_player_update"
	MsgChatMessage       = "chat_message"
	MsgError             = "error"
)

// Welcome confirms authentication and carries the player's state snapshot
// plus a fresh token for guests.
type Welcome struct {
	PlayerID    string            `json:"playerId"`
	DisplayName string            `json:"displayName"`
	Token       string            `json:"token,omitempty"`
	State       *game.PlayerState `json:"state"`
}

// MatchmakingResult reports the outcome of a matchmaking command.
type MatchmakingResult struct {
	Success  bool   `json:"success"`
	ShardID  string `json:"shardId,omitempty"`
	RoomCode string `json:"roomCode,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WorldChunk carries every non-empty block of one chunk row, hazard types
// masked by fog-of-war.
type WorldChunk struct {
	ChunkY int32               `json:"chunkY"`
	Blocks []world.ClientBlock `json:"blocks"`
}

// RevealBlock discloses one hazard that entered the torch radius.
type RevealBlock struct {
	X         int            `json:"x"`
	Y         int            `json:"y"`
	BlockType game.BlockType `json:"blockType"`
	HP        float64        `json:"hp"`
	MaxHP     float64        `json:"maxHp"`
}

// BlockUpdate reports damage to a surviving block.
type BlockUpdate struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	NewHP     float64 `json:"newHp"`
	MaxHP     float64 `json:"maxHp,omitempty"`
	Destroyed bool    `json:"destroyed"`
	Actor     string  `json:"actor"`
}

// DropInfo describes a spawned drop item.
type DropInfo struct {
	ID       string        `json:"id"`
	ItemType game.ItemType `json:"itemType"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
}

// BlockDestroyed reports a destroyed block and its loot, if any.
type BlockDestroyed struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Actor string    `json:"actor"`
	Drop  *DropInfo `json:"drop,omitempty"`
}

// ChainLink is one delayed detonation of an explosion's tail.
type ChainLink struct {
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Destroyed []world.Coord `json:"destroyedBlocks"`
	DelayMs   int64         `json:"delayMs"`
}

// Explosion reports a full TNT cascade.
type Explosion struct {
	Center          world.Coord   `json:"center"`
	Radius          int           `json:"radius"`
	DestroyedBlocks []world.Coord `json:"destroyedBlocks"`
	Chain           []ChainLink   `json:"chain"`
	GoldPenalty     int           `json:"goldPenalty"`
	AffectedPlayer  string        `json:"affectedPlayer"`
	PlayerLaunchToY int           `json:"playerLaunchToY"`
}

// PlayerStateUpdate pushes the player's own authoritative state.
type PlayerStateUpdate struct {
	State *game.PlayerState `json:"state"`
}

// SellResult relays the economy engine's sell outcome.
type SellResult struct {
	economy.SellResult
}

// BuyResult relays an equipment or inventory purchase outcome.
type BuyResult struct {
	Equipment *economy.PurchaseResult `json:"equipment,omitempty"`
	Inventory *economy.UpgradeResult  `json:"inventory,omitempty"`
}

// CollectResult reports a drop collection attempt.
type CollectResult struct {
	Success  bool          `json:"success"`
	ItemID   string        `json:"itemId"`
	ItemType game.ItemType `json:"itemType,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// InventoryFull tells the player a pickup could not be stored.
type InventoryFull struct {
	ItemID string `json:"itemId,omitempty"`
}

// Event announces a random event outcome to the affected player and peers.
type Event struct {
	Event    game.EventType `json:"event"`
	PlayerID string         `json:"playerId"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	// Detail carries event-specific payload: items lost, drops spawned,
	// durations.
	Detail map[string]any `json:"detail,omitempty"`
}

// OtherPlayerJoined announces a peer joining the shard.
type OtherPlayerJoined struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

// OtherPlayerLeft announces a peer leaving the shard.
type OtherPlayerLeft struct {
	PlayerID string `json:"playerId"`
}

// OtherPlayerUpdate broadcasts a peer's position and action.
type OtherPlayerUpdate struct {
	PlayerID string `json:"playerId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Action   string `json:"action"`
}

// ChatMessage relays a sanitized chat line.
type ChatMessage struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Message     string `json:"message"`
}

// ErrorMessage is a structured error frame.
type ErrorMessage struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (Welcome) MessageType() string           { return MsgWelcome }
func (MatchmakingResult) MessageType() string { return MsgMatchmakingResult }
func (WorldChunk) MessageType() string        { return MsgWorldChunk }
func (RevealBlock) MessageType() string       { return MsgRevealBlock }
func (BlockUpdate) MessageType() string       { return MsgBlockUpdate }
func (BlockDestroyed) MessageType() string    { return MsgBlockDestroyed }
func (Explosion) MessageType() string         { return MsgExplosion }
func (PlayerStateUpdate) MessageType() string { return MsgPlayerStateUpdate }
func (SellResult) MessageType() string        { return MsgSellResult }
func (BuyResult) MessageType() string         { return MsgBuyResult }
func (CollectResult) MessageType() string     { return MsgCollectResult }
func (InventoryFull) MessageType() string     { return MsgInventoryFull }
func (Event) MessageType() string             { return MsgEvent }
func (OtherPlayerJoined) MessageType() string { return MsgOtherPlayerJoined }
func (OtherPlayerLeft) MessageType() string   { return MsgOtherPlayerLeft }
func (OtherPlayerUpdate) MessageType() string { return MsgOtherPlayerUpdate }
func (ChatMessage) MessageType() string       { return MsgChatMessage }
func (ErrorMessage) MessageType() string      { return MsgError }

// Errorf builds an error frame.
func Errorf(code ErrorCode, format string, args ...any) ErrorMessage {
	return ErrorMessage{Code: code, Message: fmt.Sprintf(format, args...)}
}

// EncodeMessage serializes a message with its discriminating type tag.
func EncodeMessage(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	if obj == nil {
		obj = make(map[string]json.RawMessage, 1)
	}
	tag, _ := json.Marshal(m.MessageType())
	obj["type"] = tag
	return json.Marshal(obj)
}
