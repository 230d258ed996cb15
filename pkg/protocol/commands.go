package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/TheFkingisback/deep-mine/pkg/economy"
	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// Command is one client→server frame. Concrete commands are tagged
// variants discriminated by the wire "type" field; handlers switch on the
// concrete type.
type Command interface {
	CommandType() string
}

// Command type tags.
const (
	CmdAuth                = "auth"
	CmdJoinQuickPlay       = "join_quick_play"
	CmdCreateParty         = "create_party"
	CmdJoinParty           = "join_party"
	CmdPlaySolo            = "play_solo"
	CmdDig                 = "dig"
	CmdMove                = "move"
	CmdCollectItem         = "collect_item"
	CmdGoSurface           = "go_surface"
	CmdSell                = "sell"
	CmdBuyEquipment        = "buy_equipment"
	CmdBuyInventoryUpgrade = "buy_inventory_upgrade"
	CmdSetCheckpoint       = "set_checkpoint"
	CmdDescend             = "descend"
	CmdChat                = "chat"
)

// Auth presents an optional bearer token.
type Auth struct {
	Token string `json:"token,omitempty"`
}

// JoinQuickPlay requests quick-play matchmaking.
type JoinQuickPlay struct{}

// CreateParty requests a private room.
type CreateParty struct {
	MaxPlayers int `json:"maxPlayers,omitempty"`
}

// JoinParty joins a private room by code.
type JoinParty struct {
	RoomCode string `json:"roomCode"`
}

// PlaySolo requests a single-player shard.
type PlaySolo struct{}

// Dig attempts to damage the block at (X, Y).
type Dig struct {
	Seq       int   `json:"seq"`
	X         int   `json:"x"`
	Y         int   `json:"y"`
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Move reports the player's new position.
type Move struct {
	Seq int `json:"seq"`
	X   int `json:"x"`
	Y   int `json:"y"`
}

// CollectItem claims a dropped item.
type CollectItem struct {
	Seq    int    `json:"seq"`
	ItemID string `json:"itemId"`
}

// GoSurface rides the rope back to y=0.
type GoSurface struct{}

// Sell sells the listed items, or everything when Items is null.
type Sell struct {
	Items []economy.SellRequest `json:"items"`
}

// BuyEquipment buys the next tier of a slot. The Tier field is advisory
// only; tiers never skip.
type BuyEquipment struct {
	Slot game.EquipmentSlot `json:"slot"`
	Tier int                `json:"tier,omitempty"`
}

// BuyInventoryUpgrade buys the next inventory row.
type BuyInventoryUpgrade struct{}

// SetCheckpoint records a rope checkpoint at the given depth.
type SetCheckpoint struct {
	Depth int `json:"depth"`
}

// Descend rides the rope down to a checkpoint. Checkpoint is the requested
// depth; nil means the deepest recorded one.
type Descend struct {
	Checkpoint *int `json:"checkpoint,omitempty"`
}

// Chat sends a chat message to the shard.
type Chat struct {
	Message string `json:"message"`
}

func (Auth) CommandType() string                { return CmdAuth }
func (JoinQuickPlay) CommandType() string       { return CmdJoinQuickPlay }
func (CreateParty) CommandType() string         { return CmdCreateParty }
func (JoinParty) CommandType() string           { return CmdJoinParty }
func (PlaySolo) CommandType() string            { return CmdPlaySolo }
func (Dig) CommandType() string                 { return CmdDig }
func (Move) CommandType() string                { return CmdMove }
func (CollectItem) CommandType() string         { return CmdCollectItem }
func (GoSurface) CommandType() string           { return CmdGoSurface }
func (Sell) CommandType() string                { return CmdSell }
func (BuyEquipment) CommandType() string        { return CmdBuyEquipment }
func (BuyInventoryUpgrade) CommandType() string { return CmdBuyInventoryUpgrade }
func (SetCheckpoint) CommandType() string       { return CmdSetCheckpoint }
func (Descend) CommandType() string             { return CmdDescend }
func (Chat) CommandType() string                { return CmdChat }

// ErrUnknownCommand is returned by DecodeCommand for an unrecognized type
// tag.
type ErrUnknownCommand struct {
	TypeTag string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command type %q", e.TypeTag)
}

type envelope struct {
	Type string `json:"type"`
}

// DecodeCommand parses one JSON text frame into its tagged variant.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	var cmd Command
	switch env.Type {
	case CmdAuth:
		cmd = &Auth{}
	case CmdJoinQuickPlay:
		cmd = &JoinQuickPlay{}
	case CmdCreateParty:
		cmd = &CreateParty{}
	case CmdJoinParty:
		cmd = &JoinParty{}
	case CmdPlaySolo:
		cmd = &PlaySolo{}
	case CmdDig:
		cmd = &Dig{}
	case CmdMove:
		cmd = &Move{}
	case CmdCollectItem:
		cmd = &CollectItem{}
	case CmdGoSurface:
		cmd = &GoSurface{}
	case CmdSell:
		cmd = &Sell{}
	case CmdBuyEquipment:
		cmd = &BuyEquipment{}
	case CmdBuyInventoryUpgrade:
		cmd = &BuyInventoryUpgrade{}
	case CmdSetCheckpoint:
		cmd = &SetCheckpoint{}
	case CmdDescend:
		cmd = &Descend{}
	case CmdChat:
		cmd = &Chat{}
	default:
		return nil, ErrUnknownCommand{TypeTag: env.Type}
	}

	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("malformed %s frame: %w", env.Type, err)
	}
	return cmd, nil
}
