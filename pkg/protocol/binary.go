package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Binary frame opcodes for the highest-frequency messages. Payloads are
// little-endian, prefixed by one opcode byte. Everything else travels as
// JSON text frames.
const (
	OpMove              byte = 0x01
	OpDig               byte = 0x02
	OpBlockUpdate       byte = 0x03
	OpBlockDestroyed    byte = 0x04
	OpOtherPlayerUpdate byte = 0x05
)

// Peer action indicators carried by OpOtherPlayerUpdate.
const (
	ActionIdle    byte = 0
	ActionWalking byte = 1
	ActionDigging byte = 2
)

// DecodeBinaryCommand parses a binary client frame. Only move and dig
// arrive in binary.
func DecodeBinaryCommand(data []byte) (Command, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty binary frame")
	}
	r := bytes.NewReader(data[1:])

	switch data[0] {
	case OpMove:
		var x, y float32
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, fmt.Errorf("move frame: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
			return nil, fmt.Errorf("move frame: %w", err)
		}
		return &Move{X: int(math.Floor(float64(x))), Y: int(math.Floor(float64(y)))}, nil

	case OpDig:
		var x, y int16
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, fmt.Errorf("dig frame: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
			return nil, fmt.Errorf("dig frame: %w", err)
		}
		return &Dig{X: int(x), Y: int(y)}, nil

	default:
		return nil, ErrUnknownCommand{TypeTag: fmt.Sprintf("0x%02x", data[0])}
	}
}

// EncodeBinaryMessage emits the compact form of a message, or nil when the
// message has no binary encoding and must travel as JSON.
func EncodeBinaryMessage(m Message) []byte {
	var buf bytes.Buffer

	switch msg := m.(type) {
	case BlockUpdate:
		buf.WriteByte(OpBlockUpdate)
		binary.Write(&buf, binary.LittleEndian, int16(msg.X))
		binary.Write(&buf, binary.LittleEndian, int16(msg.Y))
		buf.WriteByte(clampByte(msg.NewHP))
		buf.WriteByte(clampByte(msg.MaxHP))
		return buf.Bytes()

	case BlockDestroyed:
		if msg.Drop != nil {
			// Drops need the JSON form.
			return nil
		}
		buf.WriteByte(OpBlockDestroyed)
		binary.Write(&buf, binary.LittleEndian, int16(msg.X))
		binary.Write(&buf, binary.LittleEndian, int16(msg.Y))
		return buf.Bytes()

	case OtherPlayerUpdate:
		id := msg.PlayerID
		if len(id) > 255 {
			id = id[:255]
		}
		buf.WriteByte(OpOtherPlayerUpdate)
		buf.WriteByte(byte(len(id)))
		buf.WriteString(id)
		binary.Write(&buf, binary.LittleEndian, float32(msg.X))
		binary.Write(&buf, binary.LittleEndian, float32(msg.Y))
		buf.WriteByte(actionByte(msg.Action))
		return buf.Bytes()

	default:
		return nil
	}
}

// DecodeBinaryMessage parses a compact server frame back into its message,
// the inverse of EncodeBinaryMessage.
func DecodeBinaryMessage(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty binary frame")
	}
	r := bytes.NewReader(data[1:])

	switch data[0] {
	case OpBlockUpdate:
		var x, y int16
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
			return nil, err
		}
		hp, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		maxHP, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return BlockUpdate{X: int(x), Y: int(y), NewHP: float64(hp), MaxHP: float64(maxHP)}, nil

	case OpBlockDestroyed:
		var x, y int16
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
			return nil, err
		}
		return BlockDestroyed{X: int(x), Y: int(y), Actor: ""}, nil

	case OpOtherPlayerUpdate:
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		id := make([]byte, n)
		if _, err := r.Read(id); err != nil {
			return nil, err
		}
		var x, y float32
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &y); err != nil {
			return nil, err
		}
		action, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return OtherPlayerUpdate{
			PlayerID: string(id),
			X:        int(x),
			Y:        int(y),
			Action:   actionName(action),
		}, nil

	default:
		return nil, fmt.Errorf("unknown opcode 0x%02x", data[0])
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func actionByte(name string) byte {
	switch name {
	case "walking":
		return ActionWalking
	case "digging":
		return ActionDigging
	default:
		return ActionIdle
	}
}

func actionName(b byte) string {
	switch b {
	case ActionWalking:
		return "walking"
	case ActionDigging:
		return "digging"
	default:
		return "idle"
	}
}
