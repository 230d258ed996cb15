package world

import "github.com/TheFkingisback/deep-mine/pkg/game"

// Coord is a block position. X is horizontal and wraps modulo
// game.ChunkWidth; Y is depth, 0 at the surface, growing downward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Block is one world cell.
type Block struct {
	Type  game.BlockType
	HP    float64
	MaxHP float64
	X, Y  int
}

// WrapX folds any x into [0, game.ChunkWidth).
func WrapX(x int) int {
	x %= game.ChunkWidth
	if x < 0 {
		x += game.ChunkWidth
	}
	return x
}

// ChunkYFor returns the chunk row containing depth y. y must be >= 0.
func ChunkYFor(y int) int32 {
	return int32(y / game.ChunkHeight)
}
