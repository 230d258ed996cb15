package game

import "time"

// World dimensions. X wraps modulo ChunkWidth; Y grows downward from the
// surface at y=0 and is unbounded below.
const (
	ChunkWidth  = 2000
	ChunkHeight = 32

	// SafeSpawnBlocks is the depth band below the surface that never
	// generates hazards.
	SafeSpawnBlocks = 3

	// MaxLoadedChunks caps the WorldStore cache; least-recently-used clean
	// chunks are evicted beyond this.
	MaxLoadedChunks = 100
)

// Simulation timing.
const (
	TickRate     = 10
	TickInterval = 100 * time.Millisecond

	StunDuration = 1500 * time.Millisecond

	// MaxDigRate is the number of dig commands admitted per player per
	// rolling one-second window.
	MaxDigRate = 10

	// ChatRateLimit / ChatRateWindow bound chat frequency per player.
	ChatRateLimit  = 5
	ChatRateWindow = 10 * time.Second
)

// TNT chain behaviour.
const (
	TNTChainDelay       = 500 * time.Millisecond
	TNTLaunchDistance   = 10
	TNTChainExtraLaunch = 5
)

// Random-event effects.
const (
	CaveInPushDistance      = 5
	CaveInItemsLost         = 2
	GasPocketDuration       = 10 * time.Second
	RockSlideHardnessBonus  = 3
	RockSlideDurationBlocks = 20
)

// Session and shard lifecycle.
const (
	PlayerDisconnectGrace = 30 * time.Second
	SessionSweepInterval  = 10 * time.Second

	DropItemTTL = 60 * time.Second

	DefaultMaxPlayers = 8

	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Inventory.
const (
	MaxStackSize       = 50
	BaseInventorySlots = 8
	MaxChatLength      = 200
	MaxDisplayNameLen  = 24
)

// InventorySlotRows maps inventory upgrade level to base slot count.
var InventorySlotRows = []int{8, 12, 16, 20, 25, 30}

// InventoryUpgradePrices maps inventory upgrade level to the gold price of
// reaching it. Level 0 is free (starting state).
var InventoryUpgradePrices = []int{0, 100, 400, 1200, 4000, 15000}
