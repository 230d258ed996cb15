package game

// LootEntry is one weighted row of a layer's drop table.
type LootEntry struct {
	Item   ItemType
	Weight int
}

// Layer describes one fixed depth band of the world.
type Layer struct {
	Name string
	// Depth range [MinDepth, MaxDepth); the deepest layer has MaxDepth < 0
	// meaning unbounded.
	MinDepth int
	MaxDepth int

	BaseHardness   float64
	TNTSpawnChance float64
	TNTGoldPenalty int
	DropChance     float64
	Loot           []LootEntry
	Block          BlockType
}

// Layers covers [0, inf) contiguously, shallowest first.
var Layers = []Layer{
	{
		Name: "Topsoil", MinDepth: 0, MaxDepth: 60,
		BaseHardness: 1, TNTSpawnChance: 0.02, TNTGoldPenalty: 10, DropChance: 0.30,
		Block: BlockDirt,
		Loot: []LootEntry{
			{ItemDirt, 60}, {ItemClay, 25}, {ItemCopperOre, 10}, {ItemLostCoins, 5},
		},
	},
	{
		Name: "Clay Beds", MinDepth: 60, MaxDepth: 150,
		BaseHardness: 2, TNTSpawnChance: 0.03, TNTGoldPenalty: 25, DropChance: 0.28,
		Block: BlockClay,
		Loot: []LootEntry{
			{ItemClay, 50}, {ItemCopperOre, 25}, {ItemIronOre, 15}, {ItemLostCoins, 10},
		},
	},
	{
		Name: "Stone", MinDepth: 150, MaxDepth: 300,
		BaseHardness: 4, TNTSpawnChance: 0.04, TNTGoldPenalty: 75, DropChance: 0.26,
		Block: BlockRock,
		Loot: []LootEntry{
			{ItemStone, 45}, {ItemIronOre, 25}, {ItemSilverOre, 18}, {ItemLostCoins, 12},
		},
	},
	{
		Name: "Dense Rock", MinDepth: 300, MaxDepth: 500,
		BaseHardness: 7, TNTSpawnChance: 0.05, TNTGoldPenalty: 200, DropChance: 0.24,
		Block: BlockDenseRock,
		Loot: []LootEntry{
			{ItemSilverOre, 35}, {ItemGoldOre, 30}, {ItemRuby, 20}, {ItemLostCoins, 15},
		},
	},
	{
		Name: "Obsidian Fields", MinDepth: 500, MaxDepth: 750,
		BaseHardness: 12, TNTSpawnChance: 0.06, TNTGoldPenalty: 500, DropChance: 0.22,
		Block: BlockObsidian,
		Loot: []LootEntry{
			{ItemObsidianShard, 40}, {ItemGoldOre, 25}, {ItemSapphire, 20}, {ItemAncientRelic, 15},
		},
	},
	{
		Name: "Cold Magma", MinDepth: 750, MaxDepth: 1000,
		BaseHardness: 18, TNTSpawnChance: 0.07, TNTGoldPenalty: 1200, DropChance: 0.20,
		Block: BlockColdMagma,
		Loot: []LootEntry{
			{ItemMagmaCore, 40}, {ItemEmerald, 30}, {ItemSapphire, 20}, {ItemAncientRelic, 10},
		},
	},
	{
		Name: "Void Stone", MinDepth: 1000, MaxDepth: 1201,
		BaseHardness: 26, TNTSpawnChance: 0.075, TNTGoldPenalty: 2500, DropChance: 0.18,
		Block: BlockVoidStone,
		Loot: []LootEntry{
			{ItemVoidCrystal, 35}, {ItemDiamond, 30}, {ItemEmerald, 20}, {ItemAncientRelic, 15},
		},
	},
	{
		Name: "Deep Void", MinDepth: 1201, MaxDepth: -1,
		BaseHardness: 30, TNTSpawnChance: 0.08, TNTGoldPenalty: 5000, DropChance: 0.15,
		Block: BlockVoidStone,
		Loot: []LootEntry{
			{ItemVoidCrystal, 45}, {ItemDiamond, 35}, {ItemAncientRelic, 20},
		},
	},
}

// VoidStoneGrowthDepth is the depth beyond which void stone hardness grows.
const VoidStoneGrowthDepth = 1201

// VoidStoneGrowthRate is the extra hardness per block of depth beyond
// VoidStoneGrowthDepth.
const VoidStoneGrowthRate = 0.01

// LayerAt returns the layer containing depth y. Negative depths map to the
// surface layer.
func LayerAt(y int) *Layer {
	if y < 0 {
		return &Layers[0]
	}
	for i := range Layers {
		l := &Layers[i]
		if y >= l.MinDepth && (l.MaxDepth < 0 || y < l.MaxDepth) {
			return l
		}
	}
	return &Layers[len(Layers)-1]
}

// HardnessAt returns the hp a freshly generated block at depth y carries.
func HardnessAt(y int) float64 {
	l := LayerAt(y)
	h := l.BaseHardness
	if l.Block == BlockVoidStone && y > VoidStoneGrowthDepth {
		h += float64(y-VoidStoneGrowthDepth) * VoidStoneGrowthRate
	}
	return h
}

// TNTPenaltyAt returns the gold penalty for a TNT detonation at depth y.
func TNTPenaltyAt(y int) int {
	return LayerAt(y).TNTGoldPenalty
}
