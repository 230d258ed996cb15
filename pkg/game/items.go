package game

// ItemType identifies a collectible item.
type ItemType string

const (
	ItemDirt          ItemType = "dirt"
	ItemClay          ItemType = "clay"
	ItemStone         ItemType = "stone"
	ItemCopperOre     ItemType = "copper_ore"
	ItemIronOre       ItemType = "iron_ore"
	ItemSilverOre     ItemType = "silver_ore"
	ItemGoldOre       ItemType = "gold_ore"
	ItemRuby          ItemType = "ruby"
	ItemSapphire      ItemType = "sapphire"
	ItemEmerald       ItemType = "emerald"
	ItemDiamond       ItemType = "diamond"
	ItemObsidianShard ItemType = "obsidian_shard"
	ItemMagmaCore     ItemType = "magma_core"
	ItemVoidCrystal   ItemType = "void_crystal"
	ItemLostCoins     ItemType = "lost_coins"
	ItemAncientRelic  ItemType = "ancient_relic"
)

// itemPrices is the sell value per unit.
var itemPrices = map[ItemType]int{
	ItemDirt:          1,
	ItemClay:          3,
	ItemStone:         5,
	ItemCopperOre:     12,
	ItemIronOre:       25,
	ItemSilverOre:     45,
	ItemGoldOre:       80,
	ItemRuby:          150,
	ItemSapphire:      200,
	ItemEmerald:       320,
	ItemDiamond:       500,
	ItemObsidianShard: 260,
	ItemMagmaCore:     700,
	ItemVoidCrystal:   1200,
	ItemLostCoins:     20,
	ItemAncientRelic:  900,
}

// UnitPrice returns the sell value of one unit of the item, or 0 for an
// unknown item.
func UnitPrice(item ItemType) int {
	return itemPrices[item]
}

// KnownItem reports whether the item type exists in the registry.
func KnownItem(item ItemType) bool {
	_, ok := itemPrices[item]
	return ok
}
