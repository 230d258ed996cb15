// Package economy implements the pure player-economy state machine. Every
// Process function takes an immutable snapshot of the player and returns a
// result; the owning shard applies successful results to authoritative
// state with the matching Apply function. Failed results carry a reason
// and imply no mutation.
package economy

import "github.com/TheFkingisback/deep-mine/pkg/game"

// SellLine is one itemized row of a sell transaction.
type SellLine struct {
	Item      game.ItemType `json:"itemType"`
	Quantity  int           `json:"quantity"`
	UnitPrice int           `json:"unitPrice"`
	Total     int           `json:"total"`
}

// SellRequest is one requested line of a sell command.
type SellRequest struct {
	Item     game.ItemType `json:"itemType"`
	Quantity int           `json:"quantity"`
}

// SellResult is the outcome of ProcessSell.
type SellResult struct {
	Success     bool       `json:"success"`
	Reason      string     `json:"reason,omitempty"`
	Lines       []SellLine `json:"items,omitempty"`
	TotalEarned int        `json:"totalGoldEarned"`
	NewGold     int        `json:"newGoldBalance"`
}

// ProcessSell values the requested items against the snapshot. A nil
// request sells every non-empty slot. Any line exceeding the held count
// fails the whole transaction with no partial progress.
func ProcessSell(p *game.PlayerState, items []SellRequest) SellResult {
	if items == nil {
		merged := make(map[game.ItemType]int)
		var order []game.ItemType
		for _, s := range p.Inventory {
			if s.Empty() {
				continue
			}
			if _, ok := merged[s.Item]; !ok {
				order = append(order, s.Item)
			}
			merged[s.Item] += s.Quantity
		}
		items = make([]SellRequest, 0, len(order))
		for _, it := range order {
			items = append(items, SellRequest{Item: it, Quantity: merged[it]})
		}
	}

	res := SellResult{NewGold: p.Gold}
	for _, req := range items {
		if req.Quantity <= 0 || !game.KnownItem(req.Item) {
			return SellResult{Reason: "invalid item", NewGold: p.Gold}
		}
		if p.CountItem(req.Item) < req.Quantity {
			return SellResult{Reason: "insufficient items", NewGold: p.Gold}
		}
		unit := game.UnitPrice(req.Item)
		res.Lines = append(res.Lines, SellLine{
			Item:      req.Item,
			Quantity:  req.Quantity,
			UnitPrice: unit,
			Total:     unit * req.Quantity,
		})
		res.TotalEarned += unit * req.Quantity
	}

	res.Success = true
	res.NewGold = p.Gold + res.TotalEarned
	return res
}

// ApplySell mutates the player with a successful sell result: items leave
// the inventory last-slot-first and the gold balance is set.
func ApplySell(p *game.PlayerState, res SellResult) {
	if !res.Success {
		return
	}
	for _, line := range res.Lines {
		p.RemoveItems(line.Item, line.Quantity)
	}
	p.Gold = res.NewGold
	p.TotalGoldEarned += res.TotalEarned
}

// PurchaseResult is the outcome of ProcessEquipmentPurchase.
type PurchaseResult struct {
	Success   bool               `json:"success"`
	Reason    string             `json:"reason,omitempty"`
	Slot      game.EquipmentSlot `json:"slot"`
	NewTier   int                `json:"newTier,omitempty"`
	GoldSpent int                `json:"goldSpent"`
	NewGold   int                `json:"newGoldBalance"`
}

// ProcessEquipmentPurchase advances a slot by exactly one tier. Requested
// target tiers are ignored; tiers cannot be skipped.
func ProcessEquipmentPurchase(p *game.PlayerState, slot game.EquipmentSlot) PurchaseResult {
	if !game.ValidSlot(slot) {
		return PurchaseResult{Reason: "unknown equipment slot", Slot: slot, NewGold: p.Gold}
	}
	current := p.Tier(slot)
	if current >= game.MaxTier {
		return PurchaseResult{Reason: "already at max tier", Slot: slot, NewGold: p.Gold}
	}
	price := game.TierPrice(current + 1)
	if price > p.Gold {
		return PurchaseResult{Reason: "not enough gold", Slot: slot, NewGold: p.Gold}
	}
	return PurchaseResult{
		Success:   true,
		Slot:      slot,
		NewTier:   current + 1,
		GoldSpent: price,
		NewGold:   p.Gold - price,
	}
}

// ApplyEquipmentPurchase mutates the player with a successful purchase.
func ApplyEquipmentPurchase(p *game.PlayerState, res PurchaseResult) {
	if !res.Success {
		return
	}
	p.Equipment[res.Slot] = res.NewTier
	p.Gold = res.NewGold
}

// UpgradeResult is the outcome of ProcessInventoryUpgrade.
type UpgradeResult struct {
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	NewLevel  int    `json:"newLevel,omitempty"`
	NewSlots  int    `json:"newSlots,omitempty"`
	GoldSpent int    `json:"goldSpent"`
	NewGold   int    `json:"newGoldBalance"`
}

// ProcessInventoryUpgrade advances the inventory level to the next row of
// the upgrade table.
func ProcessInventoryUpgrade(p *game.PlayerState) UpgradeResult {
	next := p.InventoryLevel + 1
	if next >= len(game.InventoryUpgradePrices) {
		return UpgradeResult{Reason: "already at max level", NewGold: p.Gold}
	}
	price := game.InventoryUpgradePrices[next]
	if price > p.Gold {
		return UpgradeResult{Reason: "not enough gold", NewGold: p.Gold}
	}
	return UpgradeResult{
		Success:   true,
		NewLevel:  next,
		NewSlots:  game.InventorySlotRows[next],
		GoldSpent: price,
		NewGold:   p.Gold - price,
	}
}

// ApplyInventoryUpgrade mutates the player with a successful upgrade,
// growing the base slot sequence to the new row.
func ApplyInventoryUpgrade(p *game.PlayerState, res UpgradeResult) {
	if !res.Success {
		return
	}
	p.InventoryLevel = res.NewLevel
	p.Gold = res.NewGold
	for len(p.Inventory) < res.NewSlots {
		p.Inventory = append(p.Inventory, game.InventorySlot{})
	}
}

// ApplyTNTPenalty deducts the depth-scaled explosion penalty, flooring the
// balance at zero.
func ApplyTNTPenalty(gold, depth int) (goldLost, newGold int) {
	penalty := game.TNTPenaltyAt(depth)
	goldLost = penalty
	if goldLost > gold {
		goldLost = gold
	}
	return goldLost, gold - goldLost
}
