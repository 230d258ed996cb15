package game

import "time"

// InventorySlot is one stack of items, or empty.
type InventorySlot struct {
	Item     ItemType `json:"itemType,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
}

// Empty reports whether the slot holds nothing.
func (s InventorySlot) Empty() bool {
	return s.Item == "" || s.Quantity == 0
}

// PlayerState is the authoritative per-player game state. It is owned by
// the player's shard; other components receive snapshots or read-only
// references.
type PlayerState struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`

	X int `json:"x"`
	Y int `json:"y"`

	Gold      int                   `json:"gold"`
	Equipment map[EquipmentSlot]int `json:"equipment"`

	Inventory      []InventorySlot `json:"inventory"`
	InventoryLevel int             `json:"inventoryLevel"`

	MaxDepthReached int   `json:"maxDepthReached"`
	Checkpoints     []int `json:"checkpoints"`

	IsStunned   bool      `json:"isStunned"`
	StunEnd     time.Time `json:"-"`
	IsOnSurface bool      `json:"isOnSurface"`

	// Transient event effects.
	GasBlindUntil   time.Time `json:"-"`
	RockSlideBlocks int       `json:"-"`

	TotalBlocksMined int `json:"totalBlocksMined"`
	TotalGoldEarned  int `json:"totalGoldEarned"`
	TotalExplosions  int `json:"totalExplosions"`
}

// NewPlayerState creates a fresh surface-level player with tier-1 equipment
// and an empty base inventory.
func NewPlayerState(id, displayName string) *PlayerState {
	eq := make(map[EquipmentSlot]int, len(EquipmentSlots))
	for _, slot := range EquipmentSlots {
		eq[slot] = MinTier
	}
	return &PlayerState{
		ID:          id,
		DisplayName: displayName,
		Equipment:   eq,
		Inventory:   make([]InventorySlot, BaseInventorySlots),
		IsOnSurface: true,
	}
}

// Tier returns the tier of an equipment slot, defaulting to MinTier.
func (p *PlayerState) Tier(slot EquipmentSlot) int {
	if t, ok := p.Equipment[slot]; ok {
		return t
	}
	return MinTier
}

// BaseSlots returns the inventory size granted by the upgrade level alone.
func (p *PlayerState) BaseSlots() int {
	if p.InventoryLevel < 0 || p.InventoryLevel >= len(InventorySlotRows) {
		return BaseInventorySlots
	}
	return InventorySlotRows[p.InventoryLevel]
}

// Capacity returns the effective slot capacity: base slots plus the vest
// bonus. The bonus extends capacity without resizing the base sequence.
func (p *PlayerState) Capacity() int {
	return p.BaseSlots() + VestBonusSlots(p.Tier(SlotVest))
}

// UsedSlots counts non-empty inventory slots.
func (p *PlayerState) UsedSlots() int {
	n := 0
	for _, s := range p.Inventory {
		if !s.Empty() {
			n++
		}
	}
	return n
}

// CountItem sums the quantity of one item type across all slots.
func (p *PlayerState) CountItem(item ItemType) int {
	total := 0
	for _, s := range p.Inventory {
		if s.Item == item {
			total += s.Quantity
		}
	}
	return total
}

// AddItem stacks the item into the inventory, opening a new slot when no
// partial stack has room. Returns false when the inventory is full.
func (p *PlayerState) AddItem(item ItemType, qty int) bool {
	for qty > 0 {
		idx := -1
		for i := range p.Inventory {
			if p.Inventory[i].Item == item && p.Inventory[i].Quantity < MaxStackSize {
				idx = i
				break
			}
		}
		if idx < 0 {
			for i := range p.Inventory {
				if p.Inventory[i].Empty() {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			// Vest bonus capacity lives past the base sequence.
			if len(p.Inventory) >= p.Capacity() {
				return false
			}
			p.Inventory = append(p.Inventory, InventorySlot{})
			idx = len(p.Inventory) - 1
		}

		s := &p.Inventory[idx]
		if s.Empty() {
			s.Item = item
			s.Quantity = 0
		}
		take := MaxStackSize - s.Quantity
		if take > qty {
			take = qty
		}
		s.Quantity += take
		qty -= take
	}
	return true
}

// RemoveItems takes qty units of the item, draining the last matching
// slots first. Returns false (and removes nothing) when the inventory
// holds fewer than qty.
func (p *PlayerState) RemoveItems(item ItemType, qty int) bool {
	if p.CountItem(item) < qty {
		return false
	}
	for i := len(p.Inventory) - 1; i >= 0 && qty > 0; i-- {
		s := &p.Inventory[i]
		if s.Item != item {
			continue
		}
		take := s.Quantity
		if take > qty {
			take = qty
		}
		s.Quantity -= take
		qty -= take
		if s.Quantity == 0 {
			*s = InventorySlot{}
		}
	}
	return true
}

// Clone deep-copies the state for use as an immutable snapshot.
func (p *PlayerState) Clone() *PlayerState {
	cp := *p
	cp.Equipment = make(map[EquipmentSlot]int, len(p.Equipment))
	for k, v := range p.Equipment {
		cp.Equipment[k] = v
	}
	cp.Inventory = append([]InventorySlot(nil), p.Inventory...)
	cp.Checkpoints = append([]int(nil), p.Checkpoints...)
	return &cp
}
