package game

import "testing"

func TestNewPlayerStateDefaults(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	if len(p.Inventory) != BaseInventorySlots {
		t.Errorf("inventory length = %d, want %d", len(p.Inventory), BaseInventorySlots)
	}
	for _, slot := range EquipmentSlots {
		if p.Tier(slot) != MinTier {
			t.Errorf("slot %s starts at tier %d, want %d", slot, p.Tier(slot), MinTier)
		}
	}
	if !p.IsOnSurface || p.Gold != 0 {
		t.Error("fresh player should be on the surface with no gold")
	}
}

func TestAddItemStacks(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	if !p.AddItem(ItemDirt, 30) || !p.AddItem(ItemDirt, 30) {
		t.Fatal("adds should succeed")
	}
	if got := p.CountItem(ItemDirt); got != 60 {
		t.Fatalf("count = %d, want 60", got)
	}
	// 60 dirt = one full stack of 50 plus 10.
	if p.UsedSlots() != 2 {
		t.Errorf("used slots = %d, want 2", p.UsedSlots())
	}
	for _, s := range p.Inventory {
		if s.Quantity > MaxStackSize {
			t.Errorf("slot exceeds max stack: %d", s.Quantity)
		}
	}
}

func TestAddItemFullInventory(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	for i := 0; i < p.Capacity(); i++ {
		if !p.AddItem(ItemType("filler_"+string(rune('a'+i))), 1) {
			t.Fatalf("fill %d should succeed (capacity %d)", i, p.Capacity())
		}
	}
	if p.AddItem(ItemDiamond, 1) {
		t.Error("add beyond capacity should fail")
	}
}

func TestVestExtendsCapacity(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	base := p.Capacity()
	p.Equipment[SlotVest] = 3
	if got := p.Capacity(); got != base+VestBonusSlots(3) {
		t.Errorf("capacity with vest 3 = %d, want %d", got, base+VestBonusSlots(3))
	}
	// The base sequence does not grow.
	if len(p.Inventory) != BaseInventorySlots {
		t.Errorf("inventory resized to %d on vest upgrade", len(p.Inventory))
	}
}

func TestRemoveItemsLIFO(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	p.Inventory[0] = InventorySlot{Item: ItemDirt, Quantity: 50}
	p.Inventory[1] = InventorySlot{Item: ItemDirt, Quantity: 20}

	if !p.RemoveItems(ItemDirt, 30) {
		t.Fatal("remove should succeed")
	}
	// Last slot drains first.
	if p.Inventory[1].Quantity != 0 || p.Inventory[0].Quantity != 40 {
		t.Errorf("slots after LIFO removal = %d, %d; want 40, 0",
			p.Inventory[0].Quantity, p.Inventory[1].Quantity)
	}
}

func TestRemoveItemsInsufficient(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	p.Inventory[0] = InventorySlot{Item: ItemClay, Quantity: 5}
	if p.RemoveItems(ItemClay, 6) {
		t.Fatal("remove beyond held count should fail")
	}
	if p.CountItem(ItemClay) != 5 {
		t.Error("failed removal must not mutate inventory")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewPlayerState("p1", "Tester")
	p.AddItem(ItemGoldOre, 2)
	p.Checkpoints = []int{100}

	cp := p.Clone()
	cp.Inventory[0].Quantity = 99
	cp.Equipment[SlotShovel] = 7
	cp.Checkpoints[0] = 1

	if p.Inventory[0].Quantity == 99 || p.Tier(SlotShovel) == 7 || p.Checkpoints[0] == 1 {
		t.Error("mutating the clone leaked into the original")
	}
}
