package game

import "testing"

func TestLayersCoverDepthContiguously(t *testing.T) {
	if Layers[0].MinDepth != 0 {
		t.Fatalf("first layer starts at %d, want 0", Layers[0].MinDepth)
	}
	for i := 1; i < len(Layers); i++ {
		if Layers[i].MinDepth != Layers[i-1].MaxDepth {
			t.Errorf("layer %q starts at %d, previous ends at %d",
				Layers[i].Name, Layers[i].MinDepth, Layers[i-1].MaxDepth)
		}
	}
	if last := Layers[len(Layers)-1]; last.MaxDepth >= 0 {
		t.Errorf("deepest layer %q is bounded at %d", last.Name, last.MaxDepth)
	}
}

func TestLayerAt(t *testing.T) {
	tests := []struct {
		y    int
		want string
	}{
		{0, "Topsoil"},
		{59, "Topsoil"},
		{60, "Clay Beds"},
		{299, "Stone"},
		{300, "Dense Rock"},
		{1000, "Void Stone"},
		{1200, "Void Stone"},
		{1201, "Deep Void"},
		{50000, "Deep Void"},
		{-5, "Topsoil"},
	}
	for _, tt := range tests {
		if got := LayerAt(tt.y).Name; got != tt.want {
			t.Errorf("LayerAt(%d) = %q, want %q", tt.y, got, tt.want)
		}
	}
}

func TestHardnessGrowsBeyondVoidDepth(t *testing.T) {
	base := LayerAt(1500).BaseHardness
	want := base + float64(1500-VoidStoneGrowthDepth)*VoidStoneGrowthRate
	if got := HardnessAt(1500); got != want {
		t.Errorf("HardnessAt(1500) = %v, want %v", got, want)
	}
	if got := HardnessAt(1201); got != LayerAt(1201).BaseHardness {
		t.Errorf("HardnessAt(1201) = %v, want base %v", got, LayerAt(1201).BaseHardness)
	}
}

func TestTNTChancesAndPenaltiesMonotone(t *testing.T) {
	for i := 1; i < len(Layers); i++ {
		if Layers[i].TNTSpawnChance < Layers[i-1].TNTSpawnChance {
			t.Errorf("tnt chance decreases at layer %q", Layers[i].Name)
		}
		if Layers[i].TNTGoldPenalty < Layers[i-1].TNTGoldPenalty {
			t.Errorf("tnt penalty decreases at layer %q", Layers[i].Name)
		}
		if Layers[i].DropChance > Layers[i-1].DropChance {
			t.Errorf("drop chance increases at layer %q", Layers[i].Name)
		}
	}
	if Layers[0].TNTSpawnChance != 0.02 || Layers[len(Layers)-1].TNTSpawnChance != 0.08 {
		t.Error("tnt chance range should span 0.02..0.08")
	}
	if Layers[0].TNTGoldPenalty != 10 || Layers[len(Layers)-1].TNTGoldPenalty != 5000 {
		t.Error("tnt penalty range should span 10..5000")
	}
}

func TestTopsoilLootWeights(t *testing.T) {
	want := map[ItemType]int{ItemDirt: 60, ItemClay: 25, ItemCopperOre: 10, ItemLostCoins: 5}
	got := make(map[ItemType]int)
	for _, e := range Layers[0].Loot {
		got[e.Item] = e.Weight
	}
	for item, w := range want {
		if got[item] != w {
			t.Errorf("topsoil loot %s weight = %d, want %d", item, got[item], w)
		}
	}
}

func TestLayerLootTablesSellable(t *testing.T) {
	for _, l := range Layers {
		for _, e := range l.Loot {
			if !KnownItem(e.Item) {
				t.Errorf("layer %q drops unknown item %q", l.Name, e.Item)
			}
			if e.Weight <= 0 {
				t.Errorf("layer %q has non-positive weight for %q", l.Name, e.Item)
			}
		}
	}
}
