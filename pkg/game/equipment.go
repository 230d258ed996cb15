package game

import "math"

// EquipmentSlot identifies one upgradeable equipment slot.
type EquipmentSlot string

const (
	SlotShovel EquipmentSlot = "shovel"
	SlotHelmet EquipmentSlot = "helmet"
	SlotVest   EquipmentSlot = "vest"
	SlotTorch  EquipmentSlot = "torch"
	SlotRope   EquipmentSlot = "rope"
)

// EquipmentSlots lists every slot in a fixed order.
var EquipmentSlots = []EquipmentSlot{SlotShovel, SlotHelmet, SlotVest, SlotTorch, SlotRope}

// Tiers run 1..MaxTier per slot; purchases advance by exactly one.
const (
	MinTier = 1
	MaxTier = 7
)

// TierPrices is the gold cost of reaching tier i+1. Tier 1 is the starting
// tier and free.
var TierPrices = [MaxTier]int{0, 50, 200, 600, 1800, 5000, 12000}

// TierPrice returns the cost of buying the given tier, or -1 when the tier
// is out of range.
func TierPrice(tier int) int {
	if tier < MinTier || tier > MaxTier {
		return -1
	}
	return TierPrices[tier-1]
}

// shovelDamage indexes damage per swing by tier-1.
var shovelDamage = [MaxTier]float64{1, 2, 4, 7, 12, 20, 35}

// ShovelDamage returns the damage one dig applies at the given shovel tier.
func ShovelDamage(tier int) float64 {
	return shovelDamage[clampTier(tier)-1]
}

// helmetMaxDepth indexes the deepest diggable y by tier-1. The top tier is
// effectively unbounded.
var helmetMaxDepth = [MaxTier]int{120, 300, 600, 1000, 1500, 2500, math.MaxInt32}

// HelmetMaxDepth returns the depth cap enforced by the given helmet tier.
func HelmetMaxDepth(tier int) int {
	return helmetMaxDepth[clampTier(tier)-1]
}

// HelmetRockSlideImmuneTier and up shrug off rock slides.
const HelmetRockSlideImmuneTier = 4

// Vest protection is stored as a fraction in [0.0, 0.95] and rolled
// directly against the cave-in chance.
var vestProtection = [MaxTier]float64{0, 0.15, 0.30, 0.45, 0.60, 0.75, 0.95}

// VestProtection returns the cave-in protection fraction for the tier.
func VestProtection(tier int) float64 {
	return vestProtection[clampTier(tier)-1]
}

// vestBonusSlots indexes extra inventory capacity by tier-1.
var vestBonusSlots = [MaxTier]int{0, 2, 4, 6, 8, 10, 12}

// VestBonusSlots returns the extra inventory slots granted by the tier.
func VestBonusSlots(tier int) int {
	return vestBonusSlots[clampTier(tier)-1]
}

// torchRadius indexes the illuminated disk radius by tier-1.
var torchRadius = [MaxTier]float64{3, 4, 5, 6, 8, 10, 12}

// TorchRadius returns the Euclidean reveal radius for the tier.
func TorchRadius(tier int) float64 {
	return torchRadius[clampTier(tier)-1]
}

// TorchGasImmuneTier and up are immune to gas pockets.
const TorchGasImmuneTier = 4

// RopeSpeed is either a finite ascent rate or an instant teleport.
type RopeSpeed struct {
	BlocksPerSec float64
	Teleport     bool
}

var ropeSpeeds = [MaxTier]RopeSpeed{
	{BlocksPerSec: 2}, {BlocksPerSec: 3}, {BlocksPerSec: 4},
	{BlocksPerSec: 6}, {BlocksPerSec: 8}, {BlocksPerSec: 12},
	{Teleport: true},
}

// RopeSpeedFor returns the ascent behaviour for the tier.
func RopeSpeedFor(tier int) RopeSpeed {
	return ropeSpeeds[clampTier(tier)-1]
}

// ropeCheckpoints indexes how many depth checkpoints a rope can hold.
var ropeCheckpoints = [MaxTier]int{1, 2, 3, 4, 5, 6, 8}

// RopeMaxCheckpoints returns the checkpoint capacity for the tier.
func RopeMaxCheckpoints(tier int) int {
	return ropeCheckpoints[clampTier(tier)-1]
}

// ValidSlot reports whether the slot name exists.
func ValidSlot(slot EquipmentSlot) bool {
	for _, s := range EquipmentSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func clampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}
