package game

// EventType identifies a random event rolled on block destruction.
type EventType string

const (
	EventTreasureChest     EventType = "treasure_chest"
	EventUndergroundSpring EventType = "underground_spring"
	EventCaveIn            EventType = "cave_in"
	EventGasPocket         EventType = "gas_pocket"
	EventRockSlide         EventType = "rock_slide"
)

// EventPriority is the roll order; the first event whose chance passes wins
// for that block.
var EventPriority = []EventType{
	EventTreasureChest,
	EventUndergroundSpring,
	EventCaveIn,
	EventGasPocket,
	EventRockSlide,
}

// eventChances holds the per-destroyed-block base probability of each event.
var eventChances = map[EventType]float64{
	EventTreasureChest:     0.008,
	EventUndergroundSpring: 0.010,
	EventCaveIn:            0.020,
	EventGasPocket:         0.015,
	EventRockSlide:         0.018,
}

// EventChance returns the base roll probability of the event.
func EventChance(e EventType) float64 {
	return eventChances[e]
}

// Positive reports whether the event benefits the player. Positive events
// are never gated by equipment.
func (e EventType) Positive() bool {
	return e == EventTreasureChest || e == EventUndergroundSpring
}
