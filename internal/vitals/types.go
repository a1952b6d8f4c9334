package vitals

import "time"

// ActivityKind names a product event that nudges pet stats.
type ActivityKind string

const (
	ActivityLogoDesign       ActivityKind = "logo_design"
	ActivityImageGeneration  ActivityKind = "image_generation"
	ActivityCopywriting      ActivityKind = "copywriting"
	ActivityResearch         ActivityKind = "research"
	ActivitySocialPost       ActivityKind = "social_post"
	ActivityProjectCompleted ActivityKind = "project_completed"
)

// MiniGameKind names a mini-game whose win boosts one stat.
type MiniGameKind string

const (
	MiniGameMemory  MiniGameKind = "memory"
	MiniGameRhythm  MiniGameKind = "rhythm"
	MiniGameDressUp MiniGameKind = "dress_up"
	MiniGameFetch   MiniGameKind = "fetch"
)

const (
	// DefaultDecayInterval is how often the decay loop ticks.
	DefaultDecayInterval = 5 * time.Second
	// DefaultDecayRate is subtracted from each stat per tick. Energy loses twice as much.
	DefaultDecayRate = 0.1
	// LowEnergyThreshold is the energy below which a pet renders desaturated.
	LowEnergyThreshold = 20.0

	interactionEnergy  = 1.0
	miniGameBoost      = 15.0
	miniGameEnergyCost = 5.0
)

// Delta is a stat adjustment.
type Delta struct {
	Energy       float64
	Creativity   float64
	Intelligence float64
	Charisma     float64
}

var activityDeltas = map[ActivityKind]Delta{
	ActivityLogoDesign:       {Creativity: 0.2},
	ActivityImageGeneration:  {Creativity: 0.3},
	ActivityCopywriting:      {Intelligence: 0.2},
	ActivityResearch:         {Intelligence: 0.3},
	ActivitySocialPost:       {Charisma: 0.2},
	ActivityProjectCompleted: {Energy: 20, Creativity: 10},
}

var miniGameDeltas = map[MiniGameKind]Delta{
	MiniGameMemory:  {Intelligence: miniGameBoost},
	MiniGameRhythm:  {Creativity: miniGameBoost},
	MiniGameDressUp: {Charisma: miniGameBoost},
	MiniGameFetch:   {Energy: miniGameBoost},
}
