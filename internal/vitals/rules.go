// Package vitals holds the pure stat rules: passive decay and the
// discrete boosts applied by activity, interaction and mini-game events.
package vitals

import (
	"time"

	"github.com/easeaico/project-pet/internal/types"
)

// Rules applies decay and event deltas to a pet record.
type Rules struct {
	decayRate float64
}

// NewRules returns Rules with the given per-tick decay rate.
func NewRules(decayRate float64) *Rules {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}
	return &Rules{decayRate: decayRate}
}

// Decay attenuates every stat by one tick. Pre-generation records do not
// decay. The bool reports whether anything changed.
func (r *Rules) Decay(pet types.Pet) (types.Pet, bool) {
	if !pet.Stage.Generated() {
		return pet, false
	}
	before := pet.Stats
	pet.Stats = apply(pet.Stats, Delta{
		Energy:       -2 * r.decayRate,
		Creativity:   -r.decayRate,
		Intelligence: -r.decayRate,
		Charisma:     -r.decayRate,
	})
	return pet, pet.Stats != before
}

// Activity applies the fixed delta for kind. The bool reports whether the
// record changed; pre-generation records and capped stats leave it as is.
func (r *Rules) Activity(pet types.Pet, kind ActivityKind) (types.Pet, bool, error) {
	delta, ok := activityDeltas[kind]
	if !ok {
		return pet, false, types.InvalidOperation("unknown activity %q", kind)
	}
	if !pet.Stage.Generated() {
		return pet, false, nil
	}
	before := pet.Stats
	pet.Stats = apply(pet.Stats, delta)
	return pet, pet.Stats != before, nil
}

// Interaction records a feed/pet interaction.
func (r *Rules) Interaction(pet types.Pet, now time.Time) (types.Pet, bool) {
	if !pet.Stage.Generated() {
		return pet, false
	}
	pet.Stats = apply(pet.Stats, Delta{Energy: interactionEnergy})
	pet.LastFed = now.UnixMilli()
	return pet, true
}

// MiniGameWin boosts the stat keyed by kind, then charges the energy cost.
func (r *Rules) MiniGameWin(pet types.Pet, kind MiniGameKind, now time.Time) (types.Pet, bool, error) {
	delta, ok := miniGameDeltas[kind]
	if !ok {
		return pet, false, types.InvalidOperation("unknown mini-game %q", kind)
	}
	if !pet.Stage.Generated() {
		return pet, false, nil
	}
	pet.Stats = apply(pet.Stats, delta)
	pet.Stats = apply(pet.Stats, Delta{Energy: -miniGameEnergyCost})
	pet.LastPlayed = now.UnixMilli()
	return pet, true, nil
}

// StyleChoice increments one personality trait. Only generated pets have
// a personality to shape. A trait already at 10 is left unchanged.
func (r *Rules) StyleChoice(pet types.Pet, trait types.Trait) (types.Pet, bool, error) {
	if !pet.Stage.Generated() {
		return pet, false, types.InvalidOperation("style choices need an active pet")
	}
	before := pet.Personality.Get(trait)
	if !pet.Personality.Set(trait, before+1) {
		return pet, false, types.InvalidOperation("unknown trait %q", trait)
	}
	return pet, pet.Personality.Get(trait) != before, nil
}

// LowEnergy reports whether the pet should render desaturated.
func LowEnergy(stats types.Stats) bool {
	return stats.Energy < LowEnergyThreshold
}

func apply(stats types.Stats, d Delta) types.Stats {
	stats.Energy += d.Energy
	stats.Creativity += d.Creativity
	stats.Intelligence += d.Intelligence
	stats.Charisma += d.Charisma
	return stats.Clamp()
}
