// Package archetype maps a personality vector to one of four visual families.
package archetype

import (
	"sort"

	"github.com/easeaico/project-pet/internal/types"
)

// Archetype is the aesthetic family a pet renders as.
type Archetype string

const (
	Beast   Archetype = "beast"
	Machine Archetype = "machine"
	Mystic  Archetype = "mystic"
	Chibi   Archetype = "chibi"
)

// All lists every archetype, fallback last.
var All = []Archetype{Beast, Machine, Mystic, Chibi}

const strongSignal = 7

type rule struct {
	archetype Archetype
	strong    []types.Trait
	pair      [2]types.Trait
}

// Rules are checked in order; the first match wins.
var rules = []rule{
	{archetype: Beast, strong: []types.Trait{types.TraitBold, types.TraitRustic}, pair: [2]types.Trait{types.TraitBold, types.TraitRustic}},
	{archetype: Machine, strong: []types.Trait{types.TraitModern, types.TraitMinimalist}, pair: [2]types.Trait{types.TraitModern, types.TraitMinimalist}},
	{archetype: Mystic, strong: []types.Trait{types.TraitCreative, types.TraitLuxury}, pair: [2]types.Trait{types.TraitCreative, types.TraitFeminine}},
}

var fallback = map[types.Trait]Archetype{
	types.TraitBold:       Beast,
	types.TraitRustic:     Beast,
	types.TraitModern:     Machine,
	types.TraitMinimalist: Machine,
	types.TraitCreative:   Mystic,
	types.TraitLuxury:     Mystic,
	types.TraitFeminine:   Mystic,
}

// Classify returns the archetype for p. A strong single trait or a
// matching top-two pair decides first; otherwise a uniquely dominant
// trait is looked up, and anything ambiguous is Chibi. Any tie for the
// maximum counts as ambiguous, so bold=5 and playful=5 is Chibi.
func Classify(p types.Personality) Archetype {
	top := TopTwo(p)
	for _, r := range rules {
		for _, t := range r.strong {
			if p.Get(t) > strongSignal {
				return r.archetype
			}
		}
		if samePair(top, r.pair) {
			return r.archetype
		}
	}

	dominant, unique := uniqueMax(p)
	if !unique {
		return Chibi
	}
	if a, ok := fallback[dominant]; ok {
		return a
	}
	return Chibi
}

// TopTwo returns the two highest traits, canonical order breaking ties.
func TopTwo(p types.Personality) [2]types.Trait {
	ranked := append([]types.Trait(nil), types.Traits...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return p.Get(ranked[i]) > p.Get(ranked[j])
	})
	return [2]types.Trait{ranked[0], ranked[1]}
}

func samePair(a, b [2]types.Trait) bool {
	return (a[0] == b[0] && a[1] == b[1]) || (a[0] == b[1] && a[1] == b[0])
}

func uniqueMax(p types.Personality) (types.Trait, bool) {
	best := p.Dominant()
	for _, t := range types.Traits {
		if t != best && p.Get(t) == p.Get(best) {
			return best, false
		}
	}
	return best, true
}
