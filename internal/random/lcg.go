// Package random provides the seeded generator that pet identities are
// derived from.
//
// The generator is a 32-bit linear congruential recurrence, so a given
// seed always replays the same sequence. It has no cryptographic
// strength and must not be used for secrets.
package random

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// Next advances seed by one step and returns the new state together with
// a value in [0,1).
func Next(seed uint32) (uint32, float64) {
	next := seed*lcgMultiplier + lcgIncrement
	return next, float64(next) / lcgModulus
}

// LCG is a stateful wrapper around Next.
type LCG struct {
	state uint32
	draws int
}

// New returns a generator seeded with seed.
func New(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Float64 returns the next value in [0,1).
func (g *LCG) Float64() float64 {
	var v float64
	g.state, v = Next(g.state)
	g.draws++
	return v
}
