// Package generator turns a seed and a pity counter into a new pet.
package generator

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/easeaico/project-pet/internal/random"
	"github.com/easeaico/project-pet/internal/types"
)

// Roll is the deterministic part of a generation: everything except the
// narrative text.
type Roll struct {
	Pet      types.Pet
	Pity     int
	Dominant types.Trait
	Draw     float64
}

// RollPet derives a pet from seed. The result depends only on seed and
// pity, so the same inputs always produce an identical record.
func RollPet(seed uint32, pity int) Roll {
	rng := random.New(seed)

	var personality types.Personality
	for _, t := range types.Traits {
		personality.Set(t, int(math.Floor(rng.Float64()*11)))
	}
	dominant := personality.Dominant()

	draw := rng.Float64()
	tier := TierFor(draw, pity)

	nextPity := 0
	if tier == types.TierCommon {
		nextPity = pity + 1
	}

	species := BlueprintName(tier, seed)
	colors := rollPalette(rng, tier)
	battle := rollBattleStats(rng, tier)

	buffs := []string{}
	if buff, ok := tierBuffs[tier]; ok {
		buffs = append(buffs, buff)
	}

	pet := types.Pet{
		Name:        PetName(dominant, species),
		Stage:       types.StageActive,
		Tier:        tier,
		Stats:       types.DefaultStats(),
		Personality: personality,
		Blueprint:   types.Blueprint{URL: fmt.Sprintf("/blueprints/%s/%s.svg", tier, species)},
		Colors:      colors,
		BattleStats: &battle,
		Buffs:       buffs,
	}

	return Roll{Pet: pet, Pity: nextPity, Dominant: dominant, Draw: draw}
}

// TierFor thresholds a raw draw. At or above the pity threshold the draw
// is remapped into the top 35% of the range, which can never be common.
func TierFor(r float64, pity int) types.Tier {
	if pity >= PityThreshold {
		r = pityFloor + r*pitySpan
	}
	switch {
	case r < epicThreshold:
		return types.TierCommon
	case r < legendaryThreshold:
		return types.TierEpic
	case r < mythicThreshold:
		return types.TierLegendary
	default:
		return types.TierMythic
	}
}

// BlueprintName picks the base illustration for a tier by seed.
func BlueprintName(tier types.Tier, seed uint32) string {
	pool := blueprintPools[tier]
	if len(pool) == 0 {
		pool = blueprintPools[types.TierCommon]
	}
	return pool[seed%uint32(len(pool))]
}

// PetName builds the display name from the dominant trait and species.
func PetName(dominant types.Trait, species string) string {
	adjective, ok := traitAdjectives[dominant]
	if !ok {
		adjective = "little"
	}
	return cases.Title(language.English).String(adjective + " " + strings.ReplaceAll(species, "_", " "))
}

func rollPalette(rng *random.LCG, tier types.Tier) types.Palette {
	tc, ok := tierColors[tier]
	if !ok {
		tc = tierColors[types.TierCommon]
	}
	return types.Palette{
		Organic:    rollTone(rng, tc),
		Mechanical: rollTone(rng, tc),
		Energy:     rollTone(rng, tc),
	}
}

// rollTone consumes three draws: hue, saturation, lightness.
func rollTone(rng *random.LCG, tc tierColor) types.Tone {
	h := int(math.Floor(rng.Float64() * 360))
	s := tc.satMin + int(math.Floor(rng.Float64()*float64(tc.satMax-tc.satMin+1)))
	l := lightMin + int(math.Floor(rng.Float64()*float64(lightMax-lightMin+1)))

	return types.Tone{
		Base:      types.HSL{H: h, S: s, L: l},
		Highlight: types.HSL{H: h, S: s, L: min(l+tc.spread, 100)},
		Shadow:    types.HSL{H: h, S: s, L: max(l-tc.spread, 0)},
	}
}

func rollBattleStats(rng *random.LCG, tier types.Tier) types.BattleStats {
	bt, ok := battleRanges[tier]
	if !ok {
		bt = battleRanges[types.TierCommon]
	}
	return types.BattleStats{
		HP:  bt.hp.roll(rng),
		ATK: bt.atk.roll(rng),
		DEF: bt.def.roll(rng),
		SPD: bt.spd.roll(rng),
	}
}

func (r statRange) roll(rng *random.LCG) int {
	return r.base + int(math.Floor(rng.Float64()*float64(r.spread+1)))
}
