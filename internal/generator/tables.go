package generator

import "github.com/easeaico/project-pet/internal/types"

const (
	// PityThreshold is the number of consecutive commons after which the
	// tier draw is lifted into the top of the range.
	PityThreshold = 5
	pityFloor     = 0.65
	pitySpan      = 0.35

	epicThreshold      = 0.65
	legendaryThreshold = 0.90
	mythicThreshold    = 0.99
)

var blueprintPools = map[types.Tier][]string{
	types.TierCommon:    {"pebble_pup", "moss_mite", "puddle_pal", "twig_sprite"},
	types.TierEpic:      {"ember_fox", "circuit_owl", "tide_serpent", "crystal_moth"},
	types.TierLegendary: {"storm_gryphon", "aurora_stag", "chrome_whale", "void_lynx"},
	types.TierMythic:    {"star_dragon", "phoenix_regent", "eclipse_wyrm", "prism_kirin"},
}

type statRange struct {
	base, spread int
}

type battleTable struct {
	hp, atk, def, spd statRange
}

var battleRanges = map[types.Tier]battleTable{
	types.TierMythic:    {hp: statRange{200, 50}, atk: statRange{25, 10}, def: statRange{25, 10}, spd: statRange{15, 10}},
	types.TierLegendary: {hp: statRange{150, 40}, atk: statRange{20, 8}, def: statRange{20, 8}, spd: statRange{12, 8}},
	types.TierEpic:      {hp: statRange{120, 30}, atk: statRange{15, 6}, def: statRange{15, 6}, spd: statRange{10, 6}},
	types.TierCommon:    {hp: statRange{100, 20}, atk: statRange{10, 5}, def: statRange{10, 5}, spd: statRange{8, 5}},
}

// tierColor bounds saturation and sets the highlight/shadow spread.
type tierColor struct {
	satMin, satMax int
	spread         int
}

var tierColors = map[types.Tier]tierColor{
	types.TierCommon:    {satMin: 35, satMax: 60, spread: 10},
	types.TierEpic:      {satMin: 45, satMax: 75, spread: 15},
	types.TierLegendary: {satMin: 55, satMax: 90, spread: 20},
	types.TierMythic:    {satMin: 65, satMax: 100, spread: 25},
}

const (
	lightMin = 35
	lightMax = 65
)

var tierBuffs = map[types.Tier]string{
	types.TierLegendary: "radiant_aura",
	types.TierMythic:    "mythic_aura",
}

var traitAdjectives = map[types.Trait]string{
	types.TraitBold:       "brave",
	types.TraitModern:     "sleek",
	types.TraitCreative:   "dreamy",
	types.TraitRustic:     "wild",
	types.TraitMinimalist: "quiet",
	types.TraitLuxury:     "gilded",
	types.TraitFeminine:   "gentle",
	types.TraitPlayful:    "bouncy",
}
