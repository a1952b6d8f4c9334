package types

// Tier is the rarity assigned at generation.
type Tier string

const (
	TierNone      Tier = ""
	TierCommon    Tier = "common"
	TierEpic      Tier = "epic"
	TierLegendary Tier = "legendary"
	TierMythic    Tier = "mythic"
)

// Valid reports whether t is one of the four rarity tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCommon, TierEpic, TierLegendary, TierMythic:
		return true
	default:
		return false
	}
}

// Stage is the lifecycle stage of a pet record.
type Stage string

const (
	StageDormant Stage = "dormant"
	StageEgg     Stage = "egg"
	StageChild   Stage = "child"
	StageTeen    Stage = "teen"
	StageAdult   Stage = "adult"
	StageActive  Stage = "active"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageDormant, StageEgg, StageChild, StageTeen, StageAdult, StageActive:
		return true
	default:
		return false
	}
}

// Generated reports whether the record has been through generation.
// Child, teen and adult are refinements of the active stage.
func (s Stage) Generated() bool {
	switch s {
	case StageActive, StageChild, StageTeen, StageAdult:
		return true
	default:
		return false
	}
}

// Trait names one axis of the personality vector.
type Trait string

const (
	TraitBold       Trait = "bold"
	TraitModern     Trait = "modern"
	TraitCreative   Trait = "creative"
	TraitRustic     Trait = "rustic"
	TraitMinimalist Trait = "minimalist"
	TraitLuxury     Trait = "luxury"
	TraitFeminine   Trait = "feminine"
	TraitPlayful    Trait = "playful"
)

// Traits lists the personality axes in canonical order. Ties between
// traits are always broken by this order.
var Traits = []Trait{
	TraitBold,
	TraitModern,
	TraitCreative,
	TraitRustic,
	TraitMinimalist,
	TraitLuxury,
	TraitFeminine,
	TraitPlayful,
}

const (
	MinTrait = 0
	MaxTrait = 10
)

// Personality is the 8-trait vector that drives archetype classification.
type Personality struct {
	Bold       int `json:"bold"`
	Modern     int `json:"modern"`
	Creative   int `json:"creative"`
	Rustic     int `json:"rustic"`
	Minimalist int `json:"minimalist"`
	Luxury     int `json:"luxury"`
	Feminine   int `json:"feminine"`
	Playful    int `json:"playful"`
}

func (p *Personality) field(t Trait) *int {
	switch t {
	case TraitBold:
		return &p.Bold
	case TraitModern:
		return &p.Modern
	case TraitCreative:
		return &p.Creative
	case TraitRustic:
		return &p.Rustic
	case TraitMinimalist:
		return &p.Minimalist
	case TraitLuxury:
		return &p.Luxury
	case TraitFeminine:
		return &p.Feminine
	case TraitPlayful:
		return &p.Playful
	default:
		return nil
	}
}

// Get returns the value of a trait, or 0 for unknown traits.
func (p Personality) Get(t Trait) int {
	if f := p.field(t); f != nil {
		return *f
	}
	return 0
}

// Set assigns a trait value clamped to 0-10. It returns false for unknown traits.
func (p *Personality) Set(t Trait, value int) bool {
	f := p.field(t)
	if f == nil {
		return false
	}
	*f = ClampTrait(value)
	return true
}

// Dominant returns the highest trait, first in canonical order on ties.
func (p Personality) Dominant() Trait {
	best := Traits[0]
	for _, t := range Traits[1:] {
		if p.Get(t) > p.Get(best) {
			best = t
		}
	}
	return best
}

// ParseTrait validates a trait name.
func ParseTrait(name string) (Trait, bool) {
	for _, t := range Traits {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// ClampTrait bounds a trait to 0-10.
func ClampTrait(v int) int {
	switch {
	case v < MinTrait:
		return MinTrait
	case v > MaxTrait:
		return MaxTrait
	default:
		return v
	}
}

const (
	MinStat = 0.0
	MaxStat = 100.0
)

// Stats are the continuously mutated care values.
type Stats struct {
	Energy       float64 `json:"energy"`
	Creativity   float64 `json:"creativity"`
	Intelligence float64 `json:"intelligence"`
	Charisma     float64 `json:"charisma"`
}

// DefaultStats returns the stats every freshly generated pet starts with.
func DefaultStats() Stats {
	return Stats{Energy: 100, Creativity: 50, Intelligence: 50, Charisma: 50}
}

// Clamp bounds every stat to 0-100.
func (s Stats) Clamp() Stats {
	return Stats{
		Energy:       ClampStat(s.Energy),
		Creativity:   ClampStat(s.Creativity),
		Intelligence: ClampStat(s.Intelligence),
		Charisma:     ClampStat(s.Charisma),
	}
}

// ClampStat bounds a stat to 0-100. NaN collapses to 0.
func ClampStat(v float64) float64 {
	switch {
	case v != v:
		return MinStat
	case v < MinStat:
		return MinStat
	case v > MaxStat:
		return MaxStat
	default:
		return v
	}
}

// Blueprint references the static base illustration.
type Blueprint struct {
	URL string `json:"url"`
}

// HSL is a hue (0-359), saturation and lightness (0-100) triple.
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// Tone is one sub-palette.
type Tone struct {
	Base      HSL `json:"base"`
	Highlight HSL `json:"highlight"`
	Shadow    HSL `json:"shadow"`
}

// Palette holds the organic, mechanical and energy sub-palettes.
type Palette struct {
	Organic    Tone `json:"organic"`
	Mechanical Tone `json:"mechanical"`
	Energy     Tone `json:"energy"`
}

// BattleStats are drawn once at generation. Combat itself is not implemented.
type BattleStats struct {
	HP  int `json:"hp"`
	ATK int `json:"atk"`
	DEF int `json:"def"`
	SPD int `json:"spd"`
}

// Pet is the persisted creature record.
type Pet struct {
	Name        string       `json:"name"`
	Stage       Stage        `json:"stage"`
	Tier        Tier         `json:"tier"`
	Stats       Stats        `json:"stats"`
	LastFed     int64        `json:"lastFed"`
	LastPlayed  int64        `json:"lastPlayed"`
	Personality Personality  `json:"personality"`
	Narrative   string       `json:"narrative"`
	Blueprint   Blueprint    `json:"blueprint"`
	Colors      Palette      `json:"colors"`
	BattleStats *BattleStats `json:"battleStats"`
	Buffs       []string     `json:"buffs"`
}

// DefaultPetName is used for records that have not been named yet.
const DefaultPetName = "Dormant Capsule"

// DefaultPet returns the dormant-capsule record created on first load.
func DefaultPet() Pet {
	return Pet{
		Name:  DefaultPetName,
		Stage: StageDormant,
		Tier:  TierNone,
		Stats: DefaultStats(),
		Buffs: []string{},
	}
}

// Clone returns a deep copy of the record.
func (p Pet) Clone() Pet {
	out := p
	if p.BattleStats != nil {
		bs := *p.BattleStats
		out.BattleStats = &bs
	}
	out.Buffs = append([]string{}, p.Buffs...)
	return out
}

// Row is everything stored on the owning user's row.
type Row struct {
	UserID      string `json:"userId"`
	Pet         Pet    `json:"pet"`
	PityCounter int    `json:"pityCounter"`
	Fragments   int    `json:"fragments"`
}

// Patch is a partial save. Nil fields are left untouched.
type Patch struct {
	Pet         *Pet
	PityCounter *int
	Fragments   *int
	// Version orders patches cut from one in-memory record. Zero means
	// unordered. It is not stored.
	Version uint64
}

// Merge overlays the non-nil fields of next on p and keeps the higher version.
func (p Patch) Merge(next Patch) Patch {
	p.Version = max(p.Version, next.Version)
	if next.Pet != nil {
		p.Pet = next.Pet
	}
	if next.PityCounter != nil {
		p.PityCounter = next.PityCounter
	}
	if next.Fragments != nil {
		p.Fragments = next.Fragments
	}
	return p
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Pet == nil && p.PityCounter == nil && p.Fragments == nil
}
