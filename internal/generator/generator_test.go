package generator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/easeaico/project-pet/internal/types"
)

type fakeNarrator struct {
	text  string
	err   error
	calls int
	name  string
	tier  types.Tier
	trait types.Trait
}

func (n *fakeNarrator) Narrate(ctx context.Context, name string, tier types.Tier, trait types.Trait) (string, error) {
	n.calls++
	n.name = name
	n.tier = tier
	n.trait = trait
	return n.text, n.err
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		r    float64
		pity int
		want types.Tier
	}{
		{0.10, 0, types.TierCommon},
		{0.649, 0, types.TierCommon},
		{0.65, 0, types.TierEpic},
		{0.95, 0, types.TierLegendary},
		{0.99, 0, types.TierMythic},
		{0.10, 5, types.TierEpic},
		{0.0, 5, types.TierEpic},
		{0.999, 9, types.TierMythic},
		{0.10, 4, types.TierCommon},
	}
	for _, tt := range tests {
		if got := TierFor(tt.r, tt.pity); got != tt.want {
			t.Errorf("TierFor(%v, %d): expected %s, got %s", tt.r, tt.pity, tt.want, got)
		}
	}
}

func TestRollPetCommonSeed(t *testing.T) {
	roll := RollPet(1, 0)
	pet := roll.Pet

	if pet.Tier != types.TierCommon || roll.Pity != 1 {
		t.Fatalf("expected common with pity 1, got %s/%d", pet.Tier, roll.Pity)
	}
	wantPersonality := types.Personality{Bold: 2, Modern: 4, Creative: 5, Rustic: 7, Minimalist: 0, Luxury: 4, Feminine: 8, Playful: 6}
	if pet.Personality != wantPersonality {
		t.Fatalf("unexpected personality: %#v", pet.Personality)
	}
	if roll.Dominant != types.TraitFeminine {
		t.Fatalf("expected feminine dominant, got %s", roll.Dominant)
	}
	if pet.Name != "Gentle Moss Mite" {
		t.Fatalf("unexpected name: %s", pet.Name)
	}
	if pet.Blueprint.URL != "/blueprints/common/moss_mite.svg" {
		t.Fatalf("unexpected blueprint: %s", pet.Blueprint.URL)
	}
	if *pet.BattleStats != (types.BattleStats{HP: 114, ATK: 13, DEF: 11, SPD: 8}) {
		t.Fatalf("unexpected battle stats: %#v", pet.BattleStats)
	}
	wantOrganic := types.Tone{
		Base:      types.HSL{H: 230, S: 41, L: 48},
		Highlight: types.HSL{H: 230, S: 41, L: 58},
		Shadow:    types.HSL{H: 230, S: 41, L: 38},
	}
	if pet.Colors.Organic != wantOrganic {
		t.Fatalf("unexpected organic tone: %#v", pet.Colors.Organic)
	}
	if len(pet.Buffs) != 0 {
		t.Fatalf("expected no buffs for common, got %v", pet.Buffs)
	}
	if pet.Stage != types.StageActive || pet.Stats != types.DefaultStats() {
		t.Fatalf("unexpected stage/stats: %s %#v", pet.Stage, pet.Stats)
	}
}

func TestRollPetPityLiftsCommonSeed(t *testing.T) {
	roll := RollPet(1, 5)
	if roll.Pet.Tier != types.TierEpic || roll.Pity != 0 {
		t.Fatalf("expected epic with pity reset, got %s/%d", roll.Pet.Tier, roll.Pity)
	}
	if *roll.Pet.BattleStats != (types.BattleStats{HP: 141, ATK: 18, DEF: 16, SPD: 10}) {
		t.Fatalf("unexpected battle stats: %#v", roll.Pet.BattleStats)
	}
	if roll.Pet.Colors.Energy.Highlight != (types.HSL{H: 353, S: 71, L: 60}) {
		t.Fatalf("unexpected energy highlight: %#v", roll.Pet.Colors.Energy.Highlight)
	}
}

func TestRollPetMythicSeed(t *testing.T) {
	roll := RollPet(56, 0)
	pet := roll.Pet
	if pet.Tier != types.TierMythic {
		t.Fatalf("expected mythic, got %s", pet.Tier)
	}
	if !reflect.DeepEqual(pet.Buffs, []string{"mythic_aura"}) {
		t.Fatalf("expected exactly one mythic buff, got %v", pet.Buffs)
	}
	if pet.Name != "Bouncy Star Dragon" {
		t.Fatalf("unexpected name: %s", pet.Name)
	}
	if *pet.BattleStats != (types.BattleStats{HP: 205, ATK: 28, DEF: 27, SPD: 15}) {
		t.Fatalf("unexpected battle stats: %#v", pet.BattleStats)
	}
}

func TestRollPetLegendarySeed(t *testing.T) {
	pet := RollPet(46, 0).Pet
	if pet.Tier != types.TierLegendary || pet.Blueprint.URL != "/blueprints/legendary/chrome_whale.svg" {
		t.Fatalf("unexpected legendary roll: %s %s", pet.Tier, pet.Blueprint.URL)
	}
	if !reflect.DeepEqual(pet.Buffs, []string{"radiant_aura"}) {
		t.Fatalf("unexpected buffs: %v", pet.Buffs)
	}
}

func TestRollPetIsPure(t *testing.T) {
	for seed := uint32(0); seed < 500; seed += 7 {
		a, b := RollPet(seed, 2), RollPet(seed, 2)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("seed %d produced different rolls", seed)
		}
	}
}

func TestRollPetPityNeverCommon(t *testing.T) {
	for seed := uint32(0); seed < 3000; seed++ {
		for _, pity := range []int{5, 6, 12} {
			roll := RollPet(seed, pity)
			if roll.Pet.Tier == types.TierCommon {
				t.Fatalf("seed %d pity %d produced common", seed, pity)
			}
			if roll.Pity != 0 {
				t.Fatalf("expected pity reset, got %d", roll.Pity)
			}
		}
	}
}

func TestRollPetRanges(t *testing.T) {
	for seed := uint32(0); seed < 2000; seed++ {
		pet := RollPet(seed, 0).Pet
		for _, tr := range types.Traits {
			if v := pet.Personality.Get(tr); v < 0 || v > 10 {
				t.Fatalf("seed %d trait %s out of range: %d", seed, tr, v)
			}
		}
		bt := battleRanges[pet.Tier]
		if pet.BattleStats.HP < bt.hp.base || pet.BattleStats.HP > bt.hp.base+bt.hp.spread {
			t.Fatalf("seed %d hp out of range: %d", seed, pet.BattleStats.HP)
		}
		for _, tone := range []types.Tone{pet.Colors.Organic, pet.Colors.Mechanical, pet.Colors.Energy} {
			if tone.Base.H < 0 || tone.Base.H >= 360 || tone.Highlight.L < tone.Base.L || tone.Shadow.L > tone.Base.L {
				t.Fatalf("seed %d bad tone: %#v", seed, tone)
			}
		}
	}
}

func TestEngineGenerate(t *testing.T) {
	narrator := &fakeNarrator{text: "Born from a stray pixel."}
	engine := NewEngine(narrator)

	pet, pity, err := engine.Generate(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pet.Narrative != "Born from a stray pixel." || pity != 1 {
		t.Fatalf("unexpected result: %q %d", pet.Narrative, pity)
	}
	if narrator.name != "Gentle Moss Mite" || narrator.tier != types.TierCommon || narrator.trait != types.TraitFeminine {
		t.Fatalf("unexpected narrator input: %s %s %s", narrator.name, narrator.tier, narrator.trait)
	}
}

func TestEngineGenerateNarrativeFailure(t *testing.T) {
	engine := NewEngine(&fakeNarrator{err: errors.New("upstream 503")})

	pet, pity, err := engine.Generate(context.Background(), 1, 3)
	if !errors.Is(err, types.ErrNarrativeFailure) {
		t.Fatalf("expected narrative failure, got %v", err)
	}
	if pity != 3 {
		t.Fatalf("expected pity unchanged, got %d", pity)
	}
	if pet.Stage != "" {
		t.Fatalf("expected no record on failure, got %#v", pet)
	}
}

func TestEngineNotConfigured(t *testing.T) {
	var engine *Engine
	if _, _, err := engine.Generate(context.Background(), 1, 0); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}
