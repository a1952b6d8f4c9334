package types

import (
	"encoding/json"
	"strings"
)

// HydratePet decodes a stored pet blob field by field. A field that is
// missing or has the wrong shape falls back to its default without
// affecting its siblings, so older or damaged rows still load.
func HydratePet(raw []byte) Pet {
	pet := DefaultPet()
	if len(raw) == 0 {
		return pet
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return pet
	}

	pet.Name = decodeField(fields, "name", pet.Name)
	pet.Stage = Stage(decodeField(fields, "stage", string(pet.Stage)))
	pet.Tier = Tier(decodeField(fields, "tier", string(pet.Tier)))
	pet.LastFed = decodeField(fields, "lastFed", int64(0))
	pet.LastPlayed = decodeField(fields, "lastPlayed", int64(0))
	pet.Narrative = decodeField(fields, "narrative", "")
	pet.Blueprint = decodeField(fields, "blueprint", Blueprint{})
	pet.Buffs = decodeField(fields, "buffs", []string{})
	pet.BattleStats = decodeField[*BattleStats](fields, "battleStats", nil)

	if statFields, ok := nested(fields, "stats"); ok {
		def := DefaultStats()
		pet.Stats = Stats{
			Energy:       decodeField(statFields, "energy", def.Energy),
			Creativity:   decodeField(statFields, "creativity", def.Creativity),
			Intelligence: decodeField(statFields, "intelligence", def.Intelligence),
			Charisma:     decodeField(statFields, "charisma", def.Charisma),
		}
	}

	if traitFields, ok := nested(fields, "personality"); ok {
		for _, t := range Traits {
			pet.Personality.Set(t, int(decodeField(traitFields, string(t), 0.0)))
		}
	}

	if colorFields, ok := nested(fields, "colors"); ok {
		pet.Colors = Palette{
			Organic:    decodeField(colorFields, "organic", Tone{}),
			Mechanical: decodeField(colorFields, "mechanical", Tone{}),
			Energy:     decodeField(colorFields, "energy", Tone{}),
		}
	}

	return Sanitize(pet)
}

// Sanitize repairs a record so every field is in range. It is idempotent.
func Sanitize(pet Pet) Pet {
	out := pet.Clone()

	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		out.Name = DefaultPetName
	}
	if !out.Stage.Valid() {
		out.Stage = StageDormant
	}
	if !out.Tier.Valid() {
		if out.Stage.Generated() {
			out.Tier = TierCommon
		} else {
			out.Tier = TierNone
		}
	}

	out.Stats = out.Stats.Clamp()
	for _, t := range Traits {
		out.Personality.Set(t, out.Personality.Get(t))
	}
	out.Colors = Palette{
		Organic:    sanitizeTone(out.Colors.Organic),
		Mechanical: sanitizeTone(out.Colors.Mechanical),
		Energy:     sanitizeTone(out.Colors.Energy),
	}

	if out.BattleStats != nil {
		bs := *out.BattleStats
		bs.HP = max(bs.HP, 0)
		bs.ATK = max(bs.ATK, 0)
		bs.DEF = max(bs.DEF, 0)
		bs.SPD = max(bs.SPD, 0)
		out.BattleStats = &bs
	}

	buffs := make([]string, 0, len(out.Buffs))
	for _, b := range out.Buffs {
		if b = strings.TrimSpace(b); b != "" {
			buffs = append(buffs, b)
		}
	}
	out.Buffs = buffs

	if out.LastFed < 0 {
		out.LastFed = 0
	}
	if out.LastPlayed < 0 {
		out.LastPlayed = 0
	}
	return out
}

func sanitizeTone(t Tone) Tone {
	return Tone{
		Base:      sanitizeHSL(t.Base),
		Highlight: sanitizeHSL(t.Highlight),
		Shadow:    sanitizeHSL(t.Shadow),
	}
}

func sanitizeHSL(c HSL) HSL {
	h := c.H % 360
	if h < 0 {
		h += 360
	}
	return HSL{H: h, S: min(max(c.S, 0), 100), L: min(max(c.L, 0), 100)}
}

func nested(fields map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func decodeField[T any](fields map[string]json.RawMessage, key string, def T) T {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}
