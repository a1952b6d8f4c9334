// Package prompt renders the instructions sent to the narration model.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/genai"

	"github.com/easeaico/project-pet/internal/types"
)

const systemText = `You write flavor text for a collectible virtual companion.
Rules:
1. Two sentences at most, under 280 characters.
2. Present tense, warm and a little whimsical.
3. Never mention stats, numbers, rarity percentages or that you are an AI.
4. Reply with JSON only: {"narrative": "..."}`

const narrativeTemplateText = `A new companion has just hatched.
Name: {{.Name}}
Rarity: {{.Tier}}{{if .Rare}} (rare, give it a sense of legend){{end}}
Strongest trait: {{.Trait}}{{with .TraitHint}} ({{.}}){{end}}
Describe its first moment in the world.`

var narrativeTemplate = template.Must(template.New("narrative").Parse(narrativeTemplateText))

var traitHints = map[types.Trait]string{
	types.TraitBold:       "fearless, loud, first to act",
	types.TraitModern:     "sleek, curious about gadgets",
	types.TraitCreative:   "dreamy, always making something",
	types.TraitRustic:     "earthy, loves moss and rain",
	types.TraitMinimalist: "calm, tidy, speaks little",
	types.TraitLuxury:     "fond of shiny things and velvet",
	types.TraitFeminine:   "gentle, graceful, nurturing",
	types.TraitPlayful:    "mischievous and bouncy",
}

// NarrativeInput is what the narration prompt is built from.
type NarrativeInput struct {
	Name  string
	Tier  types.Tier
	Trait types.Trait
}

// BuildNarrative returns the system instruction and the user turn.
func BuildNarrative(in NarrativeInput) (*genai.Content, []*genai.Content, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("pet name is required")
	}

	data := struct {
		Name      string
		Tier      types.Tier
		Rare      bool
		Trait     types.Trait
		TraitHint string
	}{
		Name:      name,
		Tier:      in.Tier,
		Rare:      in.Tier == types.TierLegendary || in.Tier == types.TierMythic,
		Trait:     in.Trait,
		TraitHint: traitHints[in.Trait],
	}

	var buf bytes.Buffer
	if err := narrativeTemplate.Execute(&buf, data); err != nil {
		return nil, nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	system := genai.NewContentFromText(systemText, "system")
	user := genai.NewContentFromText(buf.String(), "user")
	return system, []*genai.Content{user}, nil
}
