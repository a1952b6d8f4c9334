package narrative

import (
	"context"
	"fmt"

	"github.com/easeaico/project-pet/internal/random"
	"github.com/easeaico/project-pet/internal/types"
)

var staticLines = map[types.Tier][]string{
	types.TierCommon: {
		"%s tumbles out of its capsule and immediately looks for a snack.",
		"%s yawns, stretches, and decides this desk is home now.",
	},
	types.TierEpic: {
		"%s arrives in a swirl of sparks, humming a tune nobody taught it.",
		"%s studies you with bright eyes, already planning its first adventure.",
	},
	types.TierLegendary: {
		"Old songs spoke of %s; now it stands here, glowing faintly.",
		"The air shimmers as %s steps forward, calm as a mountain.",
	},
	types.TierMythic: {
		"Stars dim for a heartbeat as %s opens its eyes for the first time.",
		"%s was a rumor yesterday. Today it curls up beside your keyboard.",
	},
}

// Static narrates from a fixed phrasebook. It never fails and is used
// when no model provider is configured.
type Static struct{}

// Narrate picks a line deterministically from the pet's name.
func (Static) Narrate(ctx context.Context, name string, tier types.Tier, trait types.Trait) (string, error) {
	lines, ok := staticLines[tier]
	if !ok {
		lines = staticLines[types.TierCommon]
	}
	line := lines[random.HashString(name+string(trait))%uint32(len(lines))]
	return fmt.Sprintf(line, name), nil
}
