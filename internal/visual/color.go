package visual

import (
	"fmt"
	"math"

	"github.com/easeaico/project-pet/internal/archetype"
	"github.com/easeaico/project-pet/internal/types"
	"github.com/easeaico/project-pet/internal/vitals"
)

// Colors are the two tones threaded through every primitive.
type Colors struct {
	Body   types.HSL `json:"body"`
	Accent types.HSL `json:"accent"`
}

var baseHue = map[archetype.Archetype]float64{
	archetype.Beast:   25,
	archetype.Machine: 205,
	archetype.Mystic:  280,
	archetype.Chibi:   330,
}

const (
	charismaHueShift  = 0.6
	baseSaturation    = 35.0
	energySaturation  = 0.5
	baseLightness     = 40.0
	energyLightness   = 0.15
	drainedSaturation = 10
)

// ComputeColors derives the body and accent colors from archetype and stats.
// A low-energy pet is drawn desaturated.
func ComputeColors(arch archetype.Archetype, stats types.Stats) Colors {
	stats = stats.Clamp()
	hue := wrapHue(int(math.Round(baseHue[arch] + stats.Charisma*charismaHueShift)))
	sat := int(math.Round(baseSaturation + stats.Energy*energySaturation))
	light := int(math.Round(baseLightness + stats.Energy*energyLightness))
	if vitals.LowEnergy(stats) {
		sat = drainedSaturation
	}
	body := types.HSL{H: hue, S: sat, L: light}
	return Colors{
		Body:   body,
		Accent: types.HSL{H: wrapHue(hue + 180), S: sat, L: light},
	}
}

// CSS formats c as a CSS hsl() color.
func CSS(c types.HSL) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", c.H, c.S, c.L)
}

func shade(c types.HSL, dl int) types.HSL {
	c.L = min(max(c.L+dl, 0), 100)
	return c
}

func wrapHue(h int) int {
	h %= 360
	if h < 0 {
		h += 360
	}
	return h
}
