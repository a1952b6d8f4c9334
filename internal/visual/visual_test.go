package visual

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/easeaico/project-pet/internal/archetype"
	"github.com/easeaico/project-pet/internal/types"
)

func petWith(stage types.Stage, tier types.Tier, p types.Personality) types.Pet {
	pet := types.DefaultPet()
	pet.Name = "Test"
	pet.Stage = stage
	pet.Tier = tier
	pet.Personality = p
	return pet
}

var (
	beastTraits   = types.Personality{Bold: 9, Rustic: 4}
	machineTraits = types.Personality{Modern: 9, Minimalist: 3}
	mysticTraits  = types.Personality{Creative: 9, Feminine: 5}
	chibiTraits   = types.Personality{Playful: 6, Bold: 6}
)

func layerNames(s Scene) []string {
	names := make([]string, 0, len(s.Layers))
	for _, l := range s.Layers {
		names = append(names, l.Name)
	}
	return names
}

func TestComposePlaceholder(t *testing.T) {
	for _, stage := range []types.Stage{types.StageDormant, types.StageEgg} {
		scene := Compose(petWith(stage, types.TierNone, beastTraits))
		if len(scene.Layers) != 1 || scene.Layers[0].Name != LayerPlaceholder {
			t.Fatalf("%s: expected a single placeholder layer, got %v", stage, layerNames(scene))
		}
		if _, ok := scene.Layer(LayerFace); ok {
			t.Fatalf("%s: expected no face layer", stage)
		}
		if scene.Archetype != "" || len(scene.Defs) != 0 {
			t.Fatalf("%s: unexpected archetype or defs: %#v", stage, scene)
		}
	}
}

func TestComposeLayerOrder(t *testing.T) {
	scene := Compose(petWith(types.StageAdult, types.TierEpic, beastTraits))

	want := []string{LayerBack, LayerBody, LayerHead, LayerTail, LayerFace}
	got := layerNames(scene)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected layers %v, got %v", want, got)
	}
	if scene.Archetype != archetype.Beast || scene.Body != "beast_prowler" {
		t.Fatalf("unexpected body: %s %s", scene.Archetype, scene.Body)
	}
}

func TestComposeOmitsMissingAccessories(t *testing.T) {
	scene := Compose(petWith(types.StageChild, types.TierCommon, machineTraits))

	want := []string{LayerBody, LayerHead, LayerFace}
	if got := layerNames(scene); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected layers %v, got %v", want, got)
	}
}

func TestBodyTable(t *testing.T) {
	tests := []struct {
		arch  archetype.Archetype
		stage types.Stage
		want  string
	}{
		{archetype.Beast, types.StageChild, "beast_cub"},
		{archetype.Beast, types.StageTeen, "beast_yearling"},
		{archetype.Beast, types.StageActive, "beast_prowler"},
		{archetype.Machine, types.StageTeen, "machine_frame"},
		{archetype.Machine, types.StageActive, "machine_chassis"},
		{archetype.Mystic, types.StageChild, "mystic_wisp"},
		{archetype.Mystic, types.StageAdult, "mystic_spire"},
		{archetype.Chibi, types.StageChild, FallbackBody},
		{archetype.Chibi, types.StageAdult, FallbackBody},
		{archetype.Beast, types.StageEgg, FallbackBody},
	}
	for _, tt := range tests {
		if got := bodyFor(tt.arch, tt.stage); got != tt.want {
			t.Errorf("bodyFor(%s, %s): expected %s, got %s", tt.arch, tt.stage, tt.want, got)
		}
	}
}

func TestEveryTableEntryResolves(t *testing.T) {
	for key, name := range bodyTable {
		b, ok := bodies[name]
		if !ok {
			t.Fatalf("%v: missing body %s", key, name)
		}
		for _, a := range []Anchor{AnchorHead, AnchorHeadSide, AnchorBack, AnchorTail} {
			if _, ok := b.anchors[a]; !ok {
				t.Fatalf("body %s missing anchor %s", name, a)
			}
		}
	}
	for key, set := range accessoryTable {
		for _, name := range []string{set.head, set.back, set.tail} {
			if name == "" {
				continue
			}
			if _, ok := accessories[name]; !ok {
				t.Fatalf("%v: missing accessory %s", key, name)
			}
		}
	}
	for arch, face := range faceTable {
		if _, ok := eyeSets[face.eyes]; !ok {
			t.Fatalf("%s: missing eyes %s", arch, face.eyes)
		}
		if _, ok := mouthSets[face.mouth]; !ok {
			t.Fatalf("%s: missing mouth %s", arch, face.mouth)
		}
	}
}

func TestAccessoriesSitOnAnchors(t *testing.T) {
	scene := Compose(petWith(types.StageTeen, types.TierEpic, beastTraits))
	head, ok := scene.Layer(LayerHead)
	if !ok {
		t.Fatalf("expected head accessory")
	}
	anchor := bodies["beast_yearling"].anchors[AnchorHead]
	wantX := origin.X + anchor.X*0.9
	wantY := origin.Y + anchor.Y*0.9
	if head.Transform.X != wantX || head.Transform.Y != wantY || head.Transform.Scale != 0.9 {
		t.Fatalf("expected head at (%v,%v) scale 0.9, got %#v", wantX, wantY, head.Transform)
	}
}

func TestComputeColors(t *testing.T) {
	c := ComputeColors(archetype.Beast, types.Stats{Energy: 100, Charisma: 50})
	if c.Body != (types.HSL{H: 55, S: 85, L: 55}) {
		t.Fatalf("unexpected body color: %#v", c.Body)
	}
	if c.Accent != (types.HSL{H: 235, S: 85, L: 55}) {
		t.Fatalf("unexpected accent color: %#v", c.Accent)
	}

	wrapped := ComputeColors(archetype.Chibi, types.Stats{Energy: 50, Charisma: 100})
	if wrapped.Body.H != 30 || wrapped.Accent.H != 210 {
		t.Fatalf("expected hue to wrap, got %#v", wrapped)
	}

	drained := ComputeColors(archetype.Machine, types.Stats{Energy: 19, Charisma: 0})
	if drained.Body.S != 10 || drained.Accent.S != 10 {
		t.Fatalf("expected low energy to desaturate, got %#v", drained)
	}
}

func TestRareTiersAreTextured(t *testing.T) {
	common := Compose(petWith(types.StageActive, types.TierEpic, mysticTraits))
	if len(common.Defs) != 0 {
		t.Fatalf("expected no defs for epic, got %#v", common.Defs)
	}

	mythic := Compose(petWith(types.StageActive, types.TierMythic, mysticTraits))
	if len(mythic.Defs) != 2 || mythic.Defs[0].Kind != DefGlow || mythic.Defs[1].Filter != mythic.Defs[0].ID {
		t.Fatalf("expected glow-backed pattern, got %#v", mythic.Defs)
	}
	if mythic.Defs[0].Color != CSS(mythic.Colors.Accent) {
		t.Fatalf("expected glow keyed to accent color")
	}
	body, _ := mythic.Layer(LayerBody)
	if body.Nodes[0].Fill != "url(#"+textureID+")" {
		t.Fatalf("expected textured body fill, got %s", body.Nodes[0].Fill)
	}
}

func TestChibiUsesGenericFace(t *testing.T) {
	scene := Compose(petWith(types.StageChild, types.TierCommon, chibiTraits))
	if scene.Archetype != archetype.Chibi || scene.Body != FallbackBody {
		t.Fatalf("unexpected chibi scene: %s %s", scene.Archetype, scene.Body)
	}
	face, ok := scene.Layer(LayerFace)
	want := len(eyeSets["dot"]) + len(noseSets["button"]) + len(mouthSets["cat"])
	if !ok || len(face.Nodes) != want {
		t.Fatalf("expected %d generic face nodes, got %d", want, len(face.Nodes))
	}
}

func TestRenderSVG(t *testing.T) {
	scene := Compose(petWith(types.StageActive, types.TierLegendary, beastTraits))
	out, err := RenderSVG(scene, 256)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	doc := string(out)
	for _, want := range []string{`width="256"`, `viewBox="0 0 200 200"`, `<filter id="pet-glow"`, `<pattern id="pet-texture"`, `<g id="face"`, `fill="url(#pet-texture)"`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected %q in svg:\n%s", want, doc)
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(out))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("expected well-formed xml, got %v", err)
		}
	}
}

func TestRenderSVGRejectsBadInput(t *testing.T) {
	if _, err := RenderSVG(Compose(types.DefaultPet()), 0); err == nil {
		t.Fatalf("expected error for zero size")
	}
	if _, err := RenderSVG(Scene{}, 64); err == nil {
		t.Fatalf("expected error for empty scene")
	}
}
