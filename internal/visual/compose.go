package visual

import (
	"github.com/easeaico/project-pet/internal/archetype"
	"github.com/easeaico/project-pet/internal/types"
)

const (
	// SceneSize is the width and height of the scene's coordinate space.
	SceneSize = 200.0

	glowID    = "pet-glow"
	textureID = "pet-texture"
)

var origin = Point{X: SceneSize / 2, Y: SceneSize/2 + 10}

var stageScale = map[types.Stage]float64{
	types.StageChild:  0.8,
	types.StageTeen:   0.9,
	types.StageAdult:  1.0,
	types.StageActive: 1.0,
}

var placeholderColors = Colors{
	Body:   types.HSL{H: 40, S: 30, L: 88},
	Accent: types.HSL{H: 200, S: 35, L: 70},
}

// Compose builds the layered scene for a pet record.
func Compose(pet types.Pet) Scene {
	pet = types.Sanitize(pet)
	if !pet.Stage.Generated() {
		return composePlaceholder(pet.Stage)
	}

	arch := archetype.Classify(pet.Personality)
	colors := ComputeColors(arch, pet.Stats)
	bodyName, shape := lookupBody(arch, pet.Stage)
	textured := pet.Tier == types.TierLegendary || pet.Tier == types.TierMythic

	scene := Scene{
		Width:     SceneSize,
		Height:    SceneSize,
		Archetype: arch,
		Body:      bodyName,
		Colors:    colors,
	}
	if textured {
		scene.Defs = []Def{
			{ID: glowID, Kind: DefGlow, Color: CSS(colors.Accent), Size: 4},
			{ID: textureID, Kind: DefPattern, Color: CSS(colors.Accent), Base: CSS(colors.Body), Filter: glowID, Size: 12},
		}
	}

	scale := stageScale[pet.Stage]
	at := func(p Point) Transform {
		return Transform{X: origin.X + p.X*scale, Y: origin.Y + p.Y*scale, Scale: scale}
	}
	p := painter{colors: colors, textured: textured}

	set := accessoryTable[bodyKey{arch, stageTier(pet.Stage)}]
	accessoryLayer := func(name, key string) {
		acc, ok := accessories[key]
		if !ok {
			return
		}
		anchor, ok := shape.anchors[acc.anchor]
		if !ok {
			return
		}
		scene.Layers = append(scene.Layers, Layer{Name: name, Transform: at(anchor), Nodes: p.paint(acc.prims)})
	}

	accessoryLayer(LayerBack, set.back)
	scene.Layers = append(scene.Layers, Layer{Name: LayerBody, Transform: at(Point{}), Nodes: p.paint(shape.prims)})
	accessoryLayer(LayerHead, set.head)
	accessoryLayer(LayerTail, set.tail)

	face, ok := faceTable[arch]
	if !ok {
		face = genericFace
	}
	var faceNodes []Node
	faceNodes = append(faceNodes, p.paint(eyeSets[face.eyes])...)
	faceNodes = append(faceNodes, p.paint(noseSets[face.nose])...)
	faceNodes = append(faceNodes, p.paint(mouthSets[face.mouth])...)
	scene.Layers = append(scene.Layers, Layer{Name: LayerFace, Transform: at(shape.face), Nodes: faceNodes})

	return scene
}

func composePlaceholder(stage types.Stage) Scene {
	prims, ok := placeholders[stage]
	if !ok {
		prims = placeholders[types.StageDormant]
	}
	p := painter{colors: placeholderColors}
	return Scene{
		Width:  SceneSize,
		Height: SceneSize,
		Body:   LayerPlaceholder,
		Colors: placeholderColors,
		Layers: []Layer{{
			Name:      LayerPlaceholder,
			Transform: Transform{X: origin.X, Y: origin.Y, Scale: 1},
			Nodes:     p.paint(prims),
		}},
	}
}

// bodyFor returns the body shape name used for an archetype and stage.
func bodyFor(arch archetype.Archetype, stage types.Stage) string {
	name, _ := lookupBody(arch, stage)
	return name
}

func lookupBody(arch archetype.Archetype, stage types.Stage) (string, body) {
	if name, ok := bodyTable[bodyKey{arch, stage}]; ok {
		if b, ok := bodies[name]; ok {
			return name, b
		}
	}
	return FallbackBody, bodies[FallbackBody]
}

func stageTier(stage types.Stage) types.Stage {
	switch stage {
	case types.StageChild, types.StageTeen:
		return stage
	default:
		return types.StageAdult
	}
}

type painter struct {
	colors   Colors
	textured bool
}

func (p painter) paint(prims []primitive) []Node {
	nodes := make([]Node, 0, len(prims))
	for _, prim := range prims {
		n := prim.node
		n.Fill = p.resolve(prim.fill)
		if prim.stroke != roleNone {
			n.Stroke = p.resolve(prim.stroke)
			if n.StrokeWidth == 0 {
				n.StrokeWidth = 1
			}
		} else {
			n.StrokeWidth = 0
		}
		if n.Opacity == 0 {
			n.Opacity = 1
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func (p painter) resolve(r role) string {
	switch r {
	case roleNone:
		return "none"
	case roleBody:
		return CSS(p.colors.Body)
	case roleShade:
		return CSS(shade(p.colors.Body, -12))
	case roleAccent:
		return CSS(p.colors.Accent)
	case roleEye:
		return "hsl(0, 0%, 12%)"
	case roleWhite:
		return "#ffffff"
	case roleTexture:
		if p.textured {
			return "url(#" + textureID + ")"
		}
		return CSS(p.colors.Body)
	default:
		return "none"
	}
}
