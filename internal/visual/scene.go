// Package visual assembles a pet record into a layered vector scene.
package visual

import "github.com/easeaico/project-pet/internal/archetype"

// NodeKind is the primitive shape of a node.
type NodeKind string

const (
	NodePath    NodeKind = "path"
	NodeCircle  NodeKind = "circle"
	NodeEllipse NodeKind = "ellipse"
	NodeRect    NodeKind = "rect"
)

// Node is one primitive in a layer's local coordinate space.
type Node struct {
	Kind        NodeKind `json:"kind"`
	D           string   `json:"d,omitempty"`
	CX          float64  `json:"cx,omitempty"`
	CY          float64  `json:"cy,omitempty"`
	R           float64  `json:"r,omitempty"`
	RX          float64  `json:"rx,omitempty"`
	RY          float64  `json:"ry,omitempty"`
	X           float64  `json:"x,omitempty"`
	Y           float64  `json:"y,omitempty"`
	W           float64  `json:"w,omitempty"`
	H           float64  `json:"h,omitempty"`
	Fill        string   `json:"fill,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
	Opacity     float64  `json:"opacity,omitempty"`
}

// Transform places a layer: translate by X,Y then scale.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Layer is a named group of nodes sharing one transform.
type Layer struct {
	Name      string    `json:"name"`
	Transform Transform `json:"transform"`
	Nodes     []Node    `json:"nodes"`
}

// DefKind is a reusable paint server or filter.
type DefKind string

const (
	DefGlow    DefKind = "glow"
	DefPattern DefKind = "pattern"
)

// Def is a shared definition referenced by nodes through url(#ID).
type Def struct {
	ID    string  `json:"id"`
	Kind  DefKind `json:"kind"`
	Color string  `json:"color"`
	// Base is the pattern background. Unused by glow filters.
	Base string `json:"base,omitempty"`
	// Filter is the glow applied inside a pattern.
	Filter string  `json:"filter,omitempty"`
	Size   float64 `json:"size"`
}

// Scene is a renderer-neutral scene graph. Layers are ordered back to front.
type Scene struct {
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Archetype archetype.Archetype `json:"archetype,omitempty"`
	Body      string              `json:"body"`
	Colors    Colors              `json:"colors"`
	Defs      []Def               `json:"defs,omitempty"`
	Layers    []Layer             `json:"layers"`
}

// Layer names, back to front.
const (
	LayerPlaceholder = "placeholder"
	LayerBack        = "accessory_back"
	LayerBody        = "body"
	LayerHead        = "accessory_head"
	LayerTail        = "accessory_tail"
	LayerFace        = "face"
)

// Layer returns the named layer.
func (s Scene) Layer(name string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}
