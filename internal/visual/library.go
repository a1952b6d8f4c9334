package visual

import (
	"github.com/easeaico/project-pet/internal/archetype"
	"github.com/easeaico/project-pet/internal/types"
)

// Anchor names a point on a body where an accessory is attached.
type Anchor string

const (
	AnchorHead     Anchor = "head"
	AnchorHeadSide Anchor = "head_side"
	AnchorBack     Anchor = "back"
	AnchorTail     Anchor = "tail"
)

// Point is an offset in a body's local coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// role is a paint slot resolved against the computed colors.
type role string

const (
	roleNone    role = ""
	roleBody    role = "body"
	roleShade   role = "shade"
	roleAccent  role = "accent"
	roleEye     role = "eye"
	roleWhite   role = "white"
	roleTexture role = "texture"
)

type primitive struct {
	node   Node
	fill   role
	stroke role
}

type body struct {
	prims   []primitive
	anchors map[Anchor]Point
	face    Point
}

type accessory struct {
	anchor Anchor
	prims  []primitive
}

type faceSet struct {
	eyes  string
	nose  string
	mouth string
}

type bodyKey struct {
	arch  archetype.Archetype
	stage types.Stage
}

type accessorySet struct {
	head string
	back string
	tail string
}

// FallbackBody is used for any archetype and stage without its own shape.
const FallbackBody = "chibi_blob"

// Body shape per archetype and stage. Active pets use the adult shape.
var bodyTable = map[bodyKey]string{
	{archetype.Beast, types.StageChild}:    "beast_cub",
	{archetype.Beast, types.StageTeen}:     "beast_yearling",
	{archetype.Beast, types.StageAdult}:    "beast_prowler",
	{archetype.Beast, types.StageActive}:   "beast_prowler",
	{archetype.Machine, types.StageChild}:  "machine_pod",
	{archetype.Machine, types.StageTeen}:   "machine_frame",
	{archetype.Machine, types.StageAdult}:  "machine_chassis",
	{archetype.Machine, types.StageActive}: "machine_chassis",
	{archetype.Mystic, types.StageChild}:   "mystic_wisp",
	{archetype.Mystic, types.StageTeen}:    "mystic_drop",
	{archetype.Mystic, types.StageAdult}:   "mystic_spire",
	{archetype.Mystic, types.StageActive}:  "mystic_spire",
	{archetype.Chibi, types.StageChild}:    FallbackBody,
}

var faceTable = map[archetype.Archetype]faceSet{
	archetype.Beast:   {eyes: "slit", nose: "snout", mouth: "fang"},
	archetype.Machine: {eyes: "visor", mouth: "grille"},
	archetype.Mystic:  {eyes: "star", mouth: "smile"},
}

var genericFace = faceSet{eyes: "dot", nose: "button", mouth: "cat"}

// Accessories per archetype and stage tier. Active pets use the adult set.
var accessoryTable = map[bodyKey]accessorySet{
	{archetype.Beast, types.StageChild}:   {tail: "tuft"},
	{archetype.Beast, types.StageTeen}:    {head: "horn_nubs", tail: "brush"},
	{archetype.Beast, types.StageAdult}:   {head: "horns", back: "mane", tail: "brush"},
	{archetype.Machine, types.StageChild}: {head: "antenna"},
	{archetype.Machine, types.StageTeen}:  {head: "antenna", back: "thrusters"},
	{archetype.Machine, types.StageAdult}: {head: "dish", back: "thrusters", tail: "cable"},
	{archetype.Mystic, types.StageChild}:  {head: "halo"},
	{archetype.Mystic, types.StageTeen}:   {head: "halo", back: "wisp_wings"},
	{archetype.Mystic, types.StageAdult}:  {head: "crown", back: "wisp_wings", tail: "comet"},
	{archetype.Chibi, types.StageChild}:   {head: "bow"},
	{archetype.Chibi, types.StageTeen}:    {head: "bow", tail: "puff"},
	{archetype.Chibi, types.StageAdult}:   {head: "bow", back: "cape", tail: "puff"},
}

func ellipse(cx, cy, rx, ry float64, fill role) primitive {
	return primitive{node: Node{Kind: NodeEllipse, CX: cx, CY: cy, RX: rx, RY: ry}, fill: fill}
}

func circle(cx, cy, r float64, fill role) primitive {
	return primitive{node: Node{Kind: NodeCircle, CX: cx, CY: cy, R: r}, fill: fill}
}

func rect(x, y, w, h, rx float64, fill role) primitive {
	return primitive{node: Node{Kind: NodeRect, X: x, Y: y, W: w, H: h, RX: rx}, fill: fill}
}

func path(d string, fill role) primitive {
	return primitive{node: Node{Kind: NodePath, D: d}, fill: fill}
}

func line(d string, stroke role, width float64) primitive {
	return primitive{node: Node{Kind: NodePath, D: d, StrokeWidth: width}, stroke: stroke}
}

func faded(p primitive, opacity float64) primitive {
	p.node.Opacity = opacity
	return p
}

// Bodies are drawn around the origin. The first texture-filled primitive
// takes the pattern fill on rare tiers.
var bodies = map[string]body{
	"beast_cub": {
		prims: []primitive{
			path("M-26 -16 L-20 -40 L-8 -26 Z M26 -16 L20 -40 L8 -26 Z", roleShade),
			ellipse(0, 4, 34, 30, roleTexture),
			ellipse(0, 18, 18, 11, roleShade),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -28}, AnchorHeadSide: {22, -30}, AnchorBack: {0, -6}, AnchorTail: {32, 18}},
		face:    Point{0, -2},
	},
	"beast_yearling": {
		prims: []primitive{
			path("M-32 -18 L-26 -50 L-10 -30 Z M32 -18 L26 -50 L10 -30 Z", roleShade),
			rect(-30, 24, 14, 18, 6, roleShade),
			rect(16, 24, 14, 18, 6, roleShade),
			ellipse(0, 4, 40, 34, roleTexture),
			ellipse(0, 20, 22, 12, roleShade),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -32}, AnchorHeadSide: {26, -36}, AnchorBack: {0, -8}, AnchorTail: {38, 20}},
		face:    Point{0, -4},
	},
	"beast_prowler": {
		prims: []primitive{
			path("M-36 -22 L-30 -58 L-12 -34 Z M36 -22 L30 -58 L12 -34 Z", roleShade),
			rect(-38, 26, 16, 22, 6, roleShade),
			rect(22, 26, 16, 22, 6, roleShade),
			path("M-46 10 C-46 -30 -24 -40 0 -40 C24 -40 46 -30 46 10 C46 34 24 40 0 40 C-24 40 -46 34 -46 10 Z", roleTexture),
			ellipse(0, 22, 26, 13, roleShade),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -38}, AnchorHeadSide: {30, -40}, AnchorBack: {0, -12}, AnchorTail: {44, 22}},
		face:    Point{0, -6},
	},
	"machine_pod": {
		prims: []primitive{
			rect(-30, -30, 60, 60, 18, roleTexture),
			rect(-18, 10, 36, 12, 4, roleShade),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -30}, AnchorHeadSide: {24, -26}, AnchorBack: {0, -4}, AnchorTail: {30, 16}},
		face:    Point{0, -6},
	},
	"machine_frame": {
		prims: []primitive{
			rect(-36, -34, 72, 68, 10, roleTexture),
			rect(-24, 12, 48, 14, 3, roleShade),
			circle(-28, -26, 2.5, roleAccent),
			circle(28, -26, 2.5, roleAccent),
			circle(-28, 26, 2.5, roleAccent),
			circle(28, 26, 2.5, roleAccent),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -34}, AnchorHeadSide: {30, -30}, AnchorBack: {0, -6}, AnchorTail: {36, 18}},
		face:    Point{0, -8},
	},
	"machine_chassis": {
		prims: []primitive{
			rect(-34, 34, 18, 16, 2, roleShade),
			rect(16, 34, 18, 16, 2, roleShade),
			rect(-42, -38, 84, 76, 6, roleTexture),
			rect(-30, 12, 60, 16, 3, roleShade),
			line("M-42 -10 L42 -10", roleShade, 2),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -38}, AnchorHeadSide: {36, -34}, AnchorBack: {0, -10}, AnchorTail: {42, 20}},
		face:    Point{0, -20},
	},
	"mystic_wisp": {
		prims: []primitive{
			path("M0 -38 C24 -12 30 18 0 30 C-30 18 -24 -12 0 -38 Z", roleTexture),
			faded(circle(0, 8, 12, roleAccent), 0.35),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -34}, AnchorHeadSide: {16, -22}, AnchorBack: {0, -2}, AnchorTail: {0, 30}},
		face:    Point{0, 0},
	},
	"mystic_drop": {
		prims: []primitive{
			path("M0 -46 C30 -14 38 22 0 36 C-38 22 -30 -14 0 -46 Z", roleTexture),
			faded(circle(0, 10, 16, roleAccent), 0.35),
			faded(circle(0, 10, 7, roleWhite), 0.5),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -42}, AnchorHeadSide: {20, -26}, AnchorBack: {0, -4}, AnchorTail: {0, 36}},
		face:    Point{0, -2},
	},
	"mystic_spire": {
		prims: []primitive{
			path("M0 -54 C22 -40 30 -10 40 44 L-40 44 C-30 -10 -22 -40 0 -54 Z", roleTexture),
			path("M-40 44 L-30 34 L-20 44 L-10 34 L0 44 L10 34 L20 44 L30 34 L40 44 Z", roleShade),
			faded(circle(0, 18, 14, roleAccent), 0.35),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -50}, AnchorHeadSide: {20, -38}, AnchorBack: {0, -8}, AnchorTail: {0, 44}},
		face:    Point{0, -16},
	},
	FallbackBody: {
		prims: []primitive{
			circle(0, 0, 36, roleTexture),
			faded(circle(-20, 8, 6, roleAccent), 0.5),
			faded(circle(20, 8, 6, roleAccent), 0.5),
		},
		anchors: map[Anchor]Point{AnchorHead: {0, -36}, AnchorHeadSide: {24, -28}, AnchorBack: {0, -4}, AnchorTail: {34, 14}},
		face:    Point{0, -2},
	},
}

var eyeSets = map[string][]primitive{
	"slit": {
		ellipse(-12, 0, 5, 6, roleEye),
		ellipse(12, 0, 5, 6, roleEye),
		ellipse(-12, 0, 1.2, 5, roleAccent),
		ellipse(12, 0, 1.2, 5, roleAccent),
	},
	"visor": {
		rect(-22, -6, 44, 11, 5, roleEye),
		rect(-16, -3, 8, 5, 1, roleAccent),
		rect(8, -3, 8, 5, 1, roleAccent),
	},
	"star": {
		circle(-12, 0, 6, roleEye),
		circle(12, 0, 6, roleEye),
		circle(-10, -2, 2, roleWhite),
		circle(14, -2, 2, roleWhite),
		faded(circle(-13, 2, 1, roleAccent), 0.8),
		faded(circle(11, 2, 1, roleAccent), 0.8),
	},
	"dot": {
		circle(-11, 0, 4, roleEye),
		circle(11, 0, 4, roleEye),
		circle(-10, -1.5, 1.5, roleWhite),
		circle(12, -1.5, 1.5, roleWhite),
	},
}

var noseSets = map[string][]primitive{
	"snout":  {ellipse(0, 7, 4, 2.5, roleEye)},
	"button": {circle(0, 6, 1.5, roleShade)},
}

var mouthSets = map[string][]primitive{
	"fang": {
		line("M-8 12 Q0 18 8 12", roleEye, 1.5),
		path("M-5 13 L-3 18 L-1 14 Z M5 13 L3 18 L1 14 Z", roleWhite),
	},
	"grille": {
		rect(-9, 11, 18, 6, 1, roleShade),
		line("M-5 11 L-5 17 M0 11 L0 17 M5 11 L5 17", roleEye, 1),
	},
	"smile": {line("M-7 11 Q0 17 7 11", roleAccent, 1.8)},
	"cat":   {line("M-6 10 Q-3 14 0 10 Q3 14 6 10", roleEye, 1.5)},
}

var accessories = map[string]accessory{
	"tuft":      {anchor: AnchorTail, prims: []primitive{path("M0 0 C10 -4 16 -14 12 -22 C8 -14 4 -8 0 -6 Z", roleShade)}},
	"brush":     {anchor: AnchorTail, prims: []primitive{path("M0 0 C16 0 26 -14 24 -30 C30 -20 30 -6 22 4 C14 10 4 8 0 6 Z", roleShade), ellipse(22, -26, 5, 7, roleAccent)}},
	"horn_nubs": {anchor: AnchorHead, prims: []primitive{path("M-14 0 L-10 -10 L-6 0 Z M6 0 L10 -10 L14 0 Z", roleAccent)}},
	"horns":     {anchor: AnchorHead, prims: []primitive{path("M-16 2 C-22 -10 -18 -22 -8 -26 C-14 -18 -12 -8 -8 2 Z M16 2 C22 -10 18 -22 8 -26 C14 -18 12 -8 8 2 Z", roleAccent)}},
	"mane":      {anchor: AnchorBack, prims: []primitive{path("M-50 0 C-44 -30 -20 -44 0 -44 C20 -44 44 -30 50 0 C40 -10 30 -12 20 -8 C10 -16 -10 -16 -20 -8 C-30 -12 -40 -10 -50 0 Z", roleShade)}},
	"antenna":   {anchor: AnchorHead, prims: []primitive{line("M0 0 L0 -16", roleShade, 2), circle(0, -18, 4, roleAccent)}},
	"dish":      {anchor: AnchorHeadSide, prims: []primitive{line("M0 0 L6 -8", roleShade, 2), path("M0 -10 A10 10 0 0 1 16 -18 L6 -8 Z", roleAccent)}},
	"thrusters": {anchor: AnchorBack, prims: []primitive{rect(-52, -14, 12, 30, 4, roleShade), rect(40, -14, 12, 30, 4, roleShade), faded(path("M-50 16 L-46 28 L-42 16 Z M42 16 L46 28 L50 16 Z", roleAccent), 0.8)}},
	"cable":     {anchor: AnchorTail, prims: []primitive{line("M0 0 C12 4 14 16 24 14", roleShade, 3), rect(22, 10, 8, 8, 2, roleAccent)}},
	"halo":      {anchor: AnchorHead, prims: []primitive{{node: Node{Kind: NodeEllipse, CY: -10, RX: 14, RY: 4, StrokeWidth: 2.5}, stroke: roleAccent}}},
	"crown":     {anchor: AnchorHead, prims: []primitive{path("M-14 0 L-14 -12 L-7 -6 L0 -16 L7 -6 L14 -12 L14 0 Z", roleAccent), circle(0, -16, 2, roleWhite)}},
	"wisp_wings": {anchor: AnchorBack, prims: []primitive{
		faded(path("M-10 0 C-30 -30 -56 -24 -54 -4 C-52 10 -30 12 -10 4 Z", roleAccent), 0.6),
		faded(path("M10 0 C30 -30 56 -24 54 -4 C52 10 30 12 10 4 Z", roleAccent), 0.6),
	}},
	"comet": {anchor: AnchorTail, prims: []primitive{faded(path("M-6 0 C-4 12 0 20 8 26 C2 18 2 10 6 0 Z", roleAccent), 0.7), circle(8, 26, 3, roleWhite)}},
	"bow":   {anchor: AnchorHeadSide, prims: []primitive{path("M0 0 L-12 -8 L-12 8 Z M0 0 L12 -8 L12 8 Z", roleAccent), circle(0, 0, 3, roleShade)}},
	"puff":  {anchor: AnchorTail, prims: []primitive{circle(4, 0, 7, roleShade)}},
	"cape":  {anchor: AnchorBack, prims: []primitive{faded(path("M-30 -6 L30 -6 L38 40 L-38 40 Z", roleAccent), 0.85)}},
}

var placeholders = map[types.Stage][]primitive{
	types.StageDormant: {
		rect(-30, -40, 60, 80, 30, roleShade),
		faded(rect(-20, -30, 40, 36, 18, roleWhite), 0.35),
		line("M-30 4 L30 4", roleEye, 2),
	},
	types.StageEgg: {
		path("M0 -44 C26 -44 36 -6 36 12 C36 32 20 44 0 44 C-20 44 -36 32 -36 12 C-36 -6 -26 -44 0 -44 Z", roleBody),
		faded(circle(-10, -12, 6, roleAccent), 0.6),
		faded(circle(12, 10, 8, roleAccent), 0.6),
		faded(circle(-6, 24, 4, roleAccent), 0.6),
	},
}
