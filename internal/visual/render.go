package visual

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
)

const svgTemplateText = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Size}}" height="{{.Size}}" viewBox="0 0 {{num .Scene.Width}} {{num .Scene.Height}}">
{{- if .Scene.Defs}}
<defs>
{{- range .Scene.Defs}}
{{- if eq .Kind "glow"}}
<filter id="{{.ID}}" x="-50%" y="-50%" width="200%" height="200%"><feGaussianBlur stdDeviation="{{num .Size}}" result="blur"/><feFlood flood-color="{{.Color}}" result="tint"/><feComposite in="tint" in2="blur" operator="in" result="halo"/><feMerge><feMergeNode in="halo"/><feMergeNode in="SourceGraphic"/></feMerge></filter>
{{- else if eq .Kind "pattern"}}
<pattern id="{{.ID}}" width="{{num .Size}}" height="{{num .Size}}" patternUnits="userSpaceOnUse"><rect width="{{num .Size}}" height="{{num .Size}}" fill="{{.Base}}"/><circle cx="{{half .Size}}" cy="{{half .Size}}" r="{{sixth .Size}}" fill="{{.Color}}"{{with .Filter}} filter="url(#{{.}})"{{end}}/></pattern>
{{- end}}
{{- end}}
</defs>
{{- end}}
{{- range .Scene.Layers}}
<g id="{{.Name}}" transform="translate({{num .Transform.X}} {{num .Transform.Y}}) scale({{num .Transform.Scale}})">
{{- range .Nodes}}
{{template "node" .}}
{{- end}}
</g>
{{- end}}
</svg>
`

const nodeTemplateText = `{{define "paint"}} fill="{{.Fill}}"{{if .Stroke}} stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}" stroke-linecap="round"{{end}}{{if lt .Opacity 1.0}} opacity="{{num .Opacity}}"{{end}}{{end}}
{{- define "node"}}
{{- if eq .Kind "path"}}<path d="{{.D}}"{{template "paint" .}}/>
{{- else if eq .Kind "circle"}}<circle cx="{{num .CX}}" cy="{{num .CY}}" r="{{num .R}}"{{template "paint" .}}/>
{{- else if eq .Kind "ellipse"}}<ellipse cx="{{num .CX}}" cy="{{num .CY}}" rx="{{num .RX}}" ry="{{num .RY}}"{{template "paint" .}}/>
{{- else if eq .Kind "rect"}}<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}"{{if .RX}} rx="{{num .RX}}"{{end}}{{template "paint" .}}/>
{{- end}}
{{- end}}`

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{
	"num":   formatNum,
	"half":  func(v float64) string { return formatNum(v / 2) },
	"sixth": func(v float64) string { return formatNum(v / 6) },
}).Parse(svgTemplateText + nodeTemplateText))

// RenderSVG renders scene as an SVG document size pixels square.
func RenderSVG(scene Scene, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid render size %d", size)
	}
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("scene has no extent")
	}

	data := struct {
		Scene Scene
		Size  int
	}{Scene: scene, Size: size}

	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render svg: %w", err)
	}
	return buf.Bytes(), nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
