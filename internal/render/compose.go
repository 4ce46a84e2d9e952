package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/Masterminds/sprig/v3"
)

// Composer shows two panes with a movable boundary between them.
type Composer interface {
	Compose(left, right *Image) (template.HTML, error)
}

const splitTemplate = `{{ define "pane" }}{{ if . }}<img alt="{{ .Alt }}" src="{{ .Src }}"{{ with .Height }} height="{{ . }}"{{ end }}{{ with .Width }} width="{{ . }}"{{ end }}>{{ end }}{{ end -}}
{{ $class := .Class | default "splitscreen" -}}
{{ $position := .Position | max 0 | min 100 -}}
<div class="{{ $class }}" data-position="{{ $position }}">` +
	`<div class="{{ $class }}__pane {{ $class }}__pane--left">{{ template "pane" .Left }}</div>` +
	`<div class="{{ $class }}__handle" role="separator" aria-orientation="vertical" aria-valuemin="0" aria-valuemax="100" aria-valuenow="{{ $position }}" tabindex="0"></div>` +
	`<div class="{{ $class }}__pane {{ $class }}__pane--right">{{ template "pane" .Right }}</div>` +
	`</div>`

var split = template.Must(template.New("splitscreen").Funcs(sprig.FuncMap()).Parse(splitTemplate))

// SplitComposer renders the panes as static markup that the front end script turns into
// a draggable comparison.
type SplitComposer struct {
	Class string
	// Position is the initial boundary offset in percent from the left edge. Nil centers
	// the boundary.
	Position *int
}

const defaultPosition = 50

var _ Composer = SplitComposer{}

type paneView struct {
	Alt    string
	Src    string
	Height string
	Width  string
}

func (c SplitComposer) Compose(left, right *Image) (template.HTML, error) {
	position := defaultPosition
	if c.Position != nil {
		position = *c.Position
	}

	data := struct {
		Class    string
		Position int
		Left     *paneView
		Right    *paneView
	}{
		Class:    c.Class,
		Position: position,
		Left:     toView(left),
		Right:    toView(right),
	}

	var buf bytes.Buffer
	if err := split.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func toView(img *Image) *paneView {
	if img == nil {
		return nil
	}
	return &paneView{
		Alt:    img.Alt,
		Src:    img.Src,
		Height: dimension(img.Height),
		Width:  dimension(img.Width),
	}
}

func dimension(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
