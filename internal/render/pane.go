package render

import (
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
)

// Image is a renderable image pane.
type Image struct {
	Alt    string
	Src    string
	Height *int
	Width  *int
}

// Pane maps a descriptor onto a renderable pane. Empty descriptors, descriptors without
// a url and kinds other than image produce nil, which renders as an empty pane.
func Pane(d media.Descriptor) *Image {
	if d.Type != media.ImageKind || d.URL == "" {
		return nil
	}
	return &Image{
		Alt:    d.Alt,
		Src:    d.URL,
		Height: d.Height,
		Width:  d.Width,
	}
}
