package attributes

import (
	"fmt"

	"github.com/kdex-tech/kdex-splitscreen/internal/media"
)

const DefaultHeight = 200

// Side names one of the two media slots of a widget.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Left, Right:
		return Side(s), nil
	default:
		return "", fmt.Errorf("unknown side %q, expected %q or %q", s, Left, Right)
	}
}

// WidgetAttributes is the persisted state of one widget instance.
type WidgetAttributes struct {
	Height int              `json:"height"`
	Left   media.Descriptor `json:"left"`
	Right  media.Descriptor `json:"right"`
}

func Defaults() WidgetAttributes {
	return WidgetAttributes{Height: DefaultHeight}
}

func (a WidgetAttributes) Side(side Side) media.Descriptor {
	if side == Right {
		return a.Right
	}
	return a.Left
}

// Patch names the fields a Set call replaces. Nil fields are left alone.
type Patch struct {
	Height *int
	Left   *media.Descriptor
	Right  *media.Descriptor
}

// SidePatch returns a patch replacing one side wholesale.
func SidePatch(side Side, d media.Descriptor) Patch {
	if side == Right {
		return Patch{Right: &d}
	}
	return Patch{Left: &d}
}

// HeightPatch returns a patch replacing the height.
func HeightPatch(height int) Patch {
	return Patch{Height: &height}
}

func (p Patch) apply(a WidgetAttributes) WidgetAttributes {
	if p.Height != nil {
		a.Height = max(*p.Height, 0)
	}
	if p.Left != nil {
		a.Left = *p.Left
	}
	if p.Right != nil {
		a.Right = *p.Right
	}
	return a
}
