package media

import "strings"

// Normalize maps a raw media result onto a Descriptor. It never fails: a missing
// result, a result without an id, or one without a url all come back as the empty
// descriptor, which is the clear signal for that side.
func Normalize(raw RawMediaResult) Descriptor {
	var d Descriptor

	switch r := raw.(type) {
	case *NestedDetailForm:
		if r == nil {
			return Descriptor{}
		}
		d = Descriptor{
			ID:   r.ID,
			Type: r.MediaType,
			Alt:  r.Alt,
			URL:  r.URL,
		}
		if r.Details != nil {
			d.Width = r.Details.Width
			d.Height = r.Details.Height
		}
	case *FlatForm:
		if r == nil {
			return Descriptor{}
		}
		d = Descriptor{
			ID:     r.ID,
			Type:   r.Type,
			Width:  r.Width,
			Height: r.Height,
			Alt:    r.Alt,
			URL:    r.URL,
		}
	default:
		return Descriptor{}
	}

	if !d.IsComplete() {
		return Descriptor{}
	}
	return d
}

// KindFromMIME returns the media kind for a MIME type such as "image/png".
func KindFromMIME(mimeType string) Kind {
	major, _, _ := strings.Cut(mimeType, "/")
	switch Kind(major) {
	case ImageKind, VideoKind, AudioKind, TextKind:
		return Kind(major)
	default:
		return ApplicationKind
	}
}
