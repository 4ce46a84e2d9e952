package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the media type reported by the media source.
type Kind string

const (
	ApplicationKind Kind = "application"
	AudioKind       Kind = "audio"
	ImageKind       Kind = "image"
	TextKind        Kind = "text"
	VideoKind       Kind = "video"
)

// ID is an opaque media identifier. Numeric identifiers keep their JSON number form
// so that persisted markup decodes to the same object it was written from.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte(`""`), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("media id must be a string or a number: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// Descriptor is the canonical shape of one selected media item. The zero value is the
// "no media selected" descriptor and encodes as {}.
type Descriptor struct {
	ID     ID     `json:"id,omitempty"`
	Type   Kind   `json:"type,omitempty"`
	URL    string `json:"url,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// IsEmpty reports whether the descriptor carries no selection at all.
func (d Descriptor) IsEmpty() bool {
	return d.ID == ""
}

// IsComplete reports whether the descriptor is safe to hand to a renderer.
func (d Descriptor) IsComplete() bool {
	return d.ID != "" && d.URL != ""
}

// Equal compares descriptors by value, including the optional dimensions.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.ID == o.ID &&
		d.Type == o.Type &&
		d.URL == o.URL &&
		d.Alt == o.Alt &&
		intPtrEqual(d.Width, o.Width) &&
		intPtrEqual(d.Height, o.Height)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Int returns a pointer to i, handy for literal descriptors.
func Int(i int) *int {
	return &i
}
