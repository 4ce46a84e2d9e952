package media

import (
	"bytes"
	"encoding/json"
)

// RawMediaResult is what a media source hands back after a selection. The shape
// depends on the source, so it is one of NestedDetailForm or FlatForm.
type RawMediaResult interface {
	isRawMediaResult()
}

// Details holds the intrinsic dimensions a library item reports under media_details.
type Details struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// NestedDetailForm is the library item shape: kind under media_type, dimensions under
// media_details.
type NestedDetailForm struct {
	ID        ID       `json:"id"`
	MediaType Kind     `json:"media_type,omitempty"`
	Details   *Details `json:"media_details"`
	Alt       string   `json:"alt,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// FlatForm is the picker shape: kind and dimensions as top level fields.
type FlatForm struct {
	ID     ID     `json:"id"`
	Type   Kind   `json:"type,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
	URL    string `json:"url,omitempty"`
}

func (*NestedDetailForm) isRawMediaResult() {}
func (*FlatForm) isRawMediaResult()         {}

// ParseRaw decodes a raw media result. Anything that is not a JSON object in one of the
// two known shapes yields nil, which callers treat as "no usable media".
func ParseRaw(data []byte) RawMediaResult {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil
	}

	if details, ok := keys["media_details"]; ok && !bytes.Equal(bytes.TrimSpace(details), []byte("null")) {
		if d := bytes.TrimSpace(details); len(d) == 0 || d[0] != '{' {
			return nil
		}
		nested := &NestedDetailForm{}
		if err := json.Unmarshal(data, nested); err != nil {
			return nil
		}
		return nested
	}

	if _, ok := keys["id"]; !ok {
		return nil
	}

	flat := &FlatForm{}
	if err := json.Unmarshal(data, flat); err != nil {
		return nil
	}
	return flat
}
