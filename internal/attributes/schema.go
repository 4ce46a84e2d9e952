package attributes

import (
	"encoding/json"
	"fmt"

	openapi "github.com/getkin/kin-openapi/openapi3"
)

// Schema is the attribute declaration handed to the host when the block registers.
func Schema() *openapi.Schema {
	side := openapi.NewObjectSchema().WithDefault(map[string]any{})

	height := openapi.NewIntegerSchema().WithMin(0).WithDefault(DefaultHeight)

	return openapi.NewObjectSchema().
		WithProperty("height", height).
		WithProperty("left", side).
		WithProperty("right", side)
}

// Decode validates a host supplied attribute document against Schema and fills in the
// defaults for anything left out.
func Decode(data []byte) (WidgetAttributes, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return WidgetAttributes{}, fmt.Errorf("attributes are not valid json: %w", err)
	}

	if err := Schema().VisitJSON(doc, openapi.MultiErrors()); err != nil {
		return WidgetAttributes{}, fmt.Errorf("attributes do not match schema: %w", err)
	}

	attrs := Defaults()
	if err := json.Unmarshal(data, &attrs); err != nil {
		return WidgetAttributes{}, fmt.Errorf("failed to decode attributes: %w", err)
	}

	if !attrs.Left.IsEmpty() && !attrs.Left.IsComplete() {
		return WidgetAttributes{}, fmt.Errorf("left descriptor %q has no url", attrs.Left.ID)
	}
	if !attrs.Right.IsEmpty() && !attrs.Right.IsComplete() {
		return WidgetAttributes{}, fmt.Errorf("right descriptor %q has no url", attrs.Right.ID)
	}

	return attrs, nil
}
