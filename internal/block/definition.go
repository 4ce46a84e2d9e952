package block

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
)

const (
	Name     = "kdex/splitscreen"
	Category = "widgets"
)

type Supports struct {
	HTML bool `json:"html"`
}

// Definition is a registered block type together with the assets the editing surface
// and the public runtime load for it.
type Definition struct {
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	EditorScript ScriptDef        `json:"editorScript"`
	EditorStyle  StyleDef         `json:"editorStyle"`
	Name         string           `json:"name"`
	Schema       *openapi3.Schema `json:"attributes"`
	Script       ScriptDef        `json:"script"`
	Supports     Supports         `json:"supports"`
	Title        string           `json:"title"`
}

// ClassName is the class every serialized instance carries, e.g.
// "wp-block-kdex-splitscreen".
func (d *Definition) ClassName() string {
	return ClassName(d.Name)
}

func ClassName(name string) string {
	return "wp-block-" + strings.ReplaceAll(name, "/", "-")
}

func newDefinition() *Definition {
	return &Definition{
		Category:    Category,
		Description: "Displays two media files with a splitscreen effect, with an optional draggable handle to show more or less of each side.",
		Name:        Name,
		Schema:      attributes.Schema(),
		Supports:    Supports{HTML: false},
		Title:       "Splitscreen",
	}
}
