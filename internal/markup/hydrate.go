package markup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/go-logr/logr"
	"golang.org/x/net/html"

	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

// ClassSelector returns an XPath expression matching elements with blockClass that sit
// inside an element with containerClass.
func ClassSelector(containerClass, blockClass string) string {
	return fmt.Sprintf("//*[%s]//*[%s]", hasClass(containerClass), hasClass(blockClass))
}

func hasClass(class string) string {
	return fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", class)
}

// Result counts the marker elements seen and hydrated during one pass.
type Result struct {
	Found    int
	Hydrated int
}

// Hydrator mounts the two-pane view into every saved block of a rendered page using
// nothing but the persisted markup.
type Hydrator struct {
	Composer render.Composer
	Log      logr.Logger
	Selector string
}

func NewHydrator(composer render.Composer, log logr.Logger) *Hydrator {
	return &Hydrator{
		Composer: composer,
		Log:      log,
		Selector: ClassSelector(ContentClass, DefaultClass),
	}
}

// Hydrate parses a page, hydrates each marker element independently and writes the
// page back out. A marker whose data cannot be used is left exactly as it was; only a
// page that cannot be parsed or written is an error.
func (h *Hydrator) Hydrate(ctx context.Context, r io.Reader, w io.Writer) (Result, error) {
	var result Result

	doc, err := html.Parse(r)
	if err != nil {
		return result, fmt.Errorf("failed to parse page: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, h.Selector)
	if err != nil {
		return result, fmt.Errorf("invalid selector %q: %w", h.Selector, err)
	}

	result.Found = len(nodes)
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if h.HydrateElement(n) {
			result.Hydrated++
		}
	}

	if err := html.Render(w, doc); err != nil {
		return result, fmt.Errorf("failed to render page: %w", err)
	}

	h.Log.V(1).Info("hydrated", "found", result.Found, "hydrated", result.Hydrated)

	return result, nil
}

// HydrateString is Hydrate for callers holding the page in memory.
func (h *Hydrator) HydrateString(ctx context.Context, page string) (string, Result, error) {
	var out strings.Builder
	result, err := h.Hydrate(ctx, strings.NewReader(page), &out)
	if err != nil {
		return "", result, err
	}
	return out.String(), result, nil
}

// HydrateElement replaces the children of n with the composed panes. It reports false
// and leaves n untouched when either side is missing, unparsable or falsy.
func (h *Hydrator) HydrateElement(n *html.Node) bool {
	left, ok := readSide(n, LeftAttr)
	if !ok {
		h.Log.V(1).Info("skipping block, unusable data", "attribute", LeftAttr)
		return false
	}
	right, ok := readSide(n, RightAttr)
	if !ok {
		h.Log.V(1).Info("skipping block, unusable data", "attribute", RightAttr)
		return false
	}

	composed, err := h.Composer.Compose(imageFrom(left), imageFrom(right))
	if err != nil {
		h.Log.Error(err, "failed to compose panes")
		return false
	}

	children, err := html.ParseFragment(strings.NewReader(string(composed)), n)
	if err != nil {
		h.Log.Error(err, "failed to parse composed panes")
		return false
	}

	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range children {
		n.AppendChild(c)
	}

	return true
}

// readSide decodes a persisted side. Missing, unparsable and falsy JSON values make the
// block unusable; any other value mounts, with non-objects yielding an empty pane.
func readSide(n *html.Node, key string) (map[string]any, bool) {
	raw, ok := attr(n, key)
	if !ok {
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false
	}
	if !truthy(value) {
		return nil, false
	}

	side, _ := value.(map[string]any)
	return side, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// imageFrom builds a pane straight from persisted fields; the persisted form is already
// canonical so nothing is normalized again.
func imageFrom(side map[string]any) *render.Image {
	url, _ := side["url"].(string)
	if url == "" {
		return nil
	}
	alt, _ := side["alt"].(string)
	return &render.Image{
		Alt:    alt,
		Src:    url,
		Height: dimension(side["height"]),
		Width:  dimension(side["width"]),
	}
}

func dimension(v any) *int {
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) {
		return nil
	}
	i := int(f)
	return &i
}
