package markup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
)

const (
	// DefaultClass is the class the host gives the container of a saved splitscreen
	// block.
	DefaultClass = "wp-block-kdex-splitscreen"
	// ContentClass marks the region of a public page that holds block output.
	ContentClass = "entry-content"

	LeftAttr  = "data-left"
	RightAttr = "data-right"
	StyleAttr = "style"
)

// Encode writes the persisted form of a widget: one container element carrying each
// side as standalone JSON and the height as an inline style.
func Encode(attrs attributes.WidgetAttributes, className string) (string, error) {
	node, err := EncodeNode(attrs, className)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", fmt.Errorf("failed to render block markup: %w", err)
	}
	return buf.String(), nil
}

func EncodeNode(attrs attributes.WidgetAttributes, className string) (*html.Node, error) {
	if className == "" {
		className = DefaultClass
	}

	left, err := json.Marshal(attrs.Left)
	if err != nil {
		return nil, fmt.Errorf("failed to encode left: %w", err)
	}
	right, err := json.Marshal(attrs.Right)
	if err != nil {
		return nil, fmt.Errorf("failed to encode right: %w", err)
	}

	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Div.String(),
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: className},
			{Key: LeftAttr, Val: string(left)},
			{Key: RightAttr, Val: string(right)},
			{Key: StyleAttr, Val: fmt.Sprintf("height:%dpx", attrs.Height)},
		},
	}, nil
}

// Decode reads persisted markup back into attributes so a saved block can be edited
// again. Unlike hydration it is strict: anything malformed is an error.
func Decode(markup string) (attributes.WidgetAttributes, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	})
	if err != nil {
		return attributes.WidgetAttributes{}, fmt.Errorf("failed to parse block markup: %w", err)
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return DecodeNode(n)
		}
	}

	return attributes.WidgetAttributes{}, fmt.Errorf("block markup has no element")
}

func DecodeNode(n *html.Node) (attributes.WidgetAttributes, error) {
	attrs := attributes.Defaults()

	left, ok := attr(n, LeftAttr)
	if !ok {
		return attrs, fmt.Errorf("missing %s", LeftAttr)
	}
	if err := json.Unmarshal([]byte(left), &attrs.Left); err != nil {
		return attrs, fmt.Errorf("invalid %s: %w", LeftAttr, err)
	}

	right, ok := attr(n, RightAttr)
	if !ok {
		return attrs, fmt.Errorf("missing %s", RightAttr)
	}
	if err := json.Unmarshal([]byte(right), &attrs.Right); err != nil {
		return attrs, fmt.Errorf("invalid %s: %w", RightAttr, err)
	}

	if style, ok := attr(n, StyleAttr); ok {
		height, found, err := styleHeight(style)
		if err != nil {
			return attrs, err
		}
		if found {
			attrs.Height = height
		}
	}

	return attrs, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func styleHeight(style string) (int, bool, error) {
	for decl := range strings.SplitSeq(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(prop), "height") {
			continue
		}
		value = strings.TrimSuffix(strings.TrimSpace(value), "px")
		height, err := strconv.Atoi(value)
		if err != nil || height < 0 {
			return 0, false, fmt.Errorf("invalid height %q", value)
		}
		return height, true, nil
	}
	return 0, false, nil
}
