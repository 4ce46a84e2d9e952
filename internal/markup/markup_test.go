package markup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		attrs     attributes.WidgetAttributes
		className string
		want      string
	}{
		{
			name:  "fresh widget",
			attrs: attributes.Defaults(),
			want:  `<div class="wp-block-kdex-splitscreen" data-left="{}" data-right="{}" style="height:200px"></div>`,
		},
		{
			name: "left selected",
			attrs: attributes.WidgetAttributes{
				Height: 50,
				Left:   media.Descriptor{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: "A"},
			},
			className: "custom",
			want:      `<div class="custom" data-left="{&#34;id&#34;:5,&#34;type&#34;:&#34;image&#34;,&#34;url&#34;:&#34;/a.jpg&#34;,&#34;width&#34;:100,&#34;height&#34;:50,&#34;alt&#34;:&#34;A&#34;}" data-right="{}" style="height:50px"></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.attrs, tt.className)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	image := media.Descriptor{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: `"quoted" & <b>`}
	other := media.Descriptor{ID: "abc", Type: media.VideoKind, URL: "/v.mp4"}

	for _, attrs := range []attributes.WidgetAttributes{
		attributes.Defaults(),
		{Height: 0, Left: image},
		{Height: 320, Left: image, Right: other},
		{Height: 1, Right: image},
	} {
		encoded, err := Encode(attrs, "")
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, attrs, decoded)
	}
}

func TestEncode_LeftDecodesToSameObject(t *testing.T) {
	left := media.Descriptor{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: "A"}
	encoded, err := EncodeNode(attributes.WidgetAttributes{Height: 200, Left: left}, "")
	require.NoError(t, err)

	raw, ok := attr(encoded, LeftAttr)
	require.True(t, ok)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, map[string]any{
		"id": float64(5), "type": "image", "url": "/a.jpg", "width": float64(100), "height": float64(50), "alt": "A",
	}, got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{name: "no element", markup: "just text"},
		{name: "missing left", markup: `<div data-right="{}"></div>`},
		{name: "missing right", markup: `<div data-left="{}"></div>`},
		{name: "invalid left", markup: `<div data-left="{" data-right="{}"></div>`},
		{name: "invalid right", markup: `<div data-left="{}" data-right="[1"></div>`},
		{name: "invalid height", markup: `<div data-left="{}" data-right="{}" style="height:tall"></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.markup)
			assert.Error(t, err)
		})
	}
}

func TestDecode_StyleWithoutHeight(t *testing.T) {
	attrs, err := Decode(`<div data-left="{}" data-right="{}" style="color: red"></div>`)
	require.NoError(t, err)
	assert.Equal(t, attributes.DefaultHeight, attrs.Height)

	attrs, err = Decode(`<div data-left="{}" data-right="{}" style="color: red; HEIGHT: 42px"></div>`)
	require.NoError(t, err)
	assert.Equal(t, 42, attrs.Height)
}
