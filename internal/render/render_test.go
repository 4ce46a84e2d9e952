package render

import (
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/kdex-tech/kdex-splitscreen/internal/media"
)

func TestRenderOne(t *testing.T) {
	r := &Renderer{}
	templateContent := "Hello, {{.Name}}!"
	data := struct{ Name string }{Name: "World"}
	expected := "Hello, World!"
	actual, err := r.RenderOne("test", templateContent, data)
	assert.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestRenderOne_InvalidTemplate(t *testing.T) {
	r := &Renderer{}
	templateContent := "Hello, {{.Invalid}}!"
	data := struct{ Name string }{Name: "World"}
	_, err := r.RenderOne("test", templateContent, data)
	assert.Error(t, err)
}

func TestRenderOne_SprigFuncs(t *testing.T) {
	r := &Renderer{}
	actual, err := r.RenderOne("test", `{{ "" | default "fallback" | upper }}`, nil)
	assert.NoError(t, err)
	assert.Equal(t, "FALLBACK", actual)
}

func TestRenderPage(t *testing.T) {
	testDate, _ := time.Parse("2006-01-02", "2025-09-20")
	r := &Renderer{
		Date:         testDate,
		FootScript:   "<script>foot</script>",
		HeadScript:   "<script>head</script>",
		Lang:         "en",
		Meta:         `<meta name="description" content="test">`,
		Organization: "Test Inc.",
		Stylesheet:   "<style>body{}</style>",
	}

	page := Page{
		Body:         template.HTML(`<div class="entry-content"><p>Hi</p></div>`),
		Label:        "Test Page",
		TemplateName: "main",
	}

	actual, err := r.RenderPage(page)
	assert.NoError(t, err)

	assert.Contains(t, actual, `<html lang="en">`)
	assert.Contains(t, actual, "<title>Test Page</title>")
	assert.Contains(t, actual, r.Meta)
	assert.Contains(t, actual, r.HeadScript)
	assert.Contains(t, actual, r.Stylesheet)
	assert.Contains(t, actual, `<div class="entry-content"><p>Hi</p></div>`)
	assert.Contains(t, actual, "Test Inc. 2025")
	assert.Contains(t, actual, r.FootScript)
}

func TestRenderPage_CustomTemplate(t *testing.T) {
	r := &Renderer{}
	actual, err := r.RenderPage(Page{
		Label:           "Custom",
		TemplateName:    "custom",
		TemplateContent: `<h1>{{ .Values.Title }}</h1>{{ .Values.Body }}`,
		Body:            template.HTML("<p>body</p>"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "<h1>Custom</h1><p>body</p>", actual)
}

func TestRenderPage_Translations(t *testing.T) {
	b := catalog.NewBuilder()
	require.NoError(t, b.SetString(language.French, "About", "À propos"))
	require.NoError(t, b.SetString(language.French, "%d images", "%d photos"))

	r := &Renderer{MessagePrinter: message.NewPrinter(language.French, message.Catalog(b))}
	actual, err := r.RenderPage(Page{
		Label:           "About",
		TemplateName:    "l10n",
		TemplateContent: `<h1>{{ .Values.Title }}</h1><p>{{ l10n "%d images" 2 }}</p><p>{{ l10n "Untranslated" }}</p>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "<h1>À propos</h1><p>2 photos</p><p>Untranslated</p>", actual)

	r = &Renderer{}
	actual, err = r.RenderOne("plain", `{{ l10n "About" }} {{ l10n "%d images" 3 }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "About 3 images", actual)
}

func TestRenderPage_InvalidTemplate(t *testing.T) {
	r := &Renderer{}
	_, err := r.RenderPage(Page{
		TemplateName:    "main",
		TemplateContent: "{{.Invalid}}",
	})
	assert.Error(t, err)
}

func TestPane(t *testing.T) {
	tests := []struct {
		name string
		in   media.Descriptor
		want *Image
	}{
		{
			name: "empty",
			in:   media.Descriptor{},
			want: nil,
		},
		{
			name: "image",
			in:   media.Descriptor{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: "A"},
			want: &Image{Alt: "A", Src: "/a.jpg", Width: media.Int(100), Height: media.Int(50)},
		},
		{
			name: "unsupported kind renders nothing",
			in:   media.Descriptor{ID: "6", Type: media.VideoKind, URL: "/v.mp4"},
			want: nil,
		},
		{
			name: "image without url",
			in:   media.Descriptor{ID: "7", Type: media.ImageKind},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pane(tt.in))
		})
	}
}

func TestSplitComposer_Compose(t *testing.T) {
	c := SplitComposer{}

	out, err := c.Compose(
		&Image{Alt: "A", Src: "/a.jpg", Width: media.Int(100), Height: media.Int(50)},
		nil,
	)
	assert.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<div class="splitscreen" data-position="50">`)
	assert.Contains(t, html, `<div class="splitscreen__pane splitscreen__pane--left"><img alt="A" src="/a.jpg" height="50" width="100"></div>`)
	assert.Contains(t, html, `role="separator"`)
	assert.Contains(t, html, `<div class="splitscreen__pane splitscreen__pane--right"></div>`)
}

func TestSplitComposer_Options(t *testing.T) {
	out, err := SplitComposer{Class: "compare", Position: media.Int(250)}.Compose(nil, &Image{Src: "/b.png"})
	assert.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<div class="compare" data-position="100">`)
	assert.Contains(t, html, `<div class="compare__pane compare__pane--right"><img alt="" src="/b.png"></div>`)
}

func TestSplitComposer_Position(t *testing.T) {
	tests := []struct {
		name     string
		position *int
		want     string
	}{
		{name: "unset", position: nil, want: `data-position="50"`},
		{name: "left edge", position: media.Int(0), want: `data-position="0"`},
		{name: "right edge", position: media.Int(100), want: `data-position="100"`},
		{name: "below range", position: media.Int(-5), want: `data-position="0"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SplitComposer{Position: tt.position}.Compose(nil, nil)
			require.NoError(t, err)
			assert.Contains(t, string(out), tt.want)
		})
	}
}
