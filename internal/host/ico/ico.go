package ico

import (
	"html"
	"net/http"
	"strings"
	"unicode/utf8"
)

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<rect width="100" height="100" fill="#000"/>
<rect x="50" width="50" height="100" fill="#fff"/>
<text x="50" y="50" font-family="Arial, sans-serif" font-size="60" font-weight="bold" fill="#888" text-anchor="middle" dominant-baseline="central">{{char}}</text>
</svg>`

// Ico is a generated split black and white favicon carrying one character.
type Ico struct {
	svg []byte
}

// New builds the icon from the first character of name.
func New(name string) *Ico {
	char := ""
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		char = strings.ToUpper(string(r))
	}
	return &Ico{svg: []byte(strings.Replace(svgTemplate, "{{char}}", html.EscapeString(char), 1))}
}

func (i *Ico) SVG() []byte {
	return i.svg
}

func (i *Ico) FaviconHandler(w http.ResponseWriter, r *http.Request) {
	// served as svg even on the .ico path
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(i.svg)
}
