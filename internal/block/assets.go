package block

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AssetManifest is the build output describing one script bundle.
type AssetManifest struct {
	Dependencies []string `json:"dependencies"`
	Version      string   `json:"version"`
}

func readManifest(path string) (AssetManifest, error) {
	var manifest AssetManifest

	data, err := os.ReadFile(path)
	if err != nil {
		return manifest, fmt.Errorf("you need to build the %q block first: %w", Name, err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return manifest, nil
}

// ScriptDef is a registered script.
type ScriptDef struct {
	Dependencies []string `json:"dependencies,omitempty"`
	Handle       string   `json:"handle"`
	Src          string   `json:"src"`
	Version      string   `json:"version,omitempty"`
}

func (s ScriptDef) URL() string {
	return versioned(s.Src, s.Version)
}

func (s ScriptDef) ToHeadTag() string {
	return fmt.Sprintf(`<script id="%s" src="%s" defer></script>`, html.EscapeString(s.Handle), html.EscapeString(s.URL()))
}

func (s ScriptDef) ToFootTag() string {
	return fmt.Sprintf(`<script id="%s" src="%s"></script>`, html.EscapeString(s.Handle), html.EscapeString(s.URL()))
}

// StyleDef is a registered stylesheet.
type StyleDef struct {
	Handle  string `json:"handle"`
	Src     string `json:"src"`
	Version string `json:"version,omitempty"`
}

func (s StyleDef) URL() string {
	return versioned(s.Src, s.Version)
}

func (s StyleDef) ToHeadTag() string {
	return fmt.Sprintf(`<link id="%s" rel="stylesheet" href="%s">`, html.EscapeString(s.Handle), html.EscapeString(s.URL()))
}

func versioned(src, version string) string {
	if version == "" {
		return src
	}
	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}
	return src + sep + "ver=" + url.QueryEscape(version)
}

func mtimeVersion(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(info.ModTime().Unix(), 10)
}
