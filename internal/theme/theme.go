// Package theme defines the named palettes a chart can be rendered with.
package theme

import (
	"sort"
	"strings"
)

// Palette is an explicit theme passed to the renderer.
type Palette struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Fill       string `json:"fill"`
	Stroke     string `json:"stroke"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

var palettes = map[string]Palette{
	"light":  {Name: "light", Background: "#ffffff", Fill: "#d9e4f5", Stroke: "#333333", Text: "#111111", Accent: "#1f6feb"},
	"dark":   {Name: "dark", Background: "#161b22", Fill: "#30363d", Stroke: "#c9d1d9", Text: "#f0f6fc", Accent: "#58a6ff"},
	"forest": {Name: "forest", Background: "#f3f7f0", Fill: "#a7c957", Stroke: "#386641", Text: "#1b2d1b", Accent: "#bc4749"},
	"ocean":  {Name: "ocean", Background: "#eef6fb", Fill: "#8ecae6", Stroke: "#023047", Text: "#023047", Accent: "#fb8500"},
}

// Default is the palette used when none is requested.
const Default = "light"

// Lookup returns the palette called name. Names are case-insensitive.
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Resolve returns the named palette, falling back to fallback and then to Default.
func Resolve(name, fallback string) Palette {
	if p, ok := Lookup(name); ok {
		return p
	}
	if p, ok := Lookup(fallback); ok {
		return p
	}
	return palettes[Default]
}

// Names lists the known palettes alphabetically.
func Names() []string {
	out := make([]string, 0, len(palettes))
	for n := range palettes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
