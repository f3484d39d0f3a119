package editor

import (
	"math"
	"strings"

	"github.com/chartviz/engine/internal/square"
	"github.com/lucasb-eyer/go-colorful"
)

// reference colors the border color is matched against
var urgencyColors = map[square.Urgency]colorful.Color{
	square.UrgencyRed:    {R: 1, G: 0, B: 0},
	square.UrgencyOrange: {R: 1, G: 165.0 / 255, B: 0},
	square.UrgencyYellow: {R: 1, G: 1, B: 0},
	square.UrgencyGreen:  {R: 0, G: 128.0 / 255, B: 0},
	square.UrgencyBlack:  {R: 0, G: 0, B: 0},
}

// UrgencyFromColor maps a border color onto an urgency level. Urgency names match
// directly, hex colors match the perceptually nearest level, anything else is black.
func UrgencyFromColor(color string) square.Urgency {
	c := strings.ToLower(strings.TrimSpace(color))
	if u := square.Urgency(c); u.Valid() {
		return u
	}
	parsed, err := colorful.Hex(c)
	if err != nil {
		return square.UrgencyBlack
	}

	best, bestDist := square.UrgencyBlack, math.MaxFloat64
	for _, u := range square.Urgencies {
		if d := parsed.DistanceLab(urgencyColors[u]); d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}

// FromNode translates a node's style into the editor schema, filling absent fields with defaults.
func FromNode(n *square.Node) square.SquareData {
	d := square.SquareData{
		Priority: square.Priority{
			Density:    square.DefaultDensity,
			Durability: square.DefaultDurability,
			Decor:      string(square.BorderSolid),
		},
		Urgency: square.UrgencyBlack,
		Aesthetic: square.Aesthetic{
			Affect: square.Affect{FontFamily: square.DefaultFontFamily, FontSize: square.DefaultFontSize},
			Effect: square.Effect{Color: square.DefaultTextColor},
		},
	}
	if n == nil {
		return d
	}
	d.Title = n.Name

	s := n.Style
	if s == nil {
		return d
	}
	if w := int(math.Round(s.BorderWidth)); w > 0 {
		d.Priority.Density = w
	}
	if s.BorderStyle.Valid() {
		d.Priority.Decor = string(s.BorderStyle)
		if s.BorderStyle == square.BorderDouble {
			d.Priority.Durability = string(square.BorderDouble)
		}
	}
	if s.Urgency.Valid() {
		d.Urgency = s.Urgency
	} else {
		d.Urgency = UrgencyFromColor(s.BorderColor)
	}
	d.Aesthetic.Impact = s.TextStyle
	if s.FontFamily != "" {
		d.Aesthetic.Affect.FontFamily = s.FontFamily
	}
	if s.FontSize > 0 {
		d.Aesthetic.Affect.FontSize = s.FontSize
	}
	if s.TextColor != "" {
		d.Aesthetic.Effect.Color = s.TextColor
	}
	return d
}

// ApplyTo merges edited data back into the node. Only fields that differ from the
// node's own translation are written, so saving unchanged data leaves the node as it was.
// A "double" durability forces a double border regardless of decor.
func ApplyTo(n *square.Node, d square.SquareData) {
	merge(n, d, true)
}

// ApplyStyle is ApplyTo without the title. Overlays use it because one key covers
// several siblings and each keeps its own label.
func ApplyStyle(n *square.Node, d square.SquareData) {
	merge(n, d, false)
}

func merge(n *square.Node, d square.SquareData, withTitle bool) {
	if n == nil {
		return
	}
	base := FromNode(n)
	if withTitle && d.Title != "" && d.Title != base.Title {
		n.Name = d.Title
	}
	style := func() *square.Style {
		if n.Style == nil {
			n.Style = &square.Style{}
		}
		return n.Style
	}

	if d.Priority.Density != base.Priority.Density {
		style().BorderWidth = float64(max(d.Priority.Density, 1))
	}
	if d.Priority.Decor != base.Priority.Decor || d.Priority.Durability != base.Priority.Durability {
		border := square.BorderStyle(d.Priority.Decor)
		if !border.Valid() {
			border = square.BorderSolid
		}
		if d.Priority.Durability == string(square.BorderDouble) {
			border = square.BorderDouble
		}
		style().BorderStyle = border
	}
	if d.Urgency.Valid() && d.Urgency != base.Urgency {
		s := style()
		s.Urgency = d.Urgency
		s.BorderColor = string(d.Urgency)
	}
	if d.Aesthetic.Impact != base.Aesthetic.Impact {
		style().TextStyle = d.Aesthetic.Impact
	}
	if f := d.Aesthetic.Affect.FontFamily; f != "" && f != base.Aesthetic.Affect.FontFamily {
		style().FontFamily = f
	}
	if sz := d.Aesthetic.Affect.FontSize; sz > 0 && sz != base.Aesthetic.Affect.FontSize {
		style().FontSize = sz
	}
	if c := d.Aesthetic.Effect.Color; c != "" && c != base.Aesthetic.Effect.Color {
		style().TextColor = c
	}
}
