// Package render lays out a square tree as nested squares and draws the result.
//
// Every call to Layout produces a complete Scene from scratch; there is no
// incremental state between calls. Traversal is depth-first in NodeID order, so
// a parent is always drawn before its descendants.
package render

import (
	"fmt"
	"strings"

	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
	appErr "github.com/chartviz/engine/pkg/errors"
)

// Mode selects the layout and filter algorithm.
type Mode string

const (
	ModeScaled        Mode = "scaled"
	ModeScoped        Mode = "scoped"
	ModeIncludedBuild Mode = "included-build"
	ModeTreemap       Mode = "treemap"
)

// Modes lists every supported view mode.
var Modes = []Mode{ModeScaled, ModeScoped, ModeIncludedBuild, ModeTreemap}

// ParseMode returns the mode named s. An empty string selects ModeScaled.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeScaled, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown view mode %q", s))
}

// Variant selects the geometry of the scaled mode.
type Variant string

const (
	VariantRadial   Variant = "radial"
	VariantDiagonal Variant = "diagonal"
)

// ParseVariant returns the variant named s. An empty string selects VariantRadial.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VariantRadial, nil
	case VariantRadial, VariantDiagonal:
		return v, nil
	default:
		return "", appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown layout %q", s))
	}
}

// Canvas defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 800
	DefaultScale  = 1.0

	// DiagonalDepthLimit is the first depth the diagonal geometry does not draw.
	DiagonalDepthLimit = 3

	// ExcludedOpacity is applied to squares toggled out in included-build mode.
	ExcludedOpacity = 0.35
)

// Options configures one Layout call.
type Options struct {
	Mode   Mode
	Layout Variant
	// Class filters the scoped mode.
	Class square.Class
	// Inclusion holds the toggle state for included-build mode. Nil means everything is included.
	Inclusion *Inclusion
	Width     float64
	Height    float64
	// Scale multiplies the root weight into the root edge length.
	Scale   float64
	Palette theme.Palette
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeScaled
	}
	if o.Layout == "" {
		o.Layout = VariantRadial
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Palette.Name == "" {
		o.Palette = theme.Resolve(theme.Default, "")
	}
	return o
}

// Square is one drawn node. X and Y are the top-left corner.
type Square struct {
	ID          square.NodeID      `json:"id"`
	Label       string             `json:"label"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	W           float64            `json:"w"`
	H           float64            `json:"h"`
	Depth       int                `json:"depth"`
	Class       square.Class       `json:"class"`
	ParentText  string             `json:"parentText"`
	Fill        string             `json:"fill"`
	Stroke      string             `json:"stroke"`
	StrokeWidth float64            `json:"strokeWidth"`
	BorderStyle square.BorderStyle `json:"borderStyle"`
	TextColor   string             `json:"textColor"`
	TextStyle   square.TextStyle   `json:"textStyle"`
	FontFamily  string             `json:"fontFamily"`
	FontSize    int                `json:"fontSize"`
	Urgency     square.Urgency     `json:"urgency,omitempty"`
	Opacity     float64            `json:"opacity"`
	Included    bool               `json:"included"`
}

// Contains reports whether the point lies inside the square.
func (s Square) Contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

// Scene is the output of a layout pass.
type Scene struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Mode       Mode         `json:"mode"`
	Layout     Variant      `json:"layout,omitempty"`
	Class      square.Class `json:"class,omitempty"`
	Theme      string       `json:"theme"`
	Background string       `json:"background"`
	Squares    []Square     `json:"squares"`
}

// Find returns the square drawn for id.
func (s *Scene) Find(id square.NodeID) (Square, bool) {
	for _, sq := range s.Squares {
		if sq.ID == id {
			return sq, true
		}
	}
	return Square{}, false
}

// HitTest returns the topmost square under the point.
func (s *Scene) HitTest(x, y float64) (Square, bool) {
	for i := len(s.Squares) - 1; i >= 0; i-- {
		if s.Squares[i].Contains(x, y) {
			return s.Squares[i], true
		}
	}
	return Square{}, false
}

// IDs returns the ids of all drawn squares in draw order.
func (s *Scene) IDs() []square.NodeID {
	out := make([]square.NodeID, len(s.Squares))
	for i, sq := range s.Squares {
		out[i] = sq.ID
	}
	return out
}

// Layout computes the scene for tree under opts.
func Layout(tree *square.Tree, opts Options) (*Scene, error) {
	if tree == nil || tree.Len() == 0 {
		return nil, appErr.Wrap(square.ErrEmptyTree, appErr.CodeInvalid, "nothing to render")
	}
	opts = opts.withDefaults()

	scene := &Scene{
		Width:      opts.Width,
		Height:     opts.Height,
		Mode:       opts.Mode,
		Theme:      opts.Palette.Name,
		Background: opts.Palette.Background,
	}

	switch opts.Mode {
	case ModeScaled:
		scene.Layout = opts.Layout
		if opts.Layout == VariantDiagonal {
			layoutDiagonal(tree, opts, scene, nil)
		} else {
			layoutRadial(tree, opts, scene, nil)
		}
	case ModeScoped:
		if _, ok := square.ParseClass(string(opts.Class)); !ok {
			return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("scoped mode needs a class, got %q", opts.Class))
		}
		scene.Class = opts.Class
		scene.Layout = VariantRadial
		layoutRadial(tree, opts, scene, func(id square.NodeID) bool {
			return tree.Class(id) == opts.Class
		})
	case ModeIncludedBuild:
		scene.Layout = VariantDiagonal
		layoutDiagonal(tree, opts, scene, nil)
		for i := range scene.Squares {
			sq := &scene.Squares[i]
			if opts.Inclusion.Excluded(sq.ID) {
				sq.Included = false
				sq.Opacity = ExcludedOpacity
			}
		}
	case ModeTreemap:
		layoutTreemap(tree, opts, scene)
	default:
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown view mode %q", opts.Mode))
	}
	return scene, nil
}

// styled builds the drawn square for id, substituting palette defaults for absent attributes.
func styled(tree *square.Tree, id square.NodeID, p theme.Palette) Square {
	n := tree.Node(id)
	sq := Square{
		ID:          id,
		Label:       n.Name,
		Depth:       tree.Depth(id),
		Class:       tree.Class(id),
		ParentText:  tree.ParentText(id),
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: 1,
		BorderStyle: square.BorderSolid,
		TextColor:   p.Text,
		FontFamily:  square.DefaultFontFamily,
		FontSize:    square.DefaultFontSize,
		Opacity:     1,
		Included:    true,
	}
	if n.Color != "" {
		sq.Fill = n.Color
	}
	s := n.Style
	if s == nil {
		return sq
	}
	if s.BorderWidth > 0 {
		sq.StrokeWidth = s.BorderWidth
	}
	if s.BorderStyle.Valid() {
		sq.BorderStyle = s.BorderStyle
	}
	if s.BorderColor != "" {
		sq.Stroke = s.BorderColor
	}
	if s.TextColor != "" {
		sq.TextColor = s.TextColor
	}
	if s.FontFamily != "" {
		sq.FontFamily = s.FontFamily
	}
	if s.FontSize > 0 {
		sq.FontSize = s.FontSize
	}
	sq.TextStyle = s.TextStyle
	if s.Urgency.Valid() {
		sq.Urgency = s.Urgency
	}
	return sq
}
