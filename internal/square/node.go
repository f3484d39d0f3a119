// Package square holds the nested-square tree that drives chart visualizations
// and the richer attribute schema the square editor works with.
package square

// BorderStyle is the stroke pattern of a square's outline.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDouble BorderStyle = "double"
	BorderDotted BorderStyle = "dotted"
	BorderDashed BorderStyle = "dashed"
)

// Valid reports whether s is one of the known border styles.
func (s BorderStyle) Valid() bool {
	switch s {
	case BorderSolid, BorderDouble, BorderDotted, BorderDashed:
		return true
	}
	return false
}

// Urgency is a coarse traffic-light marker attached to a square.
type Urgency string

const (
	UrgencyRed    Urgency = "red"
	UrgencyYellow Urgency = "yellow"
	UrgencyOrange Urgency = "orange"
	UrgencyGreen  Urgency = "green"
	UrgencyBlack  Urgency = "black"
)

// Urgencies lists every urgency level in display order.
var Urgencies = []Urgency{UrgencyRed, UrgencyOrange, UrgencyYellow, UrgencyGreen, UrgencyBlack}

// Valid reports whether u is one of the known urgency levels.
func (u Urgency) Valid() bool {
	for _, known := range Urgencies {
		if u == known {
			return true
		}
	}
	return false
}

// TextStyle toggles label decorations.
type TextStyle struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Underline bool `json:"underline"`
}

// Style is the optional per-node presentation override.
type Style struct {
	BorderWidth float64     `json:"borderWidth,omitempty"`
	BorderStyle BorderStyle `json:"borderStyle,omitempty"`
	BorderColor string      `json:"borderColor,omitempty"`
	TextColor   string      `json:"textColor,omitempty"`
	TextStyle   TextStyle   `json:"textStyle"`
	Urgency     Urgency     `json:"urgency,omitempty"`
	FontFamily  string      `json:"fontFamily,omitempty"`
	FontSize    int         `json:"fontSize,omitempty"`
}

// Node is one square of the diagram. Children are ordered; an empty slice is a leaf.
type Node struct {
	Name     string  `json:"name"`
	Size     float64 `json:"size"`
	Color    string  `json:"color,omitempty"`
	Style    *Style  `json:"style,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// DefaultSize is used for layout when a node carries no positive size.
const DefaultSize = 100

// Weight returns the node's layout weight, substituting DefaultSize for malformed sizes.
func (n *Node) Weight() float64 {
	if n == nil || n.Size <= 0 {
		return DefaultSize
	}
	return n.Size
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n == nil || len(n.Children) == 0 }

// clone deep-copies n and its subtree.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Name: n.Name, Size: n.Size, Color: n.Color}
	if n.Style != nil {
		s := *n.Style
		out.Style = &s
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.clone()
		}
	}
	return out
}
