package square

// Defaults applied when translating a node into SquareData.
const (
	DefaultDensity    = 1
	DefaultDurability = "single"
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 14
	DefaultTextColor  = "black"
)

// SquareData is the editor's view of a square.
type SquareData struct {
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	Urgency   Urgency   `json:"urgency"`
	Aesthetic Aesthetic `json:"aesthetic"`
}

// Priority groups the outline attributes.
type Priority struct {
	Density    int    `json:"density"`
	Durability string `json:"durability"`
	Decor      string `json:"decor"`
}

// Aesthetic groups the label attributes.
type Aesthetic struct {
	Impact TextStyle `json:"impact"`
	Affect Affect    `json:"affect"`
	Effect Effect    `json:"effect"`
}

type Affect struct {
	FontFamily string `json:"fontFamily"`
	FontSize   int    `json:"fontSize"`
}

type Effect struct {
	Color string `json:"color"`
}

// Key identifies a class of squares for customization purposes.
// Every node sharing class, parent text and depth maps to the same key.
type Key struct {
	SquareClass Class  `json:"squareClass"`
	ParentText  string `json:"parentText"`
	Depth       int    `json:"depth"`
}

// KeyOf returns the customization key for id.
func (t *Tree) KeyOf(id NodeID) Key {
	return Key{SquareClass: t.Class(id), ParentText: t.ParentText(id), Depth: t.Depth(id)}
}
