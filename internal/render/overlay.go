package render

import (
	"github.com/chartviz/engine/internal/editor"
	"github.com/chartviz/engine/internal/square"
)

// Override is one stored customization. Seq orders overrides sharing a key; the highest wins.
type Override struct {
	Seq  uint64
	Key  square.Key
	Data square.SquareData
}

// ApplyCustomizations returns a copy of tree with the style of the latest override for each
// key merged into every node that maps to that key. Labels are left alone. The input tree is
// not modified.
func ApplyCustomizations(tree *square.Tree, overrides []Override) *square.Tree {
	out := tree.Clone()
	if len(overrides) == 0 {
		return out
	}

	latest := make(map[square.Key]Override, len(overrides))
	for _, o := range overrides {
		if cur, ok := latest[o.Key]; !ok || o.Seq >= cur.Seq {
			latest[o.Key] = o
		}
	}

	// keys are resolved against the original labels so a retitled parent still matches
	keys := make([]square.Key, out.Len())
	for id := range keys {
		keys[id] = tree.KeyOf(square.NodeID(id))
	}
	for id, k := range keys {
		if o, ok := latest[k]; ok {
			editor.ApplyStyle(out.Node(square.NodeID(id)), o.Data)
		}
	}
	return out
}
