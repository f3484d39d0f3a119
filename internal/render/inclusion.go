package render

import (
	"slices"

	"github.com/chartviz/engine/internal/square"
)

// Inclusion tracks which squares are toggled out of an included-build view.
// The zero value includes everything; a nil *Inclusion does too and ignores writes.
type Inclusion struct {
	excluded map[square.NodeID]struct{}
}

// NewInclusion starts with ids excluded.
func NewInclusion(ids ...square.NodeID) *Inclusion {
	in := &Inclusion{}
	for _, id := range ids {
		in.Exclude(id)
	}
	return in
}

// Toggle flips id and returns whether it is now included.
func (in *Inclusion) Toggle(id square.NodeID) bool {
	if in == nil {
		return true
	}
	if in.Excluded(id) {
		delete(in.excluded, id)
		return true
	}
	in.Exclude(id)
	return false
}

// Exclude marks id as excluded.
func (in *Inclusion) Exclude(id square.NodeID) {
	if in == nil {
		return
	}
	if in.excluded == nil {
		in.excluded = make(map[square.NodeID]struct{})
	}
	in.excluded[id] = struct{}{}
}

// Excluded reports whether id was toggled out.
func (in *Inclusion) Excluded(id square.NodeID) bool {
	if in == nil {
		return false
	}
	_, ok := in.excluded[id]
	return ok
}

// ExcludedIDs returns the excluded ids in ascending order.
func (in *Inclusion) ExcludedIDs() []square.NodeID {
	if in == nil {
		return nil
	}
	out := make([]square.NodeID, 0, len(in.excluded))
	for id := range in.excluded {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone copies the toggle state.
func (in *Inclusion) Clone() *Inclusion {
	return NewInclusion(in.ExcludedIDs()...)
}
