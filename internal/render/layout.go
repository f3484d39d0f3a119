package render

import (
	"math"

	"github.com/chartviz/engine/internal/square"
)

// diagonalOffsets places children on the parent's corners, clockwise from top-left.
var diagonalOffsets = [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// layoutRadial distributes children evenly on a circle whose radius is the parent's edge.
// Each child is half the size of its parent. keep filters which squares are emitted;
// skipped squares still position their descendants.
func layoutRadial(tree *square.Tree, opts Options, scene *Scene, keep func(square.NodeID) bool) {
	var place func(id square.NodeID, cx, cy, edge float64)
	place = func(id square.NodeID, cx, cy, edge float64) {
		if keep == nil || keep(id) {
			scene.Squares = append(scene.Squares, positioned(tree, id, opts, cx, cy, edge))
		}
		kids := tree.Children(id)
		for i, c := range kids {
			theta := 2*math.Pi*float64(i)/float64(len(kids)) - math.Pi/2
			place(c, cx+edge*math.Cos(theta), cy+edge*math.Sin(theta), edge/2)
		}
	}
	place(0, opts.Width/2, opts.Height/2, rootEdge(tree, opts))
}

// layoutDiagonal centers each child on a corner of its parent and stops at DiagonalDepthLimit.
func layoutDiagonal(tree *square.Tree, opts Options, scene *Scene, keep func(square.NodeID) bool) {
	var place func(id square.NodeID, cx, cy, edge float64)
	place = func(id square.NodeID, cx, cy, edge float64) {
		if tree.Depth(id) >= DiagonalDepthLimit {
			return
		}
		if keep == nil || keep(id) {
			scene.Squares = append(scene.Squares, positioned(tree, id, opts, cx, cy, edge))
		}
		half := edge / 2
		for i, c := range tree.Children(id) {
			off := diagonalOffsets[i%len(diagonalOffsets)]
			place(c, cx+off[0]*half, cy+off[1]*half, half)
		}
	}
	place(0, opts.Width/2, opts.Height/2, rootEdge(tree, opts))
}

func rootEdge(tree *square.Tree, opts Options) float64 {
	return tree.Root.Weight() * opts.Scale
}

func positioned(tree *square.Tree, id square.NodeID, opts Options, cx, cy, edge float64) Square {
	sq := styled(tree, id, opts.Palette)
	sq.X, sq.Y = cx-edge/2, cy-edge/2
	sq.W, sq.H = edge, edge
	return sq
}
