package render

import (
	"slices"

	"github.com/chartviz/engine/internal/square"
	"github.com/jeffwilliams/squarify"
)

// treemapItem adapts a tree node to squarify.TreeSizer. Internal nodes weigh the
// sum of their children so nested rectangles tile their parent exactly.
type treemapItem struct {
	id       square.NodeID
	size     float64
	children []*treemapItem
}

func (t *treemapItem) Size() float64 { return t.size }

func (t *treemapItem) NumChildren() int { return len(t.children) }

func (t *treemapItem) Child(i int) squarify.TreeSizer { return t.children[i] }

func buildTreemapItem(tree *square.Tree, id square.NodeID) (*treemapItem, int) {
	item := &treemapItem{id: id}
	kids := tree.Children(id)
	if len(kids) == 0 {
		item.size = tree.Node(id).Weight()
		return item, 0
	}
	deepest := 0
	for _, c := range kids {
		child, d := buildTreemapItem(tree, c)
		item.children = append(item.children, child)
		item.size += child.size
		deepest = max(deepest, d+1)
	}
	return item, deepest
}

// layoutTreemap gives the root the whole canvas and nests descendants by weight.
func layoutTreemap(tree *square.Tree, opts Options, scene *Scene) {
	root, levels := buildTreemapItem(tree, 0)

	rootSq := styled(tree, 0, opts.Palette)
	rootSq.W, rootSq.H = opts.Width, opts.Height
	scene.Squares = append(scene.Squares, rootSq)
	if levels == 0 {
		return
	}

	blocks, _ := squarify.Squarify(root, squarify.Rect{X: 0, Y: 0, W: opts.Width, H: opts.Height}, squarify.Options{
		MaxDepth: levels,
		Sort:     true,
	})
	for _, b := range blocks {
		item, ok := b.TreeSizer.(*treemapItem)
		if !ok {
			continue
		}
		sq := styled(tree, item.id, opts.Palette)
		sq.X, sq.Y, sq.W, sq.H = b.X, b.Y, b.W, b.H
		scene.Squares = append(scene.Squares, sq)
	}
	slices.SortStableFunc(scene.Squares, func(a, b Square) int { return int(a.ID) - int(b.ID) })
}
