package square

// Class is the synthetic, depth-derived label used to scope a view.
type Class string

const (
	ClassRoot   Class = "root"
	ClassBranch Class = "branch"
	ClassLeaf   Class = "leaf"
	ClassFruit  Class = "fruit"
)

// Classes lists the synthetic classes from shallowest to deepest.
var Classes = []Class{ClassRoot, ClassBranch, ClassLeaf, ClassFruit}

// ClassForDepth maps a recursion depth onto its class. Everything at depth 3 or below is fruit.
func ClassForDepth(depth int) Class {
	switch {
	case depth <= 0:
		return ClassRoot
	case depth == 1:
		return ClassBranch
	case depth == 2:
		return ClassLeaf
	default:
		return ClassFruit
	}
}

// ParseClass returns the class named s.
func ParseClass(s string) (Class, bool) {
	for _, c := range Classes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
