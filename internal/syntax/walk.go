package syntax

// Action tells Walk how to continue after visiting a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren moves on to the next sibling without descending.
	SkipChildren
	// Stop ends the walk.
	Stop
)

// Visitor is called once per node in pre-order.
type Visitor func(n Node) Action

// Walk visits every node below root depth-first. The root itself is not
// visited when it is a *Module; any other root is.
func Walk(root Node, visit Visitor) {
	if root == nil {
		return
	}
	if m, ok := root.(*Module); ok {
		walkAll(m.Body, visit)
		return
	}
	walk(root, visit)
}

func walkAll(nodes []Node, visit Visitor) bool {
	for _, n := range nodes {
		if !walk(n, visit) {
			return false
		}
	}
	return true
}

// walk returns false once the traversal has been stopped.
func walk(n Node, visit Visitor) bool {
	if n == nil {
		return true
	}
	switch visit(n) {
	case Stop:
		return false
	case SkipChildren:
		return true
	}
	return walkAll(n.Children(), visit)
}

// Find returns the first node, in pre-order, for which match returns true.
func Find(root Node, match func(Node) bool) Node {
	var found Node
	Walk(root, func(n Node) Action {
		if match(n) {
			found = n
			return Stop
		}
		return Continue
	})
	return found
}
