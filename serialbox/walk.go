package serialbox

import "errors"

// SkipNode can be returned by a WalkFunc to skip the children of the
// current node.
var SkipNode = errors.New("skip this node")

// WalkFunc is called for each node during traversal.
// path is the full path to the node; sp is the node's savepoint or nil.
// Return nil to continue walking, SkipNode to skip the node's children,
// or another error to stop.
type WalkFunc func(path []any, sp *Savepoint) error

// Walk traverses the tree depth-first in insertion order. The callback is
// called for every node below the root, parents before children.
//
// Example:
//
//	serialbox.Walk(tree, func(path []any, sp *serialbox.Savepoint) error {
//	    if sp != nil {
//	        fmt.Println(path)
//	    }
//	    return nil
//	})
func Walk(t *Tree, fn WalkFunc) error {
	return walkNode(t.root, nil, fn)
}

func walkNode(n *Node, path []any, fn WalkFunc) error {
	keys := n.Keys()
	for i, k := range n.keys {
		child := n.children[k]
		childPath := append(append([]any(nil), path...), keys[i])

		err := fn(childPath, child.sp)
		if errors.Is(err, SkipNode) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walkNode(child, childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Savepoints returns the savepoints of the tree in walk order.
func (t *Tree) Savepoints() []*Savepoint {
	var out []*Savepoint
	Walk(t, func(_ []any, sp *Savepoint) error {
		if sp != nil {
			out = append(out, sp)
		}
		return nil
	})
	return out
}
