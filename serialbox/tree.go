package serialbox

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// Tree indexes savepoints by the path [name, key1, value1, key2, value2,
// ...] built from their name and metainfo in engine order. Savepoints
// with identical paths collapse: the one inserted last wins. A tree is
// sealed once built; further insertions fail with ErrReadOnlyContainer.
type Tree struct {
	root   *Node
	sealed bool
	leaves int
	logger *slog.Logger
}

// Node is a level of the tree. A node has ordered children, a savepoint,
// or both.
type Node struct {
	depth    int
	keys     []any
	children map[any]*Node
	sp       *Savepoint
}

func newNode(depth int) *Node {
	return &Node{depth: depth, children: make(map[any]*Node)}
}

// NewTree returns an empty unsealed tree.
func NewTree(logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tree{root: newNode(0), logger: logger}
}

// PathOf returns the tree path of sp.
func PathOf(sp *Savepoint) ([]any, error) {
	name, err := sp.Name()
	if err != nil {
		return nil, err
	}
	meta, err := sp.Metainfo()
	if err != nil {
		return nil, err
	}
	path := make([]any, 0, 1+2*len(meta))
	path = append(path, name)
	for _, p := range meta {
		path = append(path, p.Key, p.Value)
	}
	return path, nil
}

// segment normalizes a path element for the given depth: names and keys
// are strings, values are metainfo values.
func segment(depth int, s any) (any, error) {
	if depth == 0 || depth%2 == 1 {
		str, ok := s.(string)
		if !ok {
			return nil, fmt.Errorf("path element %d must be a string, got %T", depth, s)
		}
		return str, nil
	}
	return metainfo.Encode(s)
}

// Insert adds sp at its path and takes ownership of it. A savepoint
// already at that path is replaced and closed.
func (t *Tree) Insert(sp *Savepoint) error {
	if t.sealed {
		key := any("<savepoint>")
		if name, err := sp.Name(); err == nil {
			key = name
		}
		return &ReadOnlyError{Key: key}
	}
	path, err := PathOf(sp)
	if err != nil {
		return err
	}

	n := t.root
	for _, s := range path {
		seg, err := segment(n.depth, s)
		if err != nil {
			return err
		}
		child, ok := n.children[seg]
		if !ok {
			child = newNode(n.depth + 1)
			n.children[seg] = child
			n.keys = append(n.keys, seg)
		}
		n = child
	}

	if old := n.sp; old != nil {
		t.logger.Warn("savepoint path collision, keeping the later savepoint", "path", formatPath(path))
		if err := old.Close(); err != nil {
			return err
		}
		t.leaves--
	}
	n.sp = sp
	t.leaves++
	return nil
}

// Seal makes the tree read-only.
func (t *Tree) Seal() { t.sealed = true }

// Sealed reports whether the tree is read-only.
func (t *Tree) Sealed() bool { return t.sealed }

// Len returns the number of savepoints in the tree.
func (t *Tree) Len() int { return t.leaves }

// Root returns the root node, whose children are savepoint names.
func (t *Tree) Root() *Node { return t.root }

// Keys returns the savepoint names in first-insertion order.
func (t *Tree) Keys() []any { return t.root.Keys() }

// Lookup returns the node at path. Values may be given as Go values;
// they are converted like metainfo.
func (t *Tree) Lookup(path ...any) (*Node, error) {
	n := t.root
	for i, s := range path {
		child, ok := n.Child(s)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, formatPath(path[:i+1]))
		}
		n = child
	}
	return n, nil
}

// Savepoint returns the savepoint at path.
func (t *Tree) Savepoint(path ...any) (*Savepoint, error) {
	n, err := t.Lookup(path...)
	if err != nil {
		return nil, err
	}
	if n.sp == nil {
		return nil, fmt.Errorf("%w: %s is not a savepoint", ErrNotFound, formatPath(path))
	}
	return n.sp, nil
}

// Field loads a field from the savepoint at path and returns its view.
func (t *Tree) Field(name string, option any, path ...any) (*Array, error) {
	sp, err := t.Savepoint(path...)
	if err != nil {
		return nil, err
	}
	return sp.Field(name, option)
}

// Close releases every savepoint in the tree.
func (t *Tree) Close() error {
	var errs []error
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.sp != nil {
			errs = append(errs, n.sp.Close())
		}
		for _, k := range n.keys {
			visit(n.children[k])
		}
	}
	visit(t.root)
	return errors.Join(errs...)
}

func (t *Tree) String() string {
	names := make([]string, 0, len(t.root.keys))
	for _, k := range t.root.keys {
		names = append(names, fmt.Sprint(k))
	}
	return fmt.Sprintf("SavepointTree[%s]", strings.Join(names, ", "))
}

// Child returns the child at segment s.
func (n *Node) Child(s any) (*Node, bool) {
	seg, err := segment(n.depth, s)
	if err != nil {
		return nil, false
	}
	child, ok := n.children[seg]
	return child, ok
}

// Keys returns the child segments in first-insertion order.
func (n *Node) Keys() []any {
	out := make([]any, len(n.keys))
	for i, k := range n.keys {
		if v, ok := k.(metainfo.Value); ok {
			out[i] = v.Interface()
		} else {
			out[i] = k
		}
	}
	return out
}

// Savepoint returns the savepoint stored at the node, or nil.
func (n *Node) Savepoint() *Savepoint { return n.sp }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.keys) == 0 }

// Field loads a field from the node's savepoint and returns its view.
func (n *Node) Field(name string, option any) (*Array, error) {
	if n.sp == nil {
		return nil, fmt.Errorf("%w: node is not a savepoint", ErrNotFound)
	}
	return n.sp.Field(name, option)
}

func formatPath(path []any) string {
	parts := make([]string, len(path))
	for i, p := range path {
		if v, ok := p.(metainfo.Value); ok && v.Kind() == metainfo.KindString {
			parts[i] = fmt.Sprintf("%q", v.String())
			continue
		}
		if s, ok := p.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tree builds the savepoint tree of the store and seals it. The tree owns
// the savepoints; close it when done. On error every savepoint acquired
// so far is released.
func (s *Serializer) Tree() (*Tree, error) {
	n, err := s.SavepointCount()
	if err != nil {
		return nil, err
	}
	t := NewTree(s.logger)
	for i := 0; i < n; i++ {
		sp, err := s.Savepoint(i)
		if err != nil {
			t.Close()
			return nil, err
		}
		if err := t.Insert(sp); err != nil {
			sp.Close()
			t.Close()
			return nil, err
		}
	}
	t.Seal()
	s.logger.Debug("built savepoint tree", "savepoints", n, "leaves", t.Len())
	return t, nil
}
