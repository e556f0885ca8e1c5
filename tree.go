package stage3d

import (
	"fmt"
	"reflect"
	"slices"
)

// Tree is an immutable snapshot of the scene hierarchy. Every mutating
// operation returns a new snapshot that shares all untouched subtrees with
// the receiver; the receiver itself is never modified. A nil *Tree is an
// empty scene.
//
// Operations that find nothing to change return the receiver unchanged, so
// callers can detect no-ops with a pointer comparison.
type Tree struct {
	roots []*Node
}

// NewTree builds a snapshot from root nodes, rewriting every ParentID to match
// the nesting and validating the hierarchy invariants.
func NewTree(roots []*Node) (*Tree, error) {
	out := make([]*Node, len(roots))
	for i, r := range roots {
		if r == nil {
			return nil, fmt.Errorf("%w: nil root at index %d", ErrInvalidNode, i)
		}
		out[i] = withParents(r, "")
	}
	t := &Tree{roots: out}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Roots returns the root-level sequence. The returned slice MUST NOT be mutated.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return t.roots
}

// Len returns the number of nodes at every depth.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// Walk visits every node in document (pre-order) order. Returning false from
// fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	walkNodes(t.Roots(), 0, fn)
}

func walkNodes(nodes []*Node, depth int, fn func(*Node, int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if !walkNodes(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id. The search is depth-first and
// pre-order: a container matches before any of its descendants.
func (t *Tree) Find(id string) (*Node, bool) {
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Contains reports whether id resolves to a node.
func (t *Tree) Contains(id string) bool {
	_, ok := t.Find(id)
	return ok
}

// Last returns the last node in document order, descending into the last
// child of every container, or nil for an empty tree.
func (t *Tree) Last() *Node {
	nodes := t.Roots()
	var last *Node
	for len(nodes) > 0 {
		last = nodes[len(nodes)-1]
		nodes = last.Children
	}
	return last
}

// Equal reports whether t and o describe the same hierarchy.
func (t *Tree) Equal(o *Tree) bool {
	a, b := t.Roots(), o.Roots()
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// InsertRoot appends n to the root-level sequence.
func (t *Tree) InsertRoot(n *Node) (*Tree, error) {
	n, err := t.prepare(n, "")
	if err != nil {
		return t, err
	}
	roots := slices.Clone(t.Roots())
	return &Tree{roots: append(roots, n)}, nil
}

// InsertChild appends n to the children of the container parentID.
// ErrInvalidParent is returned, and the tree left unchanged, when parentID is
// missing or names a leaf.
func (t *Tree) InsertChild(parentID string, n *Node) (*Tree, error) {
	parent, ok := t.Find(parentID)
	if !ok || !parent.IsContainer() {
		return t, fmt.Errorf("%w: %q", ErrInvalidParent, parentID)
	}
	n, err := t.prepare(n, parentID)
	if err != nil {
		return t, err
	}
	return t.edit(parentID, func(p *Node) []*Node {
		children := make([]*Node, 0, len(p.Children)+1)
		children = append(children, p.Children...)
		return []*Node{p.withChildren(append(children, n))}
	}), nil
}

// UpdateTransform replaces the transform of id. The receiver is returned when
// id is missing or tr equals the current value.
func (t *Tree) UpdateTransform(id string, tr Transform) *Tree {
	return t.edit(id, func(n *Node) []*Node {
		if n.Transform == tr {
			return []*Node{n}
		}
		c := n.shallow()
		c.Transform = tr
		return []*Node{c}
	})
}

// UpdateStyle merges patch into the style of id. The receiver is returned when
// id is missing or the merge changes nothing.
func (t *Tree) UpdateStyle(id string, patch StylePatch) *Tree {
	return t.edit(id, func(n *Node) []*Node {
		style := patch.apply(n.Style)
		if style.Equal(n.Style) {
			return []*Node{n}
		}
		c := n.shallow()
		c.Style = style
		return []*Node{c}
	})
}

// UpdateBackground replaces the background of id; nil removes it.
func (t *Tree) UpdateBackground(id string, bg *Background) *Tree {
	return t.edit(id, func(n *Node) []*Node {
		if n.Background.Equal(bg) {
			return []*Node{n}
		}
		c := n.shallow()
		c.Background = nil
		if bg != nil {
			b := *bg
			c.Background = &b
		}
		return []*Node{c}
	})
}

// Rename changes the display name of id.
func (t *Tree) Rename(id, name string) *Tree {
	return t.edit(id, func(n *Node) []*Node {
		if n.Name == name {
			return []*Node{n}
		}
		c := n.shallow()
		c.Name = name
		return []*Node{c}
	})
}

// Clone deep-copies the subtree rooted at id, gives every copied node a fresh
// id and inserts the copy right after the original in the same sequence.
// It returns the new snapshot and the id of the copy, or the receiver and ""
// when id is missing.
func (t *Tree) Clone(id string) (*Tree, string) {
	var newID string
	var cloneErr error
	out := t.edit(id, func(n *Node) []*Node {
		c, err := deepCopy(n)
		if err != nil {
			cloneErr = err
			return []*Node{n}
		}
		reassignIDs(c, n.ParentID)
		c.Name += cloneSuffix
		newID = c.ID
		return []*Node{n, c}
	})
	if cloneErr != nil {
		return t, ""
	}
	return out, newID
}

// Remove deletes id and its entire subtree, wherever it sits in the hierarchy.
// Containers emptied by the removal keep an empty child sequence.
func (t *Tree) Remove(id string) *Tree {
	return t.edit(id, func(*Node) []*Node {
		return nil
	})
}

// Validate checks the hierarchy invariants: non-empty unique ids, children
// only on containers, ParentID matching the nesting and no node reachable
// twice.
func (t *Tree) Validate() error {
	ids := make(map[string]struct{})
	seen := make(map[*Node]struct{})
	return validateNodes(t.Roots(), "", ids, seen)
}

func validateNodes(nodes []*Node, parentID string, ids map[string]struct{}, seen map[*Node]struct{}) error {
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: nil node under %q", ErrInvalidNode, parentID)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: node %q reachable twice", ErrInvalidNode, n.ID)
		}
		seen[n] = struct{}{}
		if n.ID == "" {
			return fmt.Errorf("%w: empty id under %q", ErrInvalidNode, parentID)
		}
		if _, ok := ids[n.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
		}
		ids[n.ID] = struct{}{}
		if n.ParentID != parentID {
			return fmt.Errorf("%w: %q has parentId %q, owned by %q", ErrInvalidNode, n.ID, n.ParentID, parentID)
		}
		if !ValidColor(n.Style.BackgroundColor) {
			return fmt.Errorf("%w: %q has background color %q", ErrInvalidNode, n.ID, n.Style.BackgroundColor)
		}
		switch n.Kind {
		case KindLeaf:
			if len(n.Children) > 0 {
				return fmt.Errorf("%w: leaf %q has children", ErrInvalidNode, n.ID)
			}
		case KindContainer:
			if n.Children == nil {
				return fmt.Errorf("%w: container %q has no child sequence", ErrInvalidNode, n.ID)
			}
		default:
			return fmt.Errorf("%w: %q has kind %q", ErrInvalidNode, n.ID, n.Kind)
		}
		if err := validateNodes(n.Children, n.ID, ids, seen); err != nil {
			return err
		}
	}
	return nil
}

// prepare copies n for insertion under parentID: a missing id is generated,
// ParentIDs are rewired and the subtree is checked against the tree's ids.
func (t *Tree) prepare(n *Node, parentID string) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	c := n.shallow()
	if c.ID == "" {
		c.ID = NewID()
	}
	switch {
	case c.IsContainer() && c.Children == nil:
		c.Children = []*Node{}
	case !c.IsContainer() && len(c.Children) == 0:
		c.Children = nil
	}
	c = withParents(c, parentID)

	ids := make(map[string]struct{})
	t.Walk(func(x *Node, _ int) bool {
		ids[x.ID] = struct{}{}
		return true
	})
	if err := validateNodes([]*Node{c}, parentID, ids, make(map[*Node]struct{})); err != nil {
		return nil, err
	}
	return c, nil
}

// edit rewrites the sequence containing id, replacing that node with the
// nodes fn returns, and copies every ancestor on the way back to the root.
// The receiver is returned when id is missing or fn hands back the node as is.
func (t *Tree) edit(id string, fn func(*Node) []*Node) *Tree {
	roots, _, changed := editNodes(t.Roots(), id, fn)
	if !changed {
		return t
	}
	return &Tree{roots: roots}
}

func editNodes(nodes []*Node, id string, fn func(*Node) []*Node) (out []*Node, found, changed bool) {
	for i, n := range nodes {
		if n.ID == id {
			repl := fn(n)
			if len(repl) == 1 && repl[0] == n {
				return nodes, true, false
			}
			out = make([]*Node, 0, len(nodes)-1+len(repl))
			out = append(out, nodes[:i]...)
			out = append(out, repl...)
			out = append(out, nodes[i+1:]...)
			return out, true, true
		}
		if len(n.Children) == 0 {
			continue
		}
		children, found, changed := editNodes(n.Children, id, fn)
		if !found {
			continue
		}
		if !changed {
			return nodes, true, false
		}
		out = slices.Clone(nodes)
		out[i] = n.withChildren(children)
		return out, true, true
	}
	return nodes, false, false
}

// withParents returns n with ParentID set to parentID and every descendant
// pointing at its owner. Nodes that already agree are shared, not copied.
func withParents(n *Node, parentID string) *Node {
	var children []*Node
	changed := n.ParentID != parentID
	if n.Children != nil {
		children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			if c == nil {
				children[i] = nil
				continue
			}
			children[i] = withParents(c, n.ID)
			if children[i] != c {
				changed = true
			}
		}
	}
	if !changed {
		return n
	}
	c := n.withChildren(children)
	c.ParentID = parentID
	return c
}
