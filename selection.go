package stage3d

// Selection tracks the single active node. It only ever holds an id that
// exists in the tree it was last reconciled against, or nothing.
type Selection struct {
	id string
}

// Selected returns the selected id and whether one is set.
func (s *Selection) Selected() (string, bool) {
	return s.id, s.id != ""
}

// Is reports whether id is the selected node.
func (s *Selection) Is(id string) bool {
	return id != "" && s.id == id
}

// Select selects id when tree contains it and clears the selection otherwise.
// It reports whether the selection changed.
func (s *Selection) Select(tree *Tree, id string) bool {
	next := ""
	if tree.Contains(id) {
		next = id
	}
	return s.set(next)
}

// Clear drops the selection.
func (s *Selection) Clear() bool {
	return s.set("")
}

// Removed updates the selection after a removal produced tree. When the
// removed node (or one of its descendants) was selected, the selection falls
// back to the last remaining node in document order.
func (s *Selection) Removed(tree *Tree) bool {
	if s.id == "" || tree.Contains(s.id) {
		return false
	}
	next := ""
	if last := tree.Last(); last != nil {
		next = last.ID
	}
	return s.set(next)
}

// Reconcile clears a selection that no longer resolves in tree.
func (s *Selection) Reconcile(tree *Tree) bool {
	if s.id == "" || tree.Contains(s.id) {
		return false
	}
	return s.set("")
}

func (s *Selection) set(id string) bool {
	if s.id == id {
		return false
	}
	s.id = id
	return true
}
