package stage3d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSelect(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")))
	var s Selection

	assert.True(t, s.Select(tree, "B"))
	id, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, "B", id)
	assert.True(t, s.Is("B"))
	assert.False(t, s.Select(tree, "B"), "reselecting is not a change")

	s.Select(tree, "missing")
	_, ok = s.Selected()
	assert.False(t, ok, "unknown id clears the selection")
}

func TestSelectionRemovedFallsBackToLast(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")), leaf("Z", "Z"))
	var s Selection
	s.Select(tree, "Z")

	next := tree.Remove("Z")
	assert.True(t, s.Removed(next))
	id, _ := s.Selected()
	assert.Equal(t, "B", id, "nested nodes count for the fallback")
}

func TestSelectionRemovedAncestor(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")))
	var s Selection
	s.Select(tree, "B")

	next := tree.Remove("C")
	s.Removed(next)
	id, _ := s.Selected()
	assert.Equal(t, "A", id)
}

func TestSelectionRemovedOtherNode(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), leaf("B", "B"))
	var s Selection
	s.Select(tree, "A")

	assert.False(t, s.Removed(tree.Remove("B")))
	id, _ := s.Selected()
	assert.Equal(t, "A", id)
}

func TestSelectionRemovedLastNode(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	var s Selection
	s.Select(tree, "A")

	s.Removed(tree.Remove("A"))
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSelectionReconcile(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	var s Selection
	s.Select(tree, "A")

	assert.False(t, s.Reconcile(tree))
	assert.True(t, s.Reconcile(mustTree(t, leaf("X", "X"))))
	_, ok := s.Selected()
	assert.False(t, ok)

	assert.False(t, s.Clear())
}
