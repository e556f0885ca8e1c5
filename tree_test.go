package stage3d

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(id, name string) *Node {
	n := NewLeaf(name, DefaultStyle())
	n.ID = id
	return n
}

func container(id, name string, children ...*Node) *Node {
	n := NewContainer(name)
	n.ID = id
	n.Children = append(n.Children, children...)
	return n
}

func mustTree(t *testing.T, roots ...*Node) *Tree {
	t.Helper()
	tree, err := NewTree(roots)
	require.NoError(t, err)
	return tree
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// --- Insert and lookup ---

func TestInsertRootThenFind(t *testing.T) {
	var tree *Tree
	n := NewLeaf("box", DefaultStyle())

	next, err := tree.InsertRoot(n)
	require.NoError(t, err)

	got, ok := next.Find(n.ID)
	require.True(t, ok)
	assert.Equal(t, "box", got.Name)
	assert.Empty(t, got.ParentID)
	assert.Equal(t, 0, tree.Len(), "receiver must not change")
}

func TestInsertChild(t *testing.T) {
	tree := mustTree(t, container("C", "group"))
	b := leaf("B", "B")

	next, err := tree.InsertChild("C", b)
	require.NoError(t, err)

	got, ok := next.Find("B")
	require.True(t, ok)
	assert.Equal(t, "C", got.ParentID)
	c, _ := next.Find("C")
	assert.Equal(t, []string{"B"}, ids(c.Children))

	old, _ := tree.Find("C")
	assert.Empty(t, old.Children, "receiver must not change")
}

func TestInsertChildInvalidParent(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))

	for _, parent := range []string{"A", "missing"} {
		t.Run(parent, func(t *testing.T) {
			next, err := tree.InsertChild(parent, leaf("X", "X"))
			require.ErrorIs(t, err, ErrInvalidParent)
			assert.Same(t, tree, next)
			assert.False(t, next.Contains("X"))
		})
	}
}

func TestInsertRootRejectsDuplicateID(t *testing.T) {
	tree := mustTree(t, container("C", "C", leaf("B", "B")))

	next, err := tree.InsertRoot(leaf("B", "again"))
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Same(t, tree, next)
}

func TestInsertRootRejectsLeafWithChildren(t *testing.T) {
	bad := leaf("A", "A")
	bad.Children = []*Node{leaf("B", "B")}

	_, err := (*Tree)(nil).InsertRoot(bad)
	require.ErrorIs(t, err, ErrInvalidNode)
}

func TestInsertRootGeneratesMissingID(t *testing.T) {
	n := leaf("", "anon")
	next, err := (*Tree)(nil).InsertRoot(n)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Roots()[0].ID)
}

func TestFindPreOrder(t *testing.T) {
	tree := mustTree(t,
		container("C", "C", leaf("B", "B"), container("D", "D", leaf("E", "E"))),
		leaf("A", "A"),
	)

	var order []string
	tree.Walk(func(n *Node, _ int) bool {
		order = append(order, n.ID)
		return true
	})
	assert.Equal(t, []string{"C", "B", "D", "E", "A"}, order)

	e, ok := tree.Find("E")
	require.True(t, ok)
	assert.Equal(t, "D", e.ParentID)

	_, ok = tree.Find("nope")
	assert.False(t, ok)
}

// --- Updates ---

func TestUpdateTransformEqualIsNoop(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	a, _ := tree.Find("A")

	assert.Same(t, tree, tree.UpdateTransform("A", a.Transform))
	assert.Same(t, tree, tree.UpdateTransform("missing", Transform{TranslateX: 1}))
}

func TestUpdateTransformNested(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")))
	tr := IdentityTransform()
	tr.RotateY = 45

	next := tree.UpdateTransform("B", tr)
	require.NotSame(t, tree, next)

	b, _ := next.Find("B")
	assert.Equal(t, 45.0, b.Transform.RotateY)
	old, _ := tree.Find("B")
	assert.Equal(t, 0.0, old.Transform.RotateY)

	// The untouched sibling subtree is shared.
	assert.Same(t, tree.Roots()[0], next.Roots()[0])
}

func TestUpdateStylePartial(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	w := 200.0

	next := tree.UpdateStyle("A", StylePatch{Width: &w})
	a, _ := next.Find("A")
	assert.Equal(t, 200.0, a.Style.Width)
	assert.Equal(t, 100.0, a.Style.Height)
	assert.Equal(t, DefaultColor, a.Style.BackgroundColor)
}

func TestUpdateStyleNoop(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	w := 100.0
	assert.Same(t, tree, tree.UpdateStyle("A", StylePatch{Width: &w}))
	assert.Same(t, tree, tree.UpdateStyle("A", StylePatch{}))
}

func TestUpdateStyleClampsOpacity(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	o := 1.7
	next := tree.UpdateStyle("A", StylePatch{Opacity: &o})
	a, _ := next.Find("A")
	require.NotNil(t, a.Style.Opacity)
	assert.Equal(t, 1.0, *a.Style.Opacity)
}

func TestUpdateStyleColor(t *testing.T) {
	tests := []struct {
		color string
		want  string
	}{
		{"#ff0000", "#ff0000"},
		{"rgb(1, 2, 3)", "rgb(1, 2, 3)"},
		{"red; position: fixed", DefaultColor},
		{"red}div{color:blue", DefaultColor},
		{`red" onclick="x`, DefaultColor},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			tree := mustTree(t, leaf("A", "A"))
			next := tree.UpdateStyle("A", StylePatch{BackgroundColor: &tt.color})
			a, _ := next.Find("A")
			assert.Equal(t, tt.want, a.Style.BackgroundColor)
			if tt.want == DefaultColor {
				assert.Same(t, tree, next)
			}
		})
	}
}

func TestUpdateBackgroundAndRename(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	bg := &Background{Image: "https://example.com/a.png", Size: BackgroundContain, Position: PositionTop}

	next := tree.UpdateBackground("A", bg)
	a, _ := next.Find("A")
	require.NotNil(t, a.Background)
	assert.Equal(t, *bg, *a.Background)
	assert.NotSame(t, bg, a.Background, "background must be copied")

	assert.Same(t, next, next.UpdateBackground("A", &Background{Image: bg.Image, Size: bg.Size, Position: bg.Position}))

	cleared := next.UpdateBackground("A", nil)
	a, _ = cleared.Find("A")
	assert.Nil(t, a.Background)

	renamed := tree.Rename("A", "Alpha")
	a, _ = renamed.Find("A")
	assert.Equal(t, "Alpha", a.Name)
	assert.Same(t, renamed, renamed.Rename("A", "Alpha"))
}

// --- Clone ---

func TestCloneSubtree(t *testing.T) {
	tree := mustTree(t,
		leaf("A", "A"),
		container("C", "Group", leaf("B", "B"), container("D", "D", leaf("E", "E"))),
		leaf("Z", "Z"),
	)

	next, newID := tree.Clone("C")
	require.NotEmpty(t, newID)

	roots := next.Roots()
	require.Len(t, roots, 4)
	assert.Equal(t, "C", roots[1].ID)
	assert.Equal(t, newID, roots[2].ID, "copy sits right after the original")
	assert.Equal(t, "Z", roots[3].ID)

	clone := roots[2]
	assert.Equal(t, "Group (clone)", clone.Name)
	assert.Equal(t, "B", clone.Children[0].Name, "only the top node is renamed")

	// Every id in the copy is fresh, and ParentIDs point at the copies.
	before := map[string]bool{}
	tree.Walk(func(n *Node, _ int) bool {
		before[n.ID] = true
		return true
	})
	walkNodes([]*Node{clone}, 0, func(n *Node, _ int) bool {
		assert.False(t, before[n.ID], "id %s reused", n.ID)
		return true
	})
	assert.Equal(t, clone.ID, clone.Children[0].ParentID)
	assert.Equal(t, clone.Children[1].ID, clone.Children[1].Children[0].ParentID)

	// Same structure modulo ids and the suffix.
	assert.Len(t, clone.Children, 2)
	assert.Len(t, clone.Children[1].Children, 1)
	require.NoError(t, next.Validate())
	assert.Equal(t, tree.Len()+4, next.Len())
}

func TestCloneNestedLeaf(t *testing.T) {
	tree := mustTree(t, container("C", "C", leaf("B", "B"), leaf("X", "X")))

	next, newID := tree.Clone("B")
	c, _ := next.Find("C")
	require.Len(t, c.Children, 3)
	assert.Equal(t, []string{"B", newID, "X"}, ids(c.Children))
	assert.Equal(t, "C", c.Children[1].ParentID)
	assert.Nil(t, c.Children[1].Children)
}

func TestCloneDoesNotShareState(t *testing.T) {
	o := 0.5
	a := leaf("A", "A")
	a.Style.Opacity = &o
	a.Background = &Background{Image: "x.png"}
	tree := mustTree(t, a)

	next, newID := tree.Clone("A")
	c, _ := next.Find(newID)
	assert.NotSame(t, a.Style.Opacity, c.Style.Opacity)
	assert.NotSame(t, a.Background, c.Background)
	assert.Equal(t, *a.Background, *c.Background)
}

func TestCloneMissing(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	next, newID := tree.Clone("nope")
	assert.Same(t, tree, next)
	assert.Empty(t, newID)
}

// --- Remove ---

func TestRemoveRoot(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")))

	next := tree.Remove("C")
	assert.Equal(t, []string{"A"}, ids(next.Roots()))
	assert.False(t, next.Contains("B"), "descendants go with the container")
}

func TestRemoveNested(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B")))

	next := tree.Remove("B")
	assert.False(t, next.Contains("B"))
	c, ok := next.Find("C")
	require.True(t, ok)
	assert.NotNil(t, c.Children)
	assert.Empty(t, c.Children)
	require.NoError(t, next.Validate())

	want := mustTree(t, leaf("A", "A"), container("C", "C"))
	assert.True(t, next.Equal(want))
}

func TestRemoveMissingIsNoop(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"))
	assert.Same(t, tree, tree.Remove("nope"))
}

// --- Scenario ---

func TestScenarioContainerWithChild(t *testing.T) {
	var tree *Tree
	var err error

	tree, err = tree.InsertRoot(leaf("A", "A"))
	require.NoError(t, err)
	tree, err = tree.InsertRoot(container("C", "C"))
	require.NoError(t, err)
	tree, err = tree.InsertChild("C", leaf("B", "B"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, ids(tree.Roots()))
	c, _ := tree.Find("C")
	assert.Equal(t, []string{"B"}, ids(c.Children))
	b, _ := tree.Find("B")
	assert.Equal(t, "C", b.ParentID)
	assert.Equal(t, "B", tree.Last().ID)
}

// --- Validate / NewTree ---

func TestNewTreeRewritesParentIDs(t *testing.T) {
	b := leaf("B", "B")
	b.ParentID = "stale"
	tree := mustTree(t, container("C", "C", b))

	got, _ := tree.Find("B")
	assert.Equal(t, "C", got.ParentID)
	assert.Equal(t, "stale", b.ParentID, "input must not be mutated")
}

func TestNewTreeRejects(t *testing.T) {
	shared := leaf("S", "S")
	tests := []struct {
		name  string
		roots []*Node
		want  error
	}{
		{"duplicate id", []*Node{leaf("A", "A"), container("C", "C", leaf("A", "A2"))}, ErrDuplicateID},
		{"empty id", []*Node{leaf("", "A")}, ErrInvalidNode},
		{"nil root", []*Node{nil}, ErrInvalidNode},
		{"leaf with children", []*Node{{ID: "L", Kind: KindLeaf, Children: []*Node{leaf("X", "X")}}}, ErrInvalidNode},
		{"container without children", []*Node{{ID: "C", Kind: KindContainer}}, ErrInvalidNode},
		{"unknown kind", []*Node{{ID: "U", Kind: "sphere"}}, ErrInvalidNode},
		{"shared node", []*Node{container("C1", "C1", shared), container("C2", "C2", shared)}, ErrDuplicateID},
		{"color with extra declaration", []*Node{{ID: "L", Kind: KindLeaf, Style: Style{BackgroundColor: "red; position: fixed"}}}, ErrInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.roots)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLastDescendsIntoContainers(t *testing.T) {
	tree := mustTree(t, leaf("A", "A"), container("C", "C", leaf("B", "B"), container("D", "D")))
	assert.Equal(t, "D", tree.Last().ID)
	assert.Nil(t, (*Tree)(nil).Last())
}

func TestTreeLargeSequence(t *testing.T) {
	var tree *Tree
	for i := 0; i < 200; i++ {
		var err error
		tree, err = tree.InsertRoot(leaf(fmt.Sprintf("n%d", i), "n"))
		require.NoError(t, err)
	}
	assert.Equal(t, 200, tree.Len())
	assert.Equal(t, "n199", tree.Last().ID)
	assert.Equal(t, 199, tree.Remove("n0").Len())
}
