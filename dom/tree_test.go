package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildList appends fresh elements with the given tags under parent and
// returns them.
func buildList(t *testing.T, parent *Node, tags ...string) []*Node {
	t.Helper()
	out := make([]*Node, 0, len(tags))
	for _, tag := range tags {
		c, err := parent.NewChild(tag)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func tagsOf(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Tag)
	}
	return out
}

func TestAddChildIndexes(t *testing.T) {
	tests := []struct {
		name string
		at   int
		want []string
	}{
		{"append", 3, []string{"a", "b", "c", "x"}},
		{"prepend", 0, []string{"x", "a", "b", "c"}},
		{"middle", 1, []string{"a", "x", "b", "c"}},
		{"negative", -1, []string{"a", "b", "x", "c"}},
		{"past end clamps", 99, []string{"a", "b", "c", "x"}},
		{"before start clamps", -99, []string{"x", "a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := NewNode(RootNode)
			buildList(t, parent, "a", "b", "c")
			x := NewElement("x")
			require.NoError(t, parent.AddChild(x, tt.at))
			assert.Equal(t, tt.want, tagsOf(parent.Children()))
			assert.Same(t, parent, x.Parent)
		})
	}
}

func TestAddChildDetachesFirst(t *testing.T) {
	p1 := NewNode(RootNode)
	p2 := NewNode(RootNode)
	kids := buildList(t, p1, "a", "b")

	require.NoError(t, p2.AppendChild(kids[0]))
	assert.Equal(t, []string{"b"}, tagsOf(p1.Children()))
	assert.Equal(t, []string{"a"}, tagsOf(p2.Children()))
	assert.Same(t, p2, kids[0].Parent)
}

func TestCyclicReparentRejected(t *testing.T) {
	root := NewNode(RootNode)
	outer := buildList(t, root, "outer")[0]
	inner := buildList(t, outer, "inner")[0]

	err := inner.AddChild(outer, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicReparent)

	err = inner.AddChild(inner, 0)
	assert.ErrorIs(t, err, ErrCyclicReparent)

	// The tree is untouched after a rejected move.
	assert.Same(t, root, outer.Parent)
	assert.Same(t, outer, inner.Parent)
}

func TestLeafNodesRejectChildren(t *testing.T) {
	text := NewText("hi")
	err := text.AppendChild(NewElement("b"))
	assert.ErrorIs(t, err, ErrLeafChildren)

	comment := NewComment("c")
	err = comment.AppendChild(NewText("x"))
	assert.ErrorIs(t, err, ErrLeafChildren)

	err = NewElement("div").AppendChild(nil)
	assert.ErrorIs(t, err, ErrNilNode)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	root := NewNode(RootNode)
	kids := buildList(t, root, "a", "b", "c")
	buildList(t, kids[1], "inner")

	kids[1].Delete()
	assert.Equal(t, []string{"a", "c"}, tagsOf(root.Children()))
	assert.Nil(t, kids[1].Parent)
	// The subtree stays intact below the removed node.
	assert.Equal(t, 1, kids[1].NumChildren())
}

func TestDetachPromotesChildren(t *testing.T) {
	root := NewNode(RootNode)
	kids := buildList(t, root, "a", "mid", "d")
	inner := buildList(t, kids[1], "b", "c")

	kids[1].Detach(true)
	assert.Equal(t, []string{"a", "b", "c", "d"}, tagsOf(root.Children()))
	assert.Same(t, root, inner[0].Parent)
	assert.Same(t, root, inner[1].Parent)
	assert.Nil(t, kids[1].Parent)
	assert.Equal(t, 0, kids[1].NumChildren())
}

func TestDetachWithoutPromotion(t *testing.T) {
	root := NewNode(RootNode)
	kids := buildList(t, root, "a", "mid")
	buildList(t, kids[1], "b")

	kids[1].Detach(false)
	assert.Equal(t, []string{"a"}, tagsOf(root.Children()))
	assert.Equal(t, 1, kids[1].NumChildren(), "children stay below the detached node")
}

func TestMoveChildren(t *testing.T) {
	src := NewNode(RootNode)
	dst := NewNode(RootNode)
	buildList(t, src, "a", "b")
	buildList(t, dst, "x", "y")

	require.NoError(t, src.MoveChildren(dst, 1))
	assert.Equal(t, []string{"x", "a", "b", "y"}, tagsOf(dst.Children()))
	assert.Equal(t, 0, src.NumChildren())
	for _, c := range dst.Children() {
		assert.Same(t, dst, c.Parent)
	}
}

func TestMoveChildrenCyclic(t *testing.T) {
	root := NewNode(RootNode)
	outer := buildList(t, root, "outer")[0]
	inner := buildList(t, outer, "inner")[0]

	err := root.MoveChildren(inner, 0)
	assert.ErrorIs(t, err, ErrCyclicReparent)
}

func TestChangeParent(t *testing.T) {
	root := NewNode(RootNode)
	kids := buildList(t, root, "a", "b")

	require.NoError(t, kids[0].ChangeParent(kids[1]))
	assert.Equal(t, []string{"b"}, tagsOf(root.Children()))
	assert.Equal(t, []string{"a"}, tagsOf(kids[1].Children()))
}

func TestChildNegativeIndex(t *testing.T) {
	root := NewNode(RootNode)
	kids := buildList(t, root, "a", "b", "c")

	assert.Same(t, kids[2], root.Child(-1))
	assert.Same(t, kids[0], root.Child(0))
	assert.Nil(t, root.Child(3))
	assert.Nil(t, root.Child(-4))
}

func TestIndexHelpers(t *testing.T) {
	root := NewNode(RootNode)
	require.NoError(t, root.AppendChild(NewText("lead")))
	a, err := root.NewChild("p")
	require.NoError(t, err)
	require.NoError(t, root.AppendChild(NewText("mid")))
	b, err := root.NewChild("p")
	require.NoError(t, err)
	c, err := root.NewChild("div")
	require.NoError(t, err)

	assert.Equal(t, 1, a.IndexInParent(false), "text counted")
	assert.Equal(t, 0, a.IndexInParent(true), "elements only")
	assert.Equal(t, 1, b.IndexInParent(true))
	assert.Equal(t, 2, c.IndexInParent(true))
	assert.Equal(t, -1, NewElement("x").IndexInParent(true), "detached")

	assert.Equal(t, 0, a.TypeIndex())
	assert.Equal(t, 1, b.TypeIndex())
	assert.Equal(t, 2, a.TypeCount())
	assert.Equal(t, 1, c.TypeCount())

	assert.Same(t, b, a.NextSibling(true), "text is transparent")
	assert.Same(t, a, b.PrevSibling(true))
	assert.Nil(t, c.NextSibling(true))
	assert.Equal(t, TextNode, a.NextSibling(false).Type)

	assert.Equal(t, []string{"p", "p", "div"}, tagsOf(root.ElementChildren()))
}

func TestCloneDeep(t *testing.T) {
	n := NewElement("div")
	n.SetAttr("id", "x")
	child, err := n.NewChild("p")
	require.NoError(t, err)
	require.NoError(t, child.AppendChild(NewText("hi")))

	c := n.Clone(true)
	assert.Nil(t, c.Parent, "clone is detached")
	assert.Equal(t, n.String(), c.String())

	// Mutating the clone leaves the original alone.
	c.SetAttr("id", "y")
	c.Child(0).Child(0).Data = "bye"
	assert.Equal(t, "x", n.Attr("id"))
	assert.Equal(t, "hi", n.Child(0).Child(0).Data)
}

func TestCloneShallow(t *testing.T) {
	n := NewElement("div")
	_, err := n.NewChild("p")
	require.NoError(t, err)

	c := n.Clone(false)
	assert.Equal(t, 0, c.NumChildren())
	assert.Equal(t, "div", c.Tag)
}

func TestWalkPrunes(t *testing.T) {
	root := NewNode(RootNode)
	a := buildList(t, root, "a")[0]
	buildList(t, a, "skipme")
	buildList(t, root, "b")

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Tag)
		return n.Tag != "a"
	})
	assert.Equal(t, []string{TagRoot, "a", "b"}, visited)
}

func TestNamespaceSplit(t *testing.T) {
	n := NewElement("svg:circle")
	assert.Equal(t, "svg", n.Namespace())
	assert.Equal(t, "circle", n.LocalName())

	plain := NewElement("div")
	assert.Equal(t, "", plain.Namespace())
	assert.Equal(t, "div", plain.LocalName())
}
