// Package dom holds the in-memory document tree: typed nodes with
// ordered attributes, parent/child links, mutation operations and
// serialization back to markup.
package dom

//go:generate stringer -type=NodeType
type NodeType uint8

const (
	RootNode NodeType = iota + 1
	ElementNode
	TextNode
	CommentNode
	ConditionalNode
	CDataNode
	DoctypeNode
	ProcessingInstructionNode
	EmbeddedNode
)

// Synthetic tag names for non-element variants.
const (
	TagRoot        = "~root~"
	TagText        = "~text~"
	TagComment     = "~comment~"
	TagConditional = "~conditional~"
	TagCData       = "~cdata~"
	TagDoctype     = "!DOCTYPE"
	TagEmbedded    = "%"
)

// CloserRevealed on a ConditionalNode's Closer field selects the
// revealed serialization form <![if ...]>...<![endif]> instead of the
// comment form.
const CloserRevealed = "]>"

// Node is one node of the document tree. Root and Element nodes carry
// children; the leaf variants carry their payload in Data. A node is
// in at most one parent's child list at any time; all reparenting goes
// through the mutation methods, which maintain that invariant.
type Node struct {
	Type       NodeType
	Tag        string
	Data       string
	Attributes *AttributeList

	// SelfClosing marks elements serialized without a separate end
	// tag; Closer is the literal closer rendered before '>' (" /").
	// Conditional nodes store CloserRevealed here when they came
	// from the revealed form rather than a comment.
	SelfClosing bool
	Closer      string

	Parent   *Node
	children []*Node
}

// NewNode returns a detached node of the given type with its synthetic
// tag filled in for non-element variants.
func NewNode(typ NodeType) *Node {
	n := &Node{Type: typ, Attributes: NewAttributeList()}
	switch typ {
	case RootNode:
		n.Tag = TagRoot
	case TextNode:
		n.Tag = TagText
	case CommentNode:
		n.Tag = TagComment
	case ConditionalNode:
		n.Tag = TagConditional
	case CDataNode:
		n.Tag = TagCData
	case DoctypeNode:
		n.Tag = TagDoctype
	case EmbeddedNode:
		n.Tag = TagEmbedded
	}
	return n
}

// NewElement returns a detached element with the given tag name.
func NewElement(tag string) *Node {
	n := NewNode(ElementNode)
	n.Tag = tag
	return n
}

// NewText returns a detached text node.
func NewText(data string) *Node {
	n := NewNode(TextNode)
	n.Data = data
	return n
}

// NewComment returns a detached comment node.
func NewComment(data string) *Node {
	n := NewNode(CommentNode)
	n.Data = data
	return n
}

// IsElement reports whether the node is an element (or the synthetic
// root, which takes part in hierarchy but not in matching).
func (n *Node) IsElement() bool { return n.Type == ElementNode }

// Children returns the node's child list. The slice is shared with the
// node; callers must not reorder it directly.
func (n *Node) Children() []*Node { return n.children }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child, counting from the end for negative i.
// Returns nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Root walks parent links to the top of the tree.
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Namespace returns the part of the tag name before ':', or "" when
// the tag carries no namespace prefix.
func (n *Node) Namespace() string {
	for i := 0; i < len(n.Tag); i++ {
		if n.Tag[i] == ':' {
			return n.Tag[:i]
		}
	}
	return ""
}

// LocalName returns the tag name with any namespace prefix removed.
func (n *Node) LocalName() string {
	for i := 0; i < len(n.Tag); i++ {
		if n.Tag[i] == ':' {
			return n.Tag[i+1:]
		}
	}
	return n.Tag
}

// Clone returns a detached copy of the node. With deep set the whole
// subtree is copied; otherwise only the node itself.
func (n *Node) Clone(deep bool) *Node {
	c := &Node{
		Type:        n.Type,
		Tag:         n.Tag,
		Data:        n.Data,
		Attributes:  n.Attributes.clone(),
		SelfClosing: n.SelfClosing,
		Closer:      n.Closer,
	}
	if deep {
		c.children = make([]*Node, 0, len(n.children))
		for _, child := range n.children {
			cc := child.Clone(true)
			cc.Parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// Walk visits the subtree rooted at n in document order, n first. The
// visitor returns false to prune descent below the visited node.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}
