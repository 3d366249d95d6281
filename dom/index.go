package dom

import "strings"

// IndexInParent returns the node's position in its parent's child
// list, counting either all children or elements only. Detached nodes
// and nodes skipped by elementsOnly counting return -1.
func (n *Node) IndexInParent(elementsOnly bool) int {
	if n.Parent == nil {
		return -1
	}
	idx := 0
	for _, c := range n.Parent.children {
		if elementsOnly && c.Type != ElementNode {
			continue
		}
		if c == n {
			return idx
		}
		idx++
	}
	return -1
}

// TypeIndex returns the node's position among siblings with the same
// tag name (case-insensitive), or -1 when detached.
func (n *Node) TypeIndex() int {
	if n.Parent == nil {
		return -1
	}
	idx := 0
	for _, c := range n.Parent.children {
		if !strings.EqualFold(c.Tag, n.Tag) {
			continue
		}
		if c == n {
			return idx
		}
		idx++
	}
	return -1
}

// TypeCount returns how many siblings (n included) share n's tag name.
// A detached node counts as 1.
func (n *Node) TypeCount() int {
	if n.Parent == nil {
		return 1
	}
	count := 0
	for _, c := range n.Parent.children {
		if strings.EqualFold(c.Tag, n.Tag) {
			count++
		}
	}
	return count
}

// NextSibling returns the sibling immediately after n, or with
// elementsOnly set, the next element sibling (text and comment nodes
// are transparent). Returns nil at the end of the child list.
func (n *Node) NextSibling(elementsOnly bool) *Node {
	return n.sibling(1, elementsOnly)
}

// PrevSibling is NextSibling in the other direction.
func (n *Node) PrevSibling(elementsOnly bool) *Node {
	return n.sibling(-1, elementsOnly)
}

func (n *Node) sibling(dir int, elementsOnly bool) *Node {
	if n.Parent == nil {
		return nil
	}
	i := n.Parent.childIndex(n)
	if i < 0 {
		return nil
	}
	for i += dir; i >= 0 && i < len(n.Parent.children); i += dir {
		s := n.Parent.children[i]
		if !elementsOnly || s.Type == ElementNode {
			return s
		}
	}
	return nil
}

// ElementChildren returns only the element nodes of the child list.
func (n *Node) ElementChildren() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}
