package dom

import "github.com/pkg/errors"

// Contract-violation sentinels. These indicate caller bugs, not bad
// input, so mutation methods return them loudly instead of guessing.
var (
	ErrCyclicReparent = errors.New("dom: node cannot be made a descendant of itself")
	ErrNilNode        = errors.New("dom: nil node")
	ErrLeafChildren   = errors.New("dom: node type cannot carry children")
)

// canParent reports whether the node type may carry children.
func (n *Node) canParent() bool {
	switch n.Type {
	case RootNode, ElementNode, ConditionalNode:
		return true
	}
	return false
}

// isAncestorOf reports whether n is on other's parent chain (or is
// other itself).
func (n *Node) isAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// childIndex returns the position of child in n's child list, or -1.
func (n *Node) childIndex(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// clampIndex resolves an insertion index against the current child
// count: negative counts from the end, out-of-range clamps.
func (n *Node) clampIndex(at int) int {
	if at < 0 {
		at += len(n.children)
	}
	if at < 0 {
		at = 0
	}
	if at > len(n.children) {
		at = len(n.children)
	}
	return at
}

// AddChild inserts child into n's child list at index at (negative
// counts from the end; out of range appends/prepends). A child already
// parented elsewhere is detached first. Returns ErrCyclicReparent if
// child is n or an ancestor of n.
func (n *Node) AddChild(child *Node, at int) error {
	if child == nil {
		return ErrNilNode
	}
	if !n.canParent() {
		return errors.Wrapf(ErrLeafChildren, "adding %q under %q", child.Tag, n.Tag)
	}
	if child.isAncestorOf(n) {
		return errors.Wrapf(ErrCyclicReparent, "adding %q under %q", child.Tag, n.Tag)
	}
	if child.Parent != nil {
		child.Parent.removeChild(child)
	}
	at = n.clampIndex(at)
	n.children = append(n.children, nil)
	copy(n.children[at+1:], n.children[at:])
	n.children[at] = child
	child.Parent = n
	return nil
}

// AppendChild inserts child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	return n.AddChild(child, len(n.children))
}

// NewChild creates an element with the given tag and appends it.
func (n *Node) NewChild(tag string) (*Node, error) {
	c := NewElement(tag)
	if err := n.AppendChild(c); err != nil {
		return nil, err
	}
	return c, nil
}

// removeChild unlinks child from n's child list without touching the
// child's subtree.
func (n *Node) removeChild(child *Node) {
	i := n.childIndex(child)
	if i < 0 {
		return
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.Parent = nil
}

// Delete removes n and its entire subtree from its parent. The subtree
// stays intact below n; once no references remain it is collected.
func (n *Node) Delete() {
	if n.Parent != nil {
		n.Parent.removeChild(n)
	}
}

// Detach removes just n from its parent. With promoteChildren set, n's
// children are spliced into n's former position in the former parent;
// otherwise they stay attached below the now-detached n.
func (n *Node) Detach(promoteChildren bool) {
	p := n.Parent
	if p == nil {
		return
	}
	i := p.childIndex(n)
	p.removeChild(n)
	if !promoteChildren || len(n.children) == 0 {
		return
	}
	moved := n.children
	n.children = nil
	p.children = append(p.children[:i], append(append([]*Node{}, moved...), p.children[i:]...)...)
	for _, c := range moved {
		c.Parent = p
	}
}

// Move reparents n under dst at the given index.
func (n *Node) Move(dst *Node, at int) error {
	return dst.AddChild(n, at)
}

// ChangeParent appends n to dst's child list, detaching it from its
// current parent first.
func (n *Node) ChangeParent(dst *Node) error {
	return dst.AddChild(n, dst.NumChildren())
}

// MoveChildren reparents all of n's children under dst, inserting the
// run contiguously starting at index at and preserving order.
func (n *Node) MoveChildren(dst *Node, at int) error {
	if !dst.canParent() {
		return ErrLeafChildren
	}
	for _, c := range n.children {
		if c.isAncestorOf(dst) {
			return errors.Wrapf(ErrCyclicReparent, "moving children of %q under %q", n.Tag, dst.Tag)
		}
	}
	moved := n.children
	n.children = nil
	at = dst.clampIndex(at)
	dst.children = append(dst.children[:at], append(append([]*Node{}, moved...), dst.children[at:]...)...)
	for _, c := range moved {
		c.Parent = dst
	}
	return nil
}
