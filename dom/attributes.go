package dom

import (
	"strings"

	"github.com/pkg/errors"
)

// CompareMode selects how attribute names are compared on lookup.
type CompareMode uint8

const (
	// CompareTotal matches the full attribute name.
	CompareTotal CompareMode = iota
	// CompareNamespace matches the prefix before ':'.
	CompareNamespace
	// CompareName matches the local part after ':'.
	CompareName
)

// ErrBadCompareMode reports a CompareMode value outside the defined
// enum. It indicates a caller bug, so lookups panic with it rather
// than returning a miss.
var ErrBadCompareMode = errors.New("dom: invalid attribute compare mode")

// Attribute is a single name/value pair. Name keeps the case it was
// written with; lookups are case-insensitive.
type Attribute struct {
	Name  string
	Value string
}

// AttributeList is an insertion-ordered attribute map with
// case-insensitive, namespace-aware lookup.
type AttributeList struct {
	attrs []Attribute
}

// NewAttributeList returns an empty attribute list.
func NewAttributeList() *AttributeList {
	return &AttributeList{}
}

// Len returns the number of attributes.
func (a *AttributeList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.attrs)
}

// All returns the attributes in insertion order. The slice is shared;
// callers must not mutate it.
func (a *AttributeList) All() []Attribute {
	if a == nil {
		return nil
	}
	return a.attrs
}

func splitName(name string) (ns, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func nameMatches(attr, name string, mode CompareMode) bool {
	switch mode {
	case CompareTotal:
		return strings.EqualFold(attr, name)
	case CompareNamespace:
		ns, _ := splitName(attr)
		return strings.EqualFold(ns, name)
	case CompareName:
		_, local := splitName(attr)
		return strings.EqualFold(local, name)
	default:
		panic(ErrBadCompareMode)
	}
}

// index returns the position of the first attribute matching name
// under mode, or -1. Safe on a nil list.
func (a *AttributeList) index(name string, mode CompareMode) int {
	if a == nil {
		return -1
	}
	for i := range a.attrs {
		if nameMatches(a.attrs[i].Name, name, mode) {
			return i
		}
	}
	return -1
}

// Get returns the value of the first attribute matching name under
// mode, and whether one exists.
func (a *AttributeList) Get(name string, mode CompareMode) (string, bool) {
	if i := a.index(name, mode); i >= 0 {
		return a.attrs[i].Value, true
	}
	return "", false
}

// GetTotal is Get with CompareTotal, the common case.
func (a *AttributeList) GetTotal(name string) (string, bool) {
	return a.Get(name, CompareTotal)
}

// Has reports whether an attribute matching name under mode exists.
func (a *AttributeList) Has(name string, mode CompareMode) bool {
	return a.index(name, mode) >= 0
}

// Set stores value under name. An existing attribute with the same
// name (case-insensitive, full-name comparison) is updated in place,
// keeping its position and original spelling; otherwise the attribute
// is appended.
func (a *AttributeList) Set(name, value string) {
	if i := a.index(name, CompareTotal); i >= 0 {
		a.attrs[i].Value = value
		return
	}
	a.attrs = append(a.attrs, Attribute{Name: name, Value: value})
}

// Delete removes the first attribute matching name under mode and
// reports whether one was removed. A deleted attribute is absent, not
// empty.
func (a *AttributeList) Delete(name string, mode CompareMode) bool {
	i := a.index(name, mode)
	if i < 0 {
		return false
	}
	a.attrs = append(a.attrs[:i], a.attrs[i+1:]...)
	return true
}

func (a *AttributeList) clone() *AttributeList {
	if a == nil {
		return NewAttributeList()
	}
	c := &AttributeList{attrs: make([]Attribute, len(a.attrs))}
	copy(c.attrs, a.attrs)
	return c
}

// Attr is a convenience accessor on Node: the attribute's value under
// full-name comparison, or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.Attributes.GetTotal(name)
	return v
}

// SetAttr sets an attribute on the node. Setting is case-preserving
// on first write.
func (n *Node) SetAttr(name, value string) {
	if n.Attributes == nil {
		n.Attributes = NewAttributeList()
	}
	n.Attributes.Set(name, value)
}

// DeleteAttr removes an attribute by full name.
func (n *Node) DeleteAttr(name string) bool {
	return n.Attributes.Delete(name, CompareTotal)
}
