package dom

import (
	"html"
	"strings"
)

// RenderOptions controls serialization. The zero value renders full
// markup with attributes, to unlimited depth.
type RenderOptions struct {
	// OmitAttributes drops attribute lists from rendered tags.
	OmitAttributes bool
	// Depth bounds recursion into children; 0 means unlimited.
	Depth int
	// ContentOnly renders only text content, no tags.
	ContentOnly bool
}

// String renders the node and its subtree back to markup.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b, RenderOptions{}, 0)
	return b.String()
}

// Render serializes the node per opts into b.
func (n *Node) Render(b *strings.Builder, opts RenderOptions) {
	n.render(b, opts, 0)
}

func (n *Node) render(b *strings.Builder, opts RenderOptions, level int) {
	if opts.Depth > 0 && level > opts.Depth {
		return
	}
	if opts.ContentOnly {
		if n.Type == TextNode {
			b.WriteString(n.Data)
		}
		for _, c := range n.children {
			c.render(b, opts, level+1)
		}
		return
	}

	switch n.Type {
	case RootNode:
		for _, c := range n.children {
			c.render(b, opts, level+1)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		if !opts.OmitAttributes {
			renderAttributes(b, n.Attributes)
		}
		if n.SelfClosing {
			b.WriteString(n.closer())
			b.WriteByte('>')
			return
		}
		b.WriteByte('>')
		for _, c := range n.children {
			c.render(b, opts, level+1)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	case TextNode:
		b.WriteString(n.Data)
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.Data)
		b.WriteString("-->")
	case ConditionalNode:
		open, end := "<!--[if ", "<![endif]-->"
		if n.Closer == CloserRevealed {
			open, end = "<![if ", "<![endif]>"
		}
		b.WriteString(open)
		b.WriteString(n.Attr("condition"))
		b.WriteString("]>")
		for _, c := range n.children {
			c.render(b, opts, level+1)
		}
		b.WriteString(end)
	case CDataNode:
		b.WriteString("<![CDATA[")
		b.WriteString(n.Data)
		b.WriteString("]]>")
	case DoctypeNode:
		b.WriteString("<!DOCTYPE ")
		b.WriteString(n.Data)
		b.WriteByte('>')
	case ProcessingInstructionNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		b.WriteString(n.Data)
		b.WriteString("?>")
	case EmbeddedNode:
		b.WriteString("<%")
		b.WriteString(n.Data)
		b.WriteString("%>")
	}
}

func (n *Node) closer() string {
	if n.Closer != "" {
		return n.Closer
	}
	return " /"
}

func renderAttributes(b *strings.Builder, attrs *AttributeList) {
	for _, a := range attrs.All() {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(a.Value, `"`, "&quot;"))
		b.WriteByte('"')
	}
}

// Text returns the node's entity-decoded plain-text content: every
// text node in the subtree concatenated and unescaped.
func (n *Node) Text() string {
	var b strings.Builder
	n.render(&b, RenderOptions{ContentOnly: true}, 0)
	return html.UnescapeString(b.String())
}

// TextToDepth is Text bounded to the given recursion depth below n;
// depth 0 decodes only n's own data.
func (n *Node) TextToDepth(depth int) string {
	if depth <= 0 {
		if n.Type == TextNode {
			return html.UnescapeString(n.Data)
		}
		return ""
	}
	var b strings.Builder
	n.render(&b, RenderOptions{ContentOnly: true, Depth: depth}, 0)
	return html.UnescapeString(b.String())
}
