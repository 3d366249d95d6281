// Package domquery parses arbitrary, possibly malformed, markup into a
// mutable tree and answers CSS-selector-like queries against it. It is
// a thin facade over the parser, dom and selector packages:
//
//	doc, err := domquery.ParseString(`<div><p>a</p><p>b</p></div>`)
//	if err != nil { ... }
//	nodes, err := domquery.QueryAll(doc.Root, "div > p")
//
// Malformed markup never fails the parse; problems are reported on
// doc.Errors while the tree reflects a best-effort structure.
// Malformed selectors, by contrast, fail the query with an error.
package domquery

import (
	"io"

	"github.com/domquery/domquery/dom"
	"github.com/domquery/domquery/parser"
	"github.com/domquery/domquery/selector"
)

// Parse reads markup from r and builds a document. See parser.Parse.
func Parse(r io.Reader, opts ...parser.Options) (*dom.Document, error) {
	return parser.Parse(r, opts...)
}

// ParseString parses markup text into a document.
func ParseString(text string, opts ...parser.Options) (*dom.Document, error) {
	return parser.ParseString(text, opts...)
}

// QueryAll returns every node under n matching sel, in document order.
// The whole subtree is searched by default; pass a
// selector.QueryOptions to restrict the first step to n's children,
// include n itself, or bound the descent depth.
func QueryAll(n *dom.Node, sel string, opts ...selector.QueryOptions) ([]*dom.Node, error) {
	s, err := selector.Compile(sel)
	if err != nil {
		return nil, err
	}
	o := selector.QueryOptions{Recursive: true}
	if len(opts) > 0 {
		o = opts[0]
	}
	return s.MatchAll(n, o)
}

// Query returns the first node under n matching sel, or nil when
// nothing matches.
func Query(n *dom.Node, sel string, opts ...selector.QueryOptions) (*dom.Node, error) {
	return QueryAt(n, sel, 0, opts...)
}

// QueryAt returns the at-th match of sel under n, counting from the
// end for negative at. Returns nil when the position is out of range.
func QueryAt(n *dom.Node, sel string, at int, opts ...selector.QueryOptions) (*dom.Node, error) {
	matches, err := QueryAll(n, sel, opts...)
	if err != nil {
		return nil, err
	}
	if at < 0 {
		at += len(matches)
	}
	if at < 0 || at >= len(matches) {
		return nil, nil
	}
	return matches[at], nil
}
