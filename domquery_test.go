package domquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domquery/domquery/selector"
)

// Well-formed fragments must survive a parse/serialize round trip
// byte for byte.
func TestRoundTrip(t *testing.T) {
	fragments := []string{
		`plain text`,
		`<div id="a"><p>one</p><p>two</p></div>`,
		`<ul><li>a</li><li>b</li></ul>`,
		`<br />`,
		`<a href="/x">t</a>`,
		`<!-- note -->`,
		`<!DOCTYPE html><html><body></body></html>`,
		`<![CDATA[x < y]]>`,
		`<?php echo 1; ?>`,
		`<% x %>`,
		`<!--[if IE]><p>x</p><![endif]-->`,
		`<![if lt IE 9]><br /><![endif]>`,
		`<script>a < b</script>`,
		`<script>a</scriptfoo>b</script>`,
		`<table><tr><td>1</td><td>2</td></tr></table>`,
	}

	for _, f := range fragments {
		t.Run(f, func(t *testing.T) {
			doc, err := ParseString(f)
			require.NoError(t, err)
			assert.Empty(t, doc.Errors)
			assert.Equal(t, f, doc.String())
		})
	}
}

// Malformed input normalizes on the first parse; reparsing the
// serialized form must then be a fixed point.
func TestSerializationIdempotent(t *testing.T) {
	inputs := []string{
		`<ul><li>a<li>b</ul>`,
		`<p>one<div>two</div>`,
		`<b><i>x</b>`,
		`<div><p>unclosed`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first, err := ParseString(in)
			require.NoError(t, err)
			normalized := first.String()

			second, err := ParseString(normalized)
			require.NoError(t, err)
			assert.Empty(t, second.Errors, "normalized output parses cleanly")
			assert.Equal(t, normalized, second.String())
		})
	}
}

func TestQueryAllDocumentOrder(t *testing.T) {
	doc, err := ParseString(`<div><p id="1">a</p><span><p id="2">b</p></span><p id="3">c</p></div>`)
	require.NoError(t, err)

	matches, err := QueryAll(doc.Root, "p")
	require.NoError(t, err)

	var got []string
	for _, m := range matches {
		got = append(got, m.Attr("id"))
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestQueryFirstAndAt(t *testing.T) {
	doc, err := ParseString(`<ul><li id="x"></li><li id="y"></li><li id="z"></li></ul>`)
	require.NoError(t, err)

	first, err := Query(doc.Root, "li")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "x", first.Attr("id"))

	last, err := QueryAt(doc.Root, "li", -1)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "z", last.Attr("id"))

	mid, err := QueryAt(doc.Root, "li", 1)
	require.NoError(t, err)
	assert.Equal(t, "y", mid.Attr("id"))

	out, err := QueryAt(doc.Root, "li", 5)
	require.NoError(t, err)
	assert.Nil(t, out, "out of range is nil, not an error")

	none, err := Query(doc.Root, "table")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestQueryBadSelector(t *testing.T) {
	doc, err := ParseString(`<p>x</p>`)
	require.NoError(t, err)

	_, err = QueryAll(doc.Root, "p[")
	assert.Error(t, err)

	_, err = Query(doc.Root, "p:nosuch")
	assert.Error(t, err)
}

func TestQueryWithOptions(t *testing.T) {
	doc, err := ParseString(`<div id="outer"><div id="inner"><p>x</p></div></div>`)
	require.NoError(t, err)

	all, err := QueryAll(doc.Root, "div")
	require.NoError(t, err)
	require.Len(t, all, 2, "default searches the whole subtree")

	top, err := QueryAll(doc.Root, "div", selector.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, top, 1, "non-recursive stops at children")
	assert.Equal(t, "outer", top[0].Attr("id"))

	outer := top[0]
	self, err := QueryAll(outer, "div", selector.QueryOptions{Recursive: true, IncludeSelf: true})
	require.NoError(t, err)
	require.Len(t, self, 2)
	assert.Equal(t, "outer", self[0].Attr("id"))

	first, err := Query(outer, "div", selector.QueryOptions{Recursive: true, IncludeSelf: true})
	require.NoError(t, err)
	assert.Equal(t, "outer", first.Attr("id"))
}

func TestQueryAfterMutation(t *testing.T) {
	doc, err := ParseString(`<div><p id="keep">a</p><p id="drop">b</p></div>`)
	require.NoError(t, err)

	drop, err := Query(doc.Root, "#drop")
	require.NoError(t, err)
	require.NotNil(t, drop)
	drop.Delete()

	matches, err := QueryAll(doc.Root, "p")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "keep", matches[0].Attr("id"))
	assert.Equal(t, `<div><p id="keep">a</p></div>`, doc.String())
}
