package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindGT Kind = KindCustom + iota
	kindGTE
	kindString
	kindEquals
)

// testSpec is a small classification map exercising fixed kinds,
// multi-byte handlers and quoted strings.
func testSpec() Spec {
	return Spec{
		Identifier: func(c byte) bool {
			return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
		},
		Whitespace: func(c byte) bool {
			return c == ' ' || c == '\t' || c == '\r' || c == '\n'
		},
		Special: map[byte]Class{
			'=': {Kind: kindEquals},
			'>': {Handler: func(t *Tokenizer) Kind {
				t.Skip(1)
				if t.Peek() == '=' {
					t.Skip(1)
					return kindGTE
				}
				return kindGT
			}},
			'"': {Handler: func(t *Tokenizer) Kind {
				t.Skip(1)
				for !t.EOF() && t.Peek() != '"' {
					t.Skip(1)
				}
				if !t.EOF() {
					t.Skip(1)
				}
				return kindString
			}},
		},
	}
}

func TestNextKinds(t *testing.T) {
	tests := []struct {
		in    string
		kinds []Kind
		texts []string
	}{
		{"abc", []Kind{KindIdentifier}, []string{"abc"}},
		{"a b", []Kind{KindIdentifier, KindWhitespace, KindIdentifier}, []string{"a", " ", "b"}},
		{"a=b", []Kind{KindIdentifier, kindEquals, KindIdentifier}, []string{"a", "=", "b"}},
		{"a>b", []Kind{KindIdentifier, kindGT, KindIdentifier}, []string{"a", ">", "b"}},
		{"a>=b", []Kind{KindIdentifier, kindGTE, KindIdentifier}, []string{"a", ">=", "b"}},
		{`"x y"z`, []Kind{kindString, KindIdentifier}, []string{`"x y"`, "z"}},
		{"?", []Kind{KindUnknown}, []string{"?"}},
		{"", []Kind{KindNull}, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok := New(testSpec())
			tok.SetDocument(tt.in)
			for i, want := range tt.kinds {
				kind := tok.Next()
				assert.Equal(t, want, kind, "token %d kind", i)
				assert.Equal(t, tt.texts[i], tok.Text(), "token %d text", i)
			}
			assert.Equal(t, KindNull, tok.Next(), "trailing token")
		})
	}
}

func TestLineColTracking(t *testing.T) {
	tests := []struct {
		name string
		in   string
		// line and col of the token starting with 'x'
		line, col int
	}{
		{"same line", "ab x", 1, 4},
		{"lf", "ab\nx", 2, 1},
		{"crlf", "ab\r\nx", 2, 1},
		{"cr", "ab\rx", 2, 1},
		{"two lines", "a\nb\n  x", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(testSpec())
			tok.SetDocument(tt.in)
			for {
				kind := tok.NextSkipWhitespace()
				require.NotEqual(t, KindNull, kind, "ran out of tokens")
				if tok.Text() == "x" {
					break
				}
			}
			assert.Equal(t, tt.line, tok.Token().Line)
			assert.Equal(t, tt.col, tok.Token().Col)
		})
	}
}

func TestLineColTrackedInLiteralScan(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("one\ntwo\nthree END after")
	kind := tok.NextUntilLiteral("END", true)
	require.Equal(t, KindIdentifier, kind)
	assert.Equal(t, 3, tok.Line())
	assert.Equal(t, "one\ntwo\nthree ", tok.TokenText(0, -3))
}

func TestNextUntil(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("hello>world")

	kind := tok.NextUntil(">", false)
	require.Equal(t, KindIdentifier, kind)
	assert.Equal(t, "hello", tok.Text())
	assert.Equal(t, byte('>'), tok.Peek(), "delimiter left unread")

	kind = tok.NextUntil(">", true)
	require.Equal(t, kindGT, kind)
	assert.Equal(t, ">", tok.Text())
}

func TestNextUntilEOF(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("no delimiter here")
	kind := tok.NextUntil(">", false)
	assert.Equal(t, KindNull, kind)
	assert.Equal(t, "no delimiter here", tok.Text())
	assert.True(t, tok.EOF())
}

func TestNextUntilLiteralNotFound(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("abc")
	kind := tok.NextUntilLiteral("-->", true)
	assert.Equal(t, KindNull, kind)
	assert.Equal(t, "abc", tok.Text())
}

func TestNextUntilLiteralFold(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("body</SCRIPT>")
	kind := tok.NextUntilLiteralFold("</script", false)
	require.Equal(t, KindIdentifier, kind)
	assert.Equal(t, "body", tok.Text())
	assert.True(t, tok.HasPrefixFold("</script"))
}

func TestTokenTextClamping(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("ab")
	tok.Next()
	assert.Equal(t, "ab", tok.TokenText(-5, 5))
	assert.Equal(t, "", tok.TokenText(2, 0))
}

func TestSetDocumentResets(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("a\nb")
	for tok.Next() != KindNull {
	}
	tok.SetDocument("c")
	assert.Equal(t, 1, tok.Line())
	assert.Equal(t, 1, tok.Col())
	assert.Equal(t, KindIdentifier, tok.Next())
	assert.Equal(t, "c", tok.Text())
}

func TestHasPrefix(t *testing.T) {
	tok := New(testSpec())
	tok.SetDocument("<!-- c -->")
	assert.True(t, tok.HasPrefix("<!--"))
	assert.False(t, tok.HasPrefix("<!["))
	assert.True(t, tok.HasPrefixFold("<!-- C"))
}
