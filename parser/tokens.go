package parser

import "github.com/domquery/domquery/tokenizer"

// Token kinds specific to markup scanning, registered on top of the
// tokenizer's base kinds.
const (
	kindString tokenizer.Kind = tokenizer.KindCustom + iota
	kindTagOpen
	kindTagClose
	kindSlash
	kindEquals
)

func isMarkupWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

// Identifier characters are everything that is neither whitespace nor
// a registered special, which keeps the scanner tolerant of the junk
// real-world tag soup puts in names and bare attribute values.
func isMarkupIdentifier(c byte) bool {
	if isMarkupWhitespace(c) {
		return false
	}
	switch c {
	case '<', '>', '/', '=', '"', '\'':
		return false
	}
	return true
}

// quotedString returns a handler that consumes a string delimited by
// q, including both quotes. An unterminated string runs to end of
// input.
func quotedString(q byte) tokenizer.Handler {
	return func(t *tokenizer.Tokenizer) tokenizer.Kind {
		t.Skip(1)
		for !t.EOF() && t.Peek() != q {
			t.Skip(1)
		}
		if !t.EOF() {
			t.Skip(1)
		}
		return kindString
	}
}

func markupSpec() tokenizer.Spec {
	return tokenizer.Spec{
		Identifier: isMarkupIdentifier,
		Whitespace: isMarkupWhitespace,
		Special: map[byte]tokenizer.Class{
			'<':  {Kind: kindTagOpen},
			'>':  {Kind: kindTagClose},
			'/':  {Kind: kindSlash},
			'=':  {Kind: kindEquals},
			'"':  {Handler: quotedString('"')},
			'\'': {Handler: quotedString('\'')},
		},
	}
}
