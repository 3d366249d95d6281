// Package selector compiles CSS-like selector strings into condition
// trees and evaluates them against a dom tree. Malformed selectors
// fail compilation with a position-tagged error; they never return
// partial results.
package selector

import "github.com/domquery/domquery/tokenizer"

// Token kinds for selector scanning. The two-character attribute
// operators are disambiguated against their single-character bases by
// handlers.
const (
	kindString tokenizer.Kind = tokenizer.KindCustom + iota
	kindChild                 // >
	kindPlus                  // + (adjacent combinator / AND joiner)
	kindSibling               // ~
	kindDot                   // .
	kindHash                  // #
	kindLBracket              // [
	kindRBracket              // ]
	kindLParen                // (
	kindRParen                // )
	kindComma                 // ,
	kindColon                 // :
	kindStar                  // *
	kindPipe                  // |
	kindBang                  // !
	kindEquals                // =
	kindOpNotEqual            // !=
	kindOpContains            // *=
	kindOpWord                // ~=
	kindOpPrefix              // ^=
	kindOpSuffix              // $=
	kindOpRegex               // %=
	kindOpDash                // |=
	kindOpGTE                 // >=
	kindOpLTE                 // <=
)

func isSelectorWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}

func isSelectorIdentifier(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c >= 0x80:
		return true
	}
	return false
}

// withEquals returns a handler producing ifEq when the character is
// followed by '=', and alone otherwise.
func withEquals(ifEq, alone tokenizer.Kind) tokenizer.Handler {
	return func(t *tokenizer.Tokenizer) tokenizer.Kind {
		t.Skip(1)
		if t.Peek() == '=' {
			t.Skip(1)
			return ifEq
		}
		return alone
	}
}

func quoted(q byte) tokenizer.Handler {
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

func selectorSpec() tokenizer.Spec {
	return tokenizer.Spec{
		Identifier: isSelectorIdentifier,
		Whitespace: isSelectorWhitespace,
		Special: map[byte]tokenizer.Class{
			'>':  {Handler: withEquals(kindOpGTE, kindChild)},
			'<':  {Handler: withEquals(kindOpLTE, tokenizer.KindUnknown)},
			'+':  {Kind: kindPlus},
			'~':  {Handler: withEquals(kindOpWord, kindSibling)},
			'^':  {Handler: withEquals(kindOpPrefix, tokenizer.KindUnknown)},
			'$':  {Handler: withEquals(kindOpSuffix, tokenizer.KindUnknown)},
			'*':  {Handler: withEquals(kindOpContains, kindStar)},
			'%':  {Handler: withEquals(kindOpRegex, tokenizer.KindUnknown)},
			'|':  {Handler: withEquals(kindOpDash, kindPipe)},
			'!':  {Handler: withEquals(kindOpNotEqual, kindBang)},
			'=':  {Kind: kindEquals},
			'.':  {Kind: kindDot},
			'#':  {Kind: kindHash},
			'[':  {Kind: kindLBracket},
			']':  {Kind: kindRBracket},
			'(':  {Kind: kindLParen},
			')':  {Kind: kindRParen},
			',':  {Kind: kindComma},
			':':  {Kind: kindColon},
			'"':  {Handler: quoted('"')},
			'\'': {Handler: quoted('\'')},
		},
	}
}
