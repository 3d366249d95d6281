// Package tokenizer implements a character-level scanner driven by a
// pluggable character-classification table. The markup parser and the
// selector compiler both build on it, each with its own Spec.
package tokenizer

// Kind classifies a token. The four base kinds are shared by every
// tokenizer instance; concrete users register their own kinds starting
// at KindCustom.
type Kind uint8

const (
	KindNull Kind = iota
	KindUnknown
	KindWhitespace
	KindIdentifier
	// KindCustom is the first kind value available to a Spec.
	KindCustom
)

// Token is one classified span of the input. Start and End are byte
// offsets into the document; Line and Col locate the first byte.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Line  int
	Col   int
}

// Handler consumes a multi-byte token that begins with a registered
// special character. On entry the tokenizer is positioned at that
// character; the handler consumes as many bytes as it needs and
// returns the kind of the token it produced.
type Handler func(t *Tokenizer) Kind

// Class binds a special character to either a fixed kind or a handler
// that may consume more than one byte (two-character operators, quoted
// strings).
type Class struct {
	Kind    Kind
	Handler Handler
}

// Spec supplies the three classification inputs. The dispatch table is
// rebuilt whenever SetSpec is called, so a Spec must not be mutated
// while in use.
type Spec struct {
	Identifier func(c byte) bool
	Whitespace func(c byte) bool
	Special    map[byte]Class
}

// Tokenizer scans a document byte by byte, maintaining position and
// line/column state across every scan operation.
type Tokenizer struct {
	doc  string
	pos  int
	line int
	col  int

	spec    Spec
	special [256]*Class

	tok Token
}

// New returns a tokenizer for the given spec with no document loaded.
func New(spec Spec) *Tokenizer {
	t := &Tokenizer{}
	t.SetSpec(spec)
	t.SetDocument("")
	return t
}

// SetSpec installs a new classification spec and rebuilds the dispatch
// table. Position state is untouched.
func (t *Tokenizer) SetSpec(spec Spec) {
	t.spec = spec
	for i := range t.special {
		t.special[i] = nil
	}
	for c := range spec.Special {
		cl := spec.Special[c]
		t.special[c] = &cl
	}
}

// SetDocument loads a new document and resets position, line and
// column.
func (t *Tokenizer) SetDocument(doc string) {
	t.doc = doc
	t.pos = 0
	t.line = 1
	t.col = 1
	t.tok = Token{}
}

// Pos returns the current byte offset.
func (t *Tokenizer) Pos() int { return t.pos }

// Line returns the current 1-based line number.
func (t *Tokenizer) Line() int { return t.line }

// Col returns the current 1-based column number.
func (t *Tokenizer) Col() int { return t.col }

// EOF reports whether the scan position is at or past end of input.
func (t *Tokenizer) EOF() bool { return t.pos >= len(t.doc) }

// Token returns the most recently produced token.
func (t *Tokenizer) Token() Token { return t.tok }

// Peek returns the byte at the current position, or 0 at EOF.
func (t *Tokenizer) Peek() byte {
	if t.EOF() {
		return 0
	}
	return t.doc[t.pos]
}

// PeekAt returns the byte at offset n past the current position, or 0
// past EOF.
func (t *Tokenizer) PeekAt(n int) byte {
	if t.pos+n >= len(t.doc) {
		return 0
	}
	return t.doc[t.pos+n]
}

// HasPrefix reports whether the unread input begins with s.
func (t *Tokenizer) HasPrefix(s string) bool {
	if t.pos+len(s) > len(t.doc) {
		return false
	}
	return t.doc[t.pos:t.pos+len(s)] == s
}

// HasPrefixFold is HasPrefix under ASCII case folding.
func (t *Tokenizer) HasPrefixFold(s string) bool {
	if t.pos+len(s) > len(t.doc) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if lower(t.doc[t.pos+i]) != lower(s[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// step advances exactly one byte, keeping line/column current. A \r\n
// pair counts as a single line break.
func (t *Tokenizer) step() {
	switch t.doc[t.pos] {
	case '\r':
		t.line++
		t.col = 1
	case '\n':
		if t.pos == 0 || t.doc[t.pos-1] != '\r' {
			t.line++
		}
		t.col = 1
	default:
		t.col++
	}
	t.pos++
}

// Skip advances n bytes (or to EOF), tracking line/column.
func (t *Tokenizer) Skip(n int) {
	for i := 0; i < n && !t.EOF(); i++ {
		t.step()
	}
}

// Next produces the next token: a whitespace run, an identifier run, a
// special token per the dispatch table, or a single UNKNOWN byte. At
// EOF it produces an empty NULL token.
func (t *Tokenizer) Next() Kind {
	start, line, col := t.pos, t.line, t.col
	if t.EOF() {
		t.tok = Token{Kind: KindNull, Start: start, End: start, Line: line, Col: col}
		return KindNull
	}

	c := t.doc[t.pos]
	var kind Kind
	switch {
	case t.spec.Whitespace != nil && t.spec.Whitespace(c):
		for !t.EOF() && t.spec.Whitespace(t.doc[t.pos]) {
			t.step()
		}
		kind = KindWhitespace
	case t.special[c] != nil:
		cl := t.special[c]
		if cl.Handler != nil {
			kind = cl.Handler(t)
		} else {
			t.step()
			kind = cl.Kind
		}
	case t.spec.Identifier != nil && t.spec.Identifier(c):
		for !t.EOF() && t.spec.Identifier(t.doc[t.pos]) && t.special[t.doc[t.pos]] == nil {
			t.step()
		}
		kind = KindIdentifier
	default:
		t.step()
		kind = KindUnknown
	}

	t.tok = Token{Kind: kind, Start: start, End: t.pos, Line: line, Col: col}
	return kind
}

// NextSkipWhitespace is Next with whitespace runs treated as
// transparent.
func (t *Tokenizer) NextSkipWhitespace() Kind {
	kind := t.Next()
	for kind == KindWhitespace {
		kind = t.Next()
	}
	return kind
}

// NextUntil scans forward until a byte from set is reached. The
// produced token spans the skipped text. If invoke is true the found
// byte is then consumed through its classification (handler or single
// byte) and the token extends over it, returning that class's kind;
// otherwise the found byte is left unread and the token kind is
// KindIdentifier. Returns KindNull if EOF is hit first.
func (t *Tokenizer) NextUntil(set string, invoke bool) Kind {
	start, line, col := t.pos, t.line, t.col
	for !t.EOF() && !inSet(t.doc[t.pos], set) {
		t.step()
	}
	if t.EOF() {
		t.tok = Token{Kind: KindNull, Start: start, End: t.pos, Line: line, Col: col}
		return KindNull
	}

	kind := KindIdentifier
	if invoke {
		c := t.doc[t.pos]
		if cl := t.special[c]; cl != nil {
			if cl.Handler != nil {
				kind = cl.Handler(t)
			} else {
				t.step()
				kind = cl.Kind
			}
		} else {
			t.step()
			kind = KindUnknown
		}
	}
	t.tok = Token{Kind: kind, Start: start, End: t.pos, Line: line, Col: col}
	return kind
}

// NextUntilLiteral scans forward until the literal needle. The token
// spans the skipped text; when consume is true the needle itself is
// consumed and included in the token (TokenText offsets strip it).
// Returns KindNull if the needle never occurs, with the position left
// at EOF.
func (t *Tokenizer) NextUntilLiteral(needle string, consume bool) Kind {
	return t.scanLiteral(needle, consume, false)
}

// NextUntilLiteralFold is NextUntilLiteral under ASCII case folding,
// used for raw-text end tags which match case-insensitively.
func (t *Tokenizer) NextUntilLiteralFold(needle string, consume bool) Kind {
	return t.scanLiteral(needle, consume, true)
}

func (t *Tokenizer) scanLiteral(needle string, consume, fold bool) Kind {
	start, line, col := t.pos, t.line, t.col
	for !t.EOF() {
		var ok bool
		if fold {
			ok = t.HasPrefixFold(needle)
		} else {
			ok = t.HasPrefix(needle)
		}
		if ok {
			if consume {
				t.Skip(len(needle))
			}
			t.tok = Token{Kind: KindIdentifier, Start: start, End: t.pos, Line: line, Col: col}
			return KindIdentifier
		}
		t.step()
	}
	t.tok = Token{Kind: KindNull, Start: start, End: t.pos, Line: line, Col: col}
	return KindNull
}

// TokenText returns the current token's text, adjusted by byte offsets
// at each end. Offsets are used to strip delimiters, e.g.
// TokenText(1, -1) drops surrounding quotes. Out-of-range offsets are
// clamped.
func (t *Tokenizer) TokenText(trimLeft, trimRight int) string {
	lo := t.tok.Start + trimLeft
	hi := t.tok.End + trimRight
	if lo < 0 {
		lo = 0
	}
	if hi > len(t.doc) {
		hi = len(t.doc)
	}
	if hi < lo {
		hi = lo
	}
	return t.doc[lo:hi]
}

// Text returns the current token's exact text.
func (t *Tokenizer) Text() string { return t.TokenText(0, 0) }

func inSet(c byte, set string) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			return true
		}
	}
	return false
}
