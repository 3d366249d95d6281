package selector

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/domquery/domquery/dom"
	"github.com/domquery/domquery/tokenizer"
)

// compiler is the recursive-descent selector parser: one token of
// lookahead, with a flag recording whether whitespace preceded it
// (whitespace is the implicit descendant combinator).
type compiler struct {
	eng      *Engine
	tok      *tokenizer.Tokenizer
	src      string
	kind     tokenizer.Kind
	sawSpace bool
}

// Compile parses src into a condition tree. Any malformed construct
// fails the whole compilation with a position-tagged error.
func (e *Engine) Compile(src string) (*Selector, error) {
	c := &compiler{eng: e, tok: tokenizer.New(selectorSpec()), src: src}
	c.tok.SetDocument(src)
	c.next()

	sel := &Selector{src: src, eng: e}
	for c.kind != tokenizer.KindNull {
		st := step{comb: Descendant}
		switch c.kind {
		case kindChild:
			st.comb = Child
			c.next()
		case kindPlus:
			st.comb = Adjacent
			c.next()
		case kindSibling:
			st.comb = Sibling
			c.next()
		}
		if err := c.parseStep(&st); err != nil {
			return nil, err
		}
		if len(st.tags)+len(st.attrs)+len(st.filters) == 0 {
			return nil, c.errf("expected a selector step")
		}
		sel.steps = append(sel.steps, st)
	}
	if len(sel.steps) == 0 {
		return nil, errors.Errorf("selector %q: empty selector", src)
	}
	e.Logger.Tracef("compiled selector %q into %d steps", src, len(sel.steps))
	return sel, nil
}

func (c *compiler) next() {
	c.sawSpace = false
	for {
		c.kind = c.tok.Next()
		if c.kind == tokenizer.KindWhitespace {
			c.sawSpace = true
			continue
		}
		return
	}
}

func (c *compiler) text() string { return c.tok.Text() }

// textUnquoted strips the delimiters from the current string token.
func (c *compiler) textUnquoted() string { return c.tok.TokenText(1, -1) }

func (c *compiler) errf(format string, args ...interface{}) error {
	t := c.tok.Token()
	return errors.Errorf("selector %q: %s at line %d, col %d",
		c.src, fmt.Sprintf(format, args...), t.Line, t.Col)
}

// parseStep parses one compound step: an optional tag test (bare name,
// '*', namespace form, negation, or a parenthesized group), then any
// run of .class, #id, [attrs] and :filter modifiers.
func (c *compiler) parseStep(st *step) error {
	c.sawSpace = false

	switch c.kind {
	case tokenizer.KindIdentifier, kindStar, kindBang:
		cond, err := c.parseTagCond(JoinAnd)
		if err != nil {
			return err
		}
		st.tags = append(st.tags, cond)
	case kindLParen:
		if err := c.parseTagGroup(st); err != nil {
			return err
		}
	}

	for {
		if c.sawSpace {
			return nil
		}
		switch c.kind {
		case kindDot:
			c.next()
			if c.kind != tokenizer.KindIdentifier || c.sawSpace {
				return c.errf("expected class name after '.'")
			}
			st.attrs = append(st.attrs, attrCondition{
				name: "class", op: OpWord, value: c.text(), join: JoinAnd,
			})
			c.next()
		case kindHash:
			c.next()
			if c.kind != tokenizer.KindIdentifier || c.sawSpace {
				return c.errf("expected id after '#'")
			}
			st.attrs = append(st.attrs, attrCondition{
				name: "id", op: OpEquals, value: c.text(), join: JoinAnd,
			})
			c.next()
		case kindLBracket:
			if err := c.parseAttrList(st); err != nil {
				return err
			}
		case kindColon:
			if err := c.parseFilter(st); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// parseTagCond parses a single tag test: [!] (name | * | ns|name |
// ns|* | *|name).
func (c *compiler) parseTagCond(join Join) (tagCondition, error) {
	cond := tagCondition{join: join}
	if c.kind == kindBang {
		cond.negate = true
		c.next()
	}

	switch c.kind {
	case tokenizer.KindIdentifier:
		name := c.text()
		c.next()
		if c.kind == kindPipe && !c.sawSpace {
			c.next()
			switch c.kind {
			case kindStar:
				cond.name, cond.mode = name, MatchNamespace
				c.next()
			case tokenizer.KindIdentifier:
				cond.name, cond.mode = name+":"+c.text(), MatchFull
				c.next()
			default:
				return cond, c.errf("expected name or '*' after namespace %q", name)
			}
		} else {
			cond.name, cond.mode = name, MatchFull
		}
	case kindStar:
		c.next()
		if c.kind == kindPipe && !c.sawSpace {
			c.next()
			if c.kind != tokenizer.KindIdentifier {
				return cond, c.errf("expected local name after '*|'")
			}
			cond.name, cond.mode = c.text(), MatchLocal
			c.next()
		} else {
			cond.name, cond.mode = "*", MatchFull
		}
	default:
		return cond, c.errf("expected tag name")
	}
	return cond, nil
}

// parseTagGroup parses '(' tag ((','|'+') tag)* ')': comma ORs, plus
// ANDs.
func (c *compiler) parseTagGroup(st *step) error {
	c.next()
	join := JoinAnd
	for {
		cond, err := c.parseTagCond(join)
		if err != nil {
			return err
		}
		st.tags = append(st.tags, cond)
		switch c.kind {
		case kindComma:
			join = JoinOr
			c.next()
		case kindPlus:
			join = JoinAnd
			c.next()
		case kindRParen:
			c.next()
			return nil
		case tokenizer.KindNull:
			return c.errf("unterminated tag group")
		default:
			return c.errf("unexpected %q in tag group", c.text())
		}
	}
}

func attrOpFor(kind tokenizer.Kind) (AttrOperator, bool) {
	switch kind {
	case kindEquals:
		return OpEquals, true
	case kindOpNotEqual:
		return OpNotEqual, true
	case kindOpContains:
		return OpContains, true
	case kindOpWord:
		return OpWord, true
	case kindOpPrefix:
		return OpPrefix, true
	case kindOpSuffix:
		return OpSuffix, true
	case kindOpRegex:
		return OpRegex, true
	case kindOpDash:
		return OpDash, true
	case kindOpGTE:
		return OpGTE, true
	case kindOpLTE:
		return OpLTE, true
	}
	return OpExists, false
}

// parseAttrList parses '[' attrcond ((','|'+') attrcond)* ']': comma
// ORs, plus ANDs. An attribute condition is [!] name [op value], where
// name may be ns:name (full), ns|* (namespace only) or *|name (local
// only).
func (c *compiler) parseAttrList(st *step) error {
	c.next()
	join := JoinAnd
	for {
		cond := attrCondition{join: join}
		if c.kind == kindBang {
			cond.negate = true
			c.next()
		}

		switch c.kind {
		case tokenizer.KindIdentifier:
			name := c.text()
			c.next()
			if c.kind == kindColon {
				c.next()
				if c.kind != tokenizer.KindIdentifier {
					return c.errf("expected attribute local name after ':'")
				}
				name += ":" + c.text()
				c.next()
			}
			if c.kind == kindPipe {
				c.next()
				if c.kind != kindStar {
					return c.errf("expected '*' after attribute namespace %q", name)
				}
				cond.name, cond.mode = name, dom.CompareNamespace
				c.next()
			} else {
				cond.name, cond.mode = name, dom.CompareTotal
			}
		case kindStar:
			c.next()
			if c.kind != kindPipe {
				return c.errf("expected '|' after '*' in attribute name")
			}
			c.next()
			if c.kind != tokenizer.KindIdentifier {
				return c.errf("expected attribute local name after '*|'")
			}
			cond.name, cond.mode = c.text(), dom.CompareName
			c.next()
		case tokenizer.KindNull:
			return c.errf("unterminated attribute bracket")
		default:
			return c.errf("expected attribute name, got %q", c.text())
		}

		if op, ok := attrOpFor(c.kind); ok {
			cond.op = op
			c.next()
			switch c.kind {
			case kindString:
				cond.value = c.textUnquoted()
				c.next()
			case tokenizer.KindIdentifier:
				cond.value = c.text()
				c.next()
			default:
				return c.errf("expected attribute value")
			}
		} else {
			cond.op = OpExists
		}
		st.attrs = append(st.attrs, cond)

		switch c.kind {
		case kindComma:
			join = JoinOr
			c.next()
		case kindPlus:
			join = JoinAnd
			c.next()
		case kindRBracket:
			c.next()
			return nil
		case tokenizer.KindNull:
			return c.errf("unterminated attribute bracket")
		default:
			return c.errf("unexpected %q in attribute bracket", c.text())
		}
	}
}

// parseFilter parses :name or :name(raw-args). The argument text is
// kept raw for the filter to interpret; for :has and :not it is
// compiled as a sub-selector immediately so malformed arguments fail
// the whole compilation.
func (c *compiler) parseFilter(st *step) error {
	c.next()
	if c.kind != tokenizer.KindIdentifier || c.sawSpace {
		return c.errf("expected filter name after ':'")
	}
	name := strings.ToLower(c.text())

	arg := ""
	c.next()
	if c.kind == kindLParen && !c.sawSpace {
		start := c.tok.Pos()
		depth := 1
		for depth > 0 {
			switch c.tok.Next() {
			case kindLParen:
				depth++
			case kindRParen:
				depth--
			case tokenizer.KindNull:
				return c.errf("unterminated argument for :%s", name)
			}
		}
		arg = c.src[start:c.tok.Token().Start]
		c.next()
	}

	fn, ok := c.eng.Filters[name]
	if !ok {
		return c.errf("unknown filter :%s", name)
	}
	fc := filterCondition{name: name, arg: arg, fn: fn}
	if name == "has" || name == "not" {
		sub, err := c.eng.Compile(unquote(arg))
		if err != nil {
			return errors.Wrapf(err, "in :%s argument", name)
		}
		fc.sub = sub
	}
	st.filters = append(st.filters, fc)
	return nil
}

// unquote trims surrounding whitespace and one pair of matching
// quotes, if present.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
