// Package parser builds a dom.Document from markup text. It tolerates
// malformed input: recoverable problems are accumulated on the
// document while parsing continues, and only structurally unrecoverable
// input (unterminated doctype/CDATA, runaway depth) aborts the parse.
package parser

import (
	"io"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/domquery/domquery/dom"
	"github.com/domquery/domquery/tokenizer"
)

// Fatal parse failures. The partial document built so far is still
// returned alongside them.
var (
	ErrUnterminatedDoctype = errors.New("parser: unterminated doctype")
	ErrUnterminatedCData   = errors.New("parser: unterminated CDATA section")
	ErrDepthExceeded       = errors.New("parser: maximum tree depth exceeded")
)

// DefaultMaxDepth bounds both element nesting and conditional-comment
// recursion when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// TagHandler takes over parsing of a tag right after its name has been
// read. The handler consumes the remainder of the tag (and any raw
// content) through p.Tokenizer() and attaches nodes with p.Append.
type TagHandler func(p *Parser, name string) error

// Options configures a parse. The zero value uses the standard logger,
// DefaultMaxDepth and only the built-in tag handlers.
type Options struct {
	Logger *logrus.Logger
	// MaxDepth bounds element nesting depth; parses exceeding it fail
	// with ErrDepthExceeded.
	MaxDepth int
	// TagHandlers adds or overrides handlers, keyed by lowercase tag
	// name. The single-character keys "?" and "%" act as prefix
	// handlers for processing instructions and embedded blocks.
	TagHandlers map[string]TagHandler
}

// Parser holds the state of one in-progress parse: the tokenizer, the
// document being built and the hierarchy stack of open elements.
type Parser struct {
	tok       *tokenizer.Tokenizer
	doc       *dom.Document
	hierarchy []*dom.Node
	handlers  map[string]TagHandler
	log       *logrus.Logger
	maxDepth  int
	fragDepth int
}

// Parse reads all of r and parses it. See ParseString.
func Parse(r io.Reader, opts ...Options) (*dom.Document, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "parser: reading input")
	}
	return ParseString(string(data), opts...)
}

// ParseString parses markup text into a document. The returned error
// is non-nil only for fatal failures; recoverable problems are listed
// on the document, which always reflects a best-effort tree.
func ParseString(text string, opts ...Options) (*dom.Document, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	p := newParser(text, o)
	err := p.run()
	return p.doc, err
}

func newParser(text string, o Options) *Parser {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	handlers := builtinHandlers()
	for name, h := range o.TagHandlers {
		handlers[strings.ToLower(name)] = h
	}
	p := &Parser{
		tok:      tokenizer.New(markupSpec()),
		doc:      dom.NewDocument(),
		handlers: handlers,
		log:      o.Logger,
		maxDepth: o.MaxDepth,
	}
	p.tok.SetDocument(text)
	p.hierarchy = []*dom.Node{p.doc.Root}
	return p
}

func builtinHandlers() map[string]TagHandler {
	handlers := map[string]TagHandler{
		"?": handleProcessingInstruction,
		"%": handleEmbeddedBlock,
	}
	for tag := range rawTextTags {
		handlers[tag] = handleRawText
	}
	return handlers
}

// Tokenizer exposes the underlying tokenizer to tag handlers.
func (p *Parser) Tokenizer() *tokenizer.Tokenizer { return p.tok }

// Document returns the document under construction.
func (p *Parser) Document() *dom.Document { return p.doc }

// Append attaches n under the currently open element.
func (p *Parser) Append(n *dom.Node) {
	if err := p.current().AppendChild(n); err != nil {
		p.Errorf("cannot attach <%s>: %v", n.Tag, err)
	}
}

// Errorf records a recoverable parse error at the current position.
func (p *Parser) Errorf(format string, args ...interface{}) {
	p.errorfAt(p.tok.Line(), p.tok.Col(), format, args...)
}

func (p *Parser) errorfAt(line, col int, format string, args ...interface{}) {
	p.doc.AddError(line, col, format, args...)
	p.log.WithFields(logrus.Fields{"line": line, "col": col}).Warnf(format, args...)
}

func (p *Parser) current() *dom.Node {
	return p.hierarchy[len(p.hierarchy)-1]
}

// run is the main loop: capture text up to each '<', then dispatch on
// the tag opener.
func (p *Parser) run() error {
	for {
		kind := p.tok.NextUntil("<", false)
		if text := p.tok.Text(); text != "" {
			p.Append(dom.NewText(text))
		}
		if kind == tokenizer.KindNull {
			break
		}
		if err := p.parseTag(); err != nil {
			return err
		}
	}
	for i := len(p.hierarchy) - 1; i >= 1; i-- {
		p.log.Debugf("tag <%s> left open at end of document", p.hierarchy[i].Tag)
	}
	return nil
}

// parseTag dispatches on the characters following '<'. The tokenizer
// is positioned at the '<' on entry and past the whole construct on
// return.
func (p *Parser) parseTag() error {
	line, col := p.tok.Line(), p.tok.Col()
	switch {
	case p.tok.HasPrefixFold("<!--[if"):
		return p.parseConditional(line, col, true)

	case p.tok.HasPrefix("<!--"):
		p.tok.Skip(4)
		kind := p.tok.NextUntilLiteral("-->", true)
		data := p.tok.Text()
		if kind == tokenizer.KindNull {
			p.errorfAt(line, col, "unterminated comment")
		} else {
			data = p.tok.TokenText(0, -3)
		}
		p.Append(dom.NewComment(data))

	case p.tok.HasPrefixFold("<![CDATA["):
		p.tok.Skip(9)
		kind := p.tok.NextUntilLiteral("]]>", true)
		if kind == tokenizer.KindNull {
			p.errorfAt(line, col, "unterminated CDATA section")
			return errors.Wrapf(ErrUnterminatedCData, "line %d, col %d", line, col)
		}
		n := dom.NewNode(dom.CDataNode)
		n.Data = p.tok.TokenText(0, -3)
		p.Append(n)

	case p.tok.HasPrefixFold("<![if"):
		return p.parseConditional(line, col, false)

	case p.tok.HasPrefix("<!["):
		// Unknown marked section; same recovery point as CDATA.
		p.tok.Skip(3)
		kind := p.tok.NextUntilLiteral("]>", true)
		if kind == tokenizer.KindNull {
			p.errorfAt(line, col, "unterminated marked section")
			return errors.Wrapf(ErrUnterminatedCData, "line %d, col %d", line, col)
		}
		p.errorfAt(line, col, "unrecognized marked section ignored")

	case p.tok.HasPrefix("</"):
		p.tok.Skip(2)
		kind := p.tok.NextSkipWhitespace()
		if kind != tokenizer.KindIdentifier {
			p.errorfAt(line, col, "malformed closing tag")
			if p.tok.Token().Kind != kindTagClose && kind != tokenizer.KindNull {
				p.tok.NextUntil(">", true)
			}
			return nil
		}
		name := p.tok.Text()
		p.tok.NextUntil(">", true)
		p.closeTag(name, line, col)

	case p.tok.HasPrefix("<!"):
		p.tok.Skip(2)
		kind := p.tok.NextUntil(">", true)
		if kind == tokenizer.KindNull {
			p.errorfAt(line, col, "unterminated doctype")
			return errors.Wrapf(ErrUnterminatedDoctype, "line %d, col %d", line, col)
		}
		n := dom.NewNode(dom.DoctypeNode)
		n.Data = doctypeData(p.tok.TokenText(0, -1))
		n.SelfClosing = true
		p.Append(n)

	default:
		p.tok.Skip(1)
		kind := p.tok.Next()
		if kind != tokenizer.KindIdentifier {
			p.errorfAt(line, col, "stray '<' treated as text")
			p.Append(dom.NewText("<" + p.tok.Text()))
			return nil
		}
		return p.openTag(p.tok.Text(), line, col)
	}
	return nil
}

// doctypeData strips the leading DOCTYPE keyword so serialization can
// re-add it canonically.
func doctypeData(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "DOCTYPE") {
		return strings.TrimSpace(trimmed[7:])
	}
	return trimmed
}

// openTag handles an ordinary start tag: registry dispatch, attribute
// list, self-closing rules, implicit-close rules and the hierarchy
// push.
func (p *Parser) openTag(name string, line, col int) error {
	lower := strings.ToLower(name)
	if h := p.lookupHandler(lower); h != nil {
		return h(p, name)
	}

	elem := dom.NewElement(name)
	explicit := p.parseAttributes(elem)
	selfClosing := explicit || selfClosingTags[lower]
	elem.SelfClosing = selfClosing
	if explicit {
		elem.Closer = " /"
	}

	p.applyImplicitClose(lower)
	p.log.WithFields(logrus.Fields{"line": line, "col": col}).Debugf("open tag <%s>", name)
	p.Append(elem)

	if !selfClosing {
		if len(p.hierarchy) >= p.maxDepth {
			p.errorfAt(line, col, "tree deeper than %d elements", p.maxDepth)
			return errors.Wrapf(ErrDepthExceeded, "line %d, col %d", line, col)
		}
		p.hierarchy = append(p.hierarchy, elem)
	}
	return nil
}

func (p *Parser) lookupHandler(lower string) TagHandler {
	if h, ok := p.handlers[lower]; ok {
		return h
	}
	switch lower[0] {
	case '?':
		return p.handlers["?"]
	case '%':
		return p.handlers["%"]
	}
	return nil
}

// applyImplicitClose pops hierarchy levels while the upcoming tag is in
// the closes-previous table and the open element matches (HTML5
// optional end tags: a new li closes an open li, a new tr closes both
// the open td and the open tr, block tags close p).
func (p *Parser) applyImplicitClose(lower string) {
	closes := closesPrevious[lower]
	if closes == nil {
		return
	}
	for len(p.hierarchy) > 1 {
		top := p.current()
		if top.Type != dom.ElementNode || !closes[strings.ToLower(top.Tag)] {
			return
		}
		p.log.Debugf("tag <%s> implicitly closes <%s>", lower, top.Tag)
		p.hierarchy = p.hierarchy[:len(p.hierarchy)-1]
	}
}

// closeTag pops the hierarchy up to and including the nearest ancestor
// whose name matches, recording an error for each intermediate element
// whose end tag is not optional. An unmatched closing tag is recorded
// and otherwise ignored.
func (p *Parser) closeTag(name string, line, col int) {
	for i := len(p.hierarchy) - 1; i >= 1; i-- {
		if !strings.EqualFold(p.hierarchy[i].Tag, name) {
			continue
		}
		for j := len(p.hierarchy) - 1; j > i; j-- {
			skipped := p.hierarchy[j].Tag
			if optionalEndTags[strings.ToLower(skipped)] {
				p.log.Debugf("</%s> implicitly closes <%s>", name, skipped)
				continue
			}
			p.errorfAt(line, col, "unclosed tag <%s> implicitly closed by </%s>", skipped, name)
		}
		p.hierarchy = p.hierarchy[:i]
		p.log.WithFields(logrus.Fields{"line": line, "col": col}).Debugf("close tag </%s>", name)
		return
	}
	p.errorfAt(line, col, "unmatched closing tag </%s>", name)
}

// parseAttributes consumes the attribute list up to '>' or end of
// input, filling elem. Reports whether an explicit self-closing slash
// was seen. Accepts double-quoted, single-quoted and bare values, and
// standalone attributes with no value.
func (p *Parser) parseAttributes(elem *dom.Node) (selfClosing bool) {
	pending := ""
	hasPending := false
	commit := func(v string) {
		if elem.Attributes.Has(pending, dom.CompareTotal) {
			p.Errorf("duplicate attribute %q on <%s>", pending, elem.Tag)
		} else {
			elem.SetAttr(pending, v)
		}
		pending, hasPending = "", false
	}

	for {
		kind := p.tok.NextSkipWhitespace()
		switch kind {
		case tokenizer.KindNull:
			if hasPending {
				commit("")
			}
			p.Errorf("unterminated tag <%s>", elem.Tag)
			return selfClosing

		case kindTagClose:
			if hasPending {
				commit("")
			}
			return selfClosing

		case kindSlash:
			if hasPending {
				commit("")
			}
			selfClosing = true

		case kindEquals:
			if !hasPending {
				p.Errorf("attribute value with no name on <%s>", elem.Tag)
				p.readAttrValue(&selfClosing)
				break
			}
			commit(p.readAttrValue(&selfClosing))

		case kindString, tokenizer.KindIdentifier:
			if hasPending {
				commit("")
			}
			pending = p.tok.Text()
			hasPending = true

		case kindTagOpen:
			// Stray '<' inside a tag becomes part of the next
			// attribute name, tag-soup style.
			if hasPending {
				commit("")
			}
			pending = "<"
			if isMarkupIdentifier(p.tok.Peek()) {
				p.tok.Next()
				pending += p.tok.Text()
			}
			hasPending = true
		}
	}
}

// readAttrValue reads the value after '='. Quoted values keep embedded
// whitespace; bare values run to whitespace or '>', with a trailing
// slash before '>' pulled out as the self-closing marker.
func (p *Parser) readAttrValue(selfClosing *bool) string {
	p.skipSpace()
	c := p.tok.Peek()
	if c == '"' || c == '\'' {
		p.tok.Next()
		return p.tok.TokenText(1, -1)
	}
	p.tok.NextUntil(" \t\r\n\f>", false)
	v := p.tok.Text()
	if strings.HasSuffix(v, "/") && p.tok.Peek() == '>' {
		v = v[:len(v)-1]
		*selfClosing = true
	}
	return v
}

func (p *Parser) skipSpace() {
	for !p.tok.EOF() && isMarkupWhitespace(p.tok.Peek()) {
		p.tok.Skip(1)
	}
}

// parseConditional parses an IE conditional block, either the comment
// form <!--[if ...]> ... <![endif]--> or the revealed form
// <![if ...]> ... <![endif]>. The inner markup is parsed as the
// conditional node's children.
func (p *Parser) parseConditional(line, col int, comment bool) error {
	prefix, end := "<![if", "<![endif]>"
	if comment {
		prefix, end = "<!--[if", "<![endif]-->"
	}
	p.tok.Skip(len(prefix))

	kind := p.tok.NextUntilLiteral("]>", true)
	if kind == tokenizer.KindNull {
		p.errorfAt(line, col, "unterminated conditional block")
		p.Append(dom.NewComment(p.tok.Text()))
		return nil
	}
	condition := strings.TrimSpace(p.tok.TokenText(0, -2))

	kind = p.tok.NextUntilLiteralFold(end, true)
	inner := p.tok.Text()
	if kind == tokenizer.KindNull {
		p.errorfAt(line, col, "conditional block missing %s", end)
	} else {
		inner = p.tok.TokenText(0, -len(end))
	}

	node := dom.NewNode(dom.ConditionalNode)
	node.SetAttr("condition", condition)
	if !comment {
		node.Closer = dom.CloserRevealed
	}
	p.Append(node)
	return p.parseFragment(node, inner)
}

// parseFragment parses text into root with a nested parser sharing the
// document's error list. Nesting depth shares the parse's depth bound.
func (p *Parser) parseFragment(root *dom.Node, text string) error {
	if p.fragDepth >= p.maxDepth {
		p.Errorf("conditional blocks nested deeper than %d", p.maxDepth)
		return errors.Wrap(ErrDepthExceeded, "conditional nesting")
	}
	sub := &Parser{
		tok:       tokenizer.New(markupSpec()),
		doc:       p.doc,
		handlers:  p.handlers,
		log:       p.log,
		maxDepth:  p.maxDepth,
		fragDepth: p.fragDepth + 1,
	}
	sub.tok.SetDocument(text)
	sub.hierarchy = []*dom.Node{root}
	return sub.run()
}

// handleProcessingInstruction consumes <? ... ?> (including <?php and
// <?xml) into a ProcessingInstruction node. The tag name keeps its
// leading '?' so serialization is exact.
func handleProcessingInstruction(p *Parser, name string) error {
	n := dom.NewNode(dom.ProcessingInstructionNode)
	n.Tag = name
	n.SelfClosing = true
	kind := p.tok.NextUntilLiteral("?>", true)
	if kind == tokenizer.KindNull {
		p.Errorf("unterminated processing instruction <%s", name)
		n.Data = p.tok.Text()
	} else {
		n.Data = p.tok.TokenText(0, -2)
	}
	p.Append(n)
	return nil
}

// handleEmbeddedBlock consumes <% ... %> into an EmbeddedBlock node.
// Any name characters scanned past the '%' belong to the block body.
func handleEmbeddedBlock(p *Parser, name string) error {
	n := dom.NewNode(dom.EmbeddedNode)
	n.SelfClosing = true
	kind := p.tok.NextUntilLiteral("%>", true)
	if kind == tokenizer.KindNull {
		p.Errorf("unterminated embedded block <%s", name)
		n.Data = name[1:] + p.tok.Text()
	} else {
		n.Data = name[1:] + p.tok.TokenText(0, -2)
	}
	p.Append(n)
	return nil
}

// handleRawText parses a script/style tag whose content is captured
// literally up to the matching end tag and stored as a single text
// child, never re-tokenized.
func handleRawText(p *Parser, name string) error {
	elem := dom.NewElement(name)
	explicit := p.parseAttributes(elem)
	if explicit {
		elem.SelfClosing = true
		elem.Closer = " /"
		p.Append(elem)
		return nil
	}
	p.Append(elem)

	lower := strings.ToLower(name)
	end := "</" + lower
	var content strings.Builder
	terminated := false
	for {
		kind := p.tok.NextUntilLiteralFold(end, false)
		content.WriteString(p.tok.Text())
		if kind == tokenizer.KindNull {
			break
		}
		// The end tag counts only when the name stops here:
		// "</scriptfoo" stays content.
		if c := p.tok.PeekAt(len(end)); c == '>' || c == '/' || c == 0 || isMarkupWhitespace(c) {
			terminated = true
			break
		}
		content.WriteByte(p.tok.Peek())
		p.tok.Skip(1)
	}
	if content.Len() > 0 {
		if err := elem.AppendChild(dom.NewText(content.String())); err != nil {
			return err
		}
	}
	if !terminated {
		p.Errorf("unterminated <%s> element", lower)
		return nil
	}
	p.tok.Skip(len(end))
	p.tok.NextUntil(">", true)
	return nil
}
