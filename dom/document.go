package dom

import "fmt"

// ParseError is one recoverable problem found while parsing. Errors
// are informational: the document still carries a best-effort tree.
type ParseError struct {
	Message string
	Line    int
	Col     int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Col)
}

// Document owns a parsed tree: the synthetic root node plus the parse
// errors accumulated while building it. No node outlives its document;
// external references into the tree become stale once the document is
// dropped.
type Document struct {
	Root   *Node
	Errors []ParseError
}

// NewDocument returns a document with an empty root.
func NewDocument() *Document {
	return &Document{Root: NewNode(RootNode)}
}

// AddError records a recoverable parse error.
func (d *Document) AddError(line, col int, format string, args ...interface{}) {
	d.Errors = append(d.Errors, ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Col:     col,
	})
}

// String serializes the whole document back to markup.
func (d *Document) String() string {
	return d.Root.String()
}

// TextContent returns the document's entity-decoded plain text.
func (d *Document) TextContent() string {
	return d.Root.Text()
}
