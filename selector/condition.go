package selector

import (
	"github.com/sirupsen/logrus"

	"github.com/domquery/domquery/dom"
)

// Combinator joins two selector steps.
type Combinator uint8

const (
	Descendant Combinator = iota
	Child
	Adjacent
	Sibling
)

// MatchMode selects which part of a tag name a tag condition compares.
type MatchMode uint8

const (
	MatchFull MatchMode = iota
	MatchNamespace
	MatchLocal
)

// Join combines a condition with the one before it in the same step.
type Join uint8

const (
	JoinAnd Join = iota
	JoinOr
)

// AttrOperator is the comparison applied to an attribute value.
type AttrOperator uint8

const (
	OpExists AttrOperator = iota
	OpEquals
	OpNotEqual
	OpContains
	OpWord
	OpPrefix
	OpSuffix
	OpRegex
	OpDash
	OpGTE
	OpLTE
)

// tagCondition tests a node's tag name. The universal name "*" matches
// any element.
type tagCondition struct {
	name   string
	mode   MatchMode
	negate bool
	join   Join
}

// attrCondition tests one attribute. A missing attribute fails every
// operator except OpNotEqual.
type attrCondition struct {
	name   string
	mode   dom.CompareMode
	op     AttrOperator
	value  string
	negate bool
	join   Join
}

// filterCondition is one :name(arg) invocation. For :has and :not the
// argument selector is compiled once, at compile time.
type filterCondition struct {
	name string
	arg  string
	fn   FilterFunc
	sub  *Selector
}

// step is one compound selector between combinators.
type step struct {
	comb    Combinator
	tags    []tagCondition
	attrs   []attrCondition
	filters []filterCondition
}

// Selector is a compiled condition tree ready for matching.
type Selector struct {
	src   string
	steps []step
	eng   *Engine
}

// String returns the source the selector was compiled from.
func (s *Selector) String() string { return s.src }

// FilterFunc evaluates a named pseudo-class filter against one node.
// arg is the raw text between the filter's parentheses ("" when
// absent).
type FilterFunc func(e *Engine, n *dom.Node, arg string) (bool, error)

// Engine holds the filter registry and logger a selector compiles and
// evaluates under. Engines are not safe for concurrent mutation; set
// up filters before use.
type Engine struct {
	Filters map[string]FilterFunc
	Logger  *logrus.Logger
}

// NewEngine returns an engine with the built-in filters installed.
func NewEngine() *Engine {
	return &Engine{
		Filters: defaultFilters(),
		Logger:  logrus.StandardLogger(),
	}
}

// RegisterFilter adds (or overrides) a named filter. Names are matched
// case-insensitively at compile time by lowercasing.
func (e *Engine) RegisterFilter(name string, fn FilterFunc) {
	e.Filters[name] = fn
}

var defaultEngine = NewEngine()

// Compile compiles a selector with the default engine.
func Compile(src string) (*Selector, error) {
	return defaultEngine.Compile(src)
}

// MustCompile is Compile, panicking on error. For selectors fixed at
// program start.
func MustCompile(src string) *Selector {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}
