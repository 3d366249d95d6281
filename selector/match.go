package selector

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/domquery/domquery/dom"
)

// QueryOptions controls how a selector's first step searches from the
// query root.
type QueryOptions struct {
	// Recursive searches the whole subtree; false restricts the first
	// step to the root's immediate children.
	Recursive bool
	// IncludeSelf makes the root node itself eligible for the first
	// step.
	IncludeSelf bool
	// MaxDepth bounds recursive descent; 0 means unbounded.
	MaxDepth int
}

// MatchAll evaluates the selector left to right from root and returns
// every matching node in document order, de-duplicated.
func (s *Selector) MatchAll(root *dom.Node, opts QueryOptions) ([]*dom.Node, error) {
	first := &s.steps[0]

	var current []*dom.Node
	var err error
	switch {
	case first.comb == Child:
		current, err = s.filterNodes(first, root.Children())
	case first.comb == Adjacent:
		current, err = s.adjacentOf(first, []*dom.Node{root})
	case first.comb == Sibling:
		current, err = s.siblingsOf(first, []*dom.Node{root})
	case opts.Recursive:
		current, err = s.descend(first, root, opts.IncludeSelf, opts.MaxDepth)
	default:
		current, err = s.filterNodes(first, root.Children())
		if err == nil && opts.IncludeSelf {
			ok, serr := s.matchStep(first, root)
			if serr != nil {
				return nil, serr
			}
			if ok {
				current = append([]*dom.Node{root}, current...)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(s.steps); i++ {
		st := &s.steps[i]
		switch st.comb {
		case Child:
			current, err = s.childrenOf(st, current)
		case Descendant:
			current, err = s.descendantsOf(st, current)
		case Adjacent:
			current, err = s.adjacentOf(st, current)
		case Sibling:
			current, err = s.siblingsOf(st, current)
		}
		if err != nil {
			return nil, err
		}
		if len(current) == 0 {
			return nil, nil
		}
	}
	return current, nil
}

// Match tests whether n itself satisfies the full selector, walking
// combinators right to left through n's ancestors and preceding
// siblings. Used by :not and available for single-node checks.
func (s *Selector) Match(n *dom.Node) (bool, error) {
	return s.matchFrom(n, len(s.steps)-1)
}

func (s *Selector) matchFrom(n *dom.Node, i int) (bool, error) {
	ok, err := s.matchStep(&s.steps[i], n)
	if err != nil || !ok {
		return false, err
	}
	if i == 0 {
		return true, nil
	}

	switch s.steps[i].comb {
	case Child:
		if n.Parent == nil {
			return false, nil
		}
		return s.matchFrom(n.Parent, i-1)
	case Descendant:
		for p := n.Parent; p != nil; p = p.Parent {
			ok, err := s.matchFrom(p, i-1)
			if err != nil || ok {
				return ok, err
			}
		}
	case Adjacent:
		if prev := n.PrevSibling(true); prev != nil {
			return s.matchFrom(prev, i-1)
		}
	case Sibling:
		for prev := n.PrevSibling(true); prev != nil; prev = prev.PrevSibling(true) {
			ok, err := s.matchFrom(prev, i-1)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	return false, nil
}

// descend collects step matches in the subtree below root, bounded by
// maxDepth levels when non-zero.
func (s *Selector) descend(st *step, root *dom.Node, includeSelf bool, maxDepth int) ([]*dom.Node, error) {
	var out []*dom.Node
	var walk func(n *dom.Node, depth int) error
	walk = func(n *dom.Node, depth int) error {
		if n != root || includeSelf {
			ok, err := s.matchStep(st, n)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, n)
			}
		}
		if maxDepth > 0 && depth >= maxDepth {
			return nil
		}
		for _, c := range n.Children() {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Selector) filterNodes(st *step, nodes []*dom.Node) ([]*dom.Node, error) {
	var out []*dom.Node
	for _, n := range nodes {
		ok, err := s.matchStep(st, n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Selector) childrenOf(st *step, current []*dom.Node) ([]*dom.Node, error) {
	seen := map[*dom.Node]bool{}
	var out []*dom.Node
	for _, r := range current {
		for _, c := range r.Children() {
			if seen[c] {
				continue
			}
			ok, err := s.matchStep(st, c)
			if err != nil {
				return nil, err
			}
			if ok {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s *Selector) descendantsOf(st *step, current []*dom.Node) ([]*dom.Node, error) {
	seen := map[*dom.Node]bool{}
	var out []*dom.Node
	for _, r := range current {
		matches, err := s.descend(st, r, false, 0)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *Selector) adjacentOf(st *step, current []*dom.Node) ([]*dom.Node, error) {
	seen := map[*dom.Node]bool{}
	var out []*dom.Node
	for _, r := range current {
		next := r.NextSibling(true)
		if next == nil || seen[next] {
			continue
		}
		ok, err := s.matchStep(st, next)
		if err != nil {
			return nil, err
		}
		if ok {
			seen[next] = true
			out = append(out, next)
		}
	}
	return out, nil
}

func (s *Selector) siblingsOf(st *step, current []*dom.Node) ([]*dom.Node, error) {
	seen := map[*dom.Node]bool{}
	var out []*dom.Node
	for _, r := range current {
		for sib := r.NextSibling(true); sib != nil; sib = sib.NextSibling(true) {
			if seen[sib] {
				continue
			}
			ok, err := s.matchStep(st, sib)
			if err != nil {
				return nil, err
			}
			if ok {
				seen[sib] = true
				out = append(out, sib)
			}
		}
	}
	return out, nil
}

// matchStep evaluates one step's tag, attribute and filter conditions
// against a single node. Tag and attribute conditions fold left
// through their AND/OR joins; filters all must pass.
func (s *Selector) matchStep(st *step, n *dom.Node) (bool, error) {
	if len(st.tags) > 0 {
		result := evalTag(&st.tags[0], n)
		for i := 1; i < len(st.tags); i++ {
			v := evalTag(&st.tags[i], n)
			if st.tags[i].join == JoinOr {
				result = result || v
			} else {
				result = result && v
			}
		}
		if !result {
			return false, nil
		}
	}

	if len(st.attrs) > 0 {
		result, err := evalAttr(&st.attrs[0], n)
		if err != nil {
			return false, err
		}
		for i := 1; i < len(st.attrs); i++ {
			v, err := evalAttr(&st.attrs[i], n)
			if err != nil {
				return false, err
			}
			if st.attrs[i].join == JoinOr {
				result = result || v
			} else {
				result = result && v
			}
		}
		if !result {
			return false, nil
		}
	}

	for i := range st.filters {
		ok, err := s.evalFilter(&st.filters[i], n)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evalTag(tc *tagCondition, n *dom.Node) bool {
	var ok bool
	switch {
	case tc.name == "*":
		ok = n.Type == dom.ElementNode
	case tc.mode == MatchNamespace:
		ok = strings.EqualFold(n.Namespace(), tc.name)
	case tc.mode == MatchLocal:
		ok = strings.EqualFold(n.LocalName(), tc.name)
	default:
		ok = strings.EqualFold(n.Tag, tc.name)
	}
	if tc.negate {
		return !ok
	}
	return ok
}

func evalAttr(ac *attrCondition, n *dom.Node) (bool, error) {
	v, exists := n.Attributes.Get(ac.name, ac.mode)

	var ok bool
	switch ac.op {
	case OpExists:
		ok = exists
	case OpNotEqual:
		// An absent attribute is trivially not equal.
		ok = !exists || v != ac.value
	default:
		if !exists {
			ok = false
			break
		}
		switch ac.op {
		case OpEquals:
			ok = v == ac.value
		case OpContains:
			ok = strings.Contains(v, ac.value)
		case OpWord:
			for _, w := range strings.Fields(v) {
				if w == ac.value {
					ok = true
					break
				}
			}
		case OpPrefix:
			ok = strings.HasPrefix(v, ac.value)
		case OpSuffix:
			ok = strings.HasSuffix(v, ac.value)
		case OpDash:
			ok = v == ac.value || strings.HasPrefix(v, ac.value+"-")
		case OpRegex:
			m, err := regexp.MatchString(ac.value, v)
			if err != nil {
				return false, errors.Wrapf(err, "selector: bad pattern %q", ac.value)
			}
			ok = m
		case OpGTE:
			ok = v >= ac.value
		case OpLTE:
			ok = v <= ac.value
		}
	}
	if ac.negate {
		return !ok, nil
	}
	return ok, nil
}

func (s *Selector) evalFilter(fc *filterCondition, n *dom.Node) (bool, error) {
	switch fc.name {
	case "has":
		matches, err := fc.sub.MatchAll(n, QueryOptions{Recursive: true})
		if err != nil {
			return false, err
		}
		return len(matches) > 0, nil
	case "not":
		ok, err := fc.sub.Match(n)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
	return fc.fn(s.eng, n, fc.arg)
}
