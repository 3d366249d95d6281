package selector

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/domquery/domquery/dom"
)

// defaultFilters returns the built-in pseudo-class registry. All
// positional filters are 0-indexed: :nth-child(0) is the first child.
func defaultFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		// Positional.
		"nth-child":        filterNthChild,
		"nth-last-child":   filterNthLastChild,
		"nth-of-type":      filterNthOfType,
		"nth-last-of-type": filterNthLastOfType,
		"first-child":      filterFirstChild,
		"last-child":       filterLastChild,
		"only-child":       filterOnlyChild,
		"first-of-type":    filterFirstOfType,
		"last-of-type":     filterLastOfType,
		"only-of-type":     filterOnlyOfType,
		"gt":               filterGt,
		"lt":               filterLt,
		"odd":              filterOdd,
		"even":             filterEven,
		"every":            filterEvery,

		// Content.
		"empty":     filterEmpty,
		"not-empty": filterNotEmpty,
		"has-text":  filterHasText,
		"no-text":   filterNoText,
		"contains":  filterContains,
		"lang":      filterLang,

		// Structural. :has and :not are dispatched on their
		// precompiled sub-selector; the entries exist so the compile
		// -time registry check accepts them.
		"root": filterRoot,
		"has":  nil,
		"not":  nil,

		// Node type.
		"element": filterElement,
		"text":    filterText,
		"comment": filterComment,
	}
}

func filterArg(name, arg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.Errorf("selector: :%s wants an integer argument, got %q", name, arg)
	}
	return v, nil
}

// elementCount returns how many element siblings n has, n included.
func elementCount(n *dom.Node) int {
	if n.Parent == nil {
		return 1
	}
	return len(n.Parent.ElementChildren())
}

func filterNthChild(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("nth-child", arg)
	if err != nil {
		return false, err
	}
	return n.IndexInParent(true) == k, nil
}

func filterNthLastChild(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("nth-last-child", arg)
	if err != nil {
		return false, err
	}
	idx := n.IndexInParent(true)
	if idx < 0 {
		return false, nil
	}
	return elementCount(n)-1-idx == k, nil
}

func filterNthOfType(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("nth-of-type", arg)
	if err != nil {
		return false, err
	}
	return n.TypeIndex() == k, nil
}

func filterNthLastOfType(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("nth-last-of-type", arg)
	if err != nil {
		return false, err
	}
	idx := n.TypeIndex()
	if idx < 0 {
		return false, nil
	}
	return n.TypeCount()-1-idx == k, nil
}

func filterFirstChild(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.IndexInParent(true) == 0, nil
}

func filterLastChild(e *Engine, n *dom.Node, arg string) (bool, error) {
	idx := n.IndexInParent(true)
	return idx >= 0 && idx == elementCount(n)-1, nil
}

func filterOnlyChild(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.IndexInParent(true) == 0 && elementCount(n) == 1, nil
}

func filterFirstOfType(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.TypeIndex() == 0, nil
}

func filterLastOfType(e *Engine, n *dom.Node, arg string) (bool, error) {
	idx := n.TypeIndex()
	return idx >= 0 && idx == n.TypeCount()-1, nil
}

func filterOnlyOfType(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.TypeIndex() == 0 && n.TypeCount() == 1, nil
}

func filterGt(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("gt", arg)
	if err != nil {
		return false, err
	}
	idx := n.IndexInParent(true)
	return idx >= 0 && idx > k, nil
}

func filterLt(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("lt", arg)
	if err != nil {
		return false, err
	}
	idx := n.IndexInParent(true)
	return idx >= 0 && idx < k, nil
}

func filterOdd(e *Engine, n *dom.Node, arg string) (bool, error) {
	idx := n.IndexInParent(true)
	return idx >= 0 && idx%2 == 1, nil
}

func filterEven(e *Engine, n *dom.Node, arg string) (bool, error) {
	idx := n.IndexInParent(true)
	return idx >= 0 && idx%2 == 0, nil
}

func filterEvery(e *Engine, n *dom.Node, arg string) (bool, error) {
	k, err := filterArg("every", arg)
	if err != nil {
		return false, err
	}
	if k <= 0 {
		return false, errors.Errorf("selector: :every wants a positive argument, got %d", k)
	}
	idx := n.IndexInParent(true)
	return idx >= 0 && idx%k == 0, nil
}

func filterEmpty(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.NumChildren() == 0 && n.Data == "", nil
}

func filterNotEmpty(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.NumChildren() > 0 || n.Data != "", nil
}

func filterHasText(e *Engine, n *dom.Node, arg string) (bool, error) {
	return strings.TrimSpace(n.Text()) != "", nil
}

func filterNoText(e *Engine, n *dom.Node, arg string) (bool, error) {
	return strings.TrimSpace(n.Text()) == "", nil
}

func filterContains(e *Engine, n *dom.Node, arg string) (bool, error) {
	return strings.Contains(n.Text(), unquote(arg)), nil
}

// filterLang matches the nearest lang attribute on the node or an
// ancestor, exactly or as a primary subtag ("en" matches "en-US").
func filterLang(e *Engine, n *dom.Node, arg string) (bool, error) {
	want := unquote(arg)
	for p := n; p != nil; p = p.Parent {
		if p.Attributes == nil {
			continue
		}
		lang, ok := p.Attributes.GetTotal("lang")
		if !ok {
			continue
		}
		return strings.EqualFold(lang, want) ||
			strings.HasPrefix(strings.ToLower(lang), strings.ToLower(want)+"-"), nil
	}
	return false, nil
}

func filterRoot(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.Parent == nil || n.Parent.Type == dom.RootNode, nil
}

func filterElement(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.Type == dom.ElementNode, nil
}

func filterText(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.Type == dom.TextNode, nil
}

func filterComment(e *Engine, n *dom.Node, arg string) (bool, error) {
	return n.Type == dom.CommentNode, nil
}
