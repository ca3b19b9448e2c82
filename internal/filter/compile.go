// internal/filter/compile.go
package filter

import (
	"sort"

	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Filter compilation.
 *
 * Compiles a condition tree to a CompiledFilter: one canonicalization pass,
 * then the predicate renderer and the explainer walk the same canonical tree.
 * No second accumulator exists anywhere in this package; structural parity
 * between the two outputs is a consequence of the shared walk, not a
 * convention to maintain.
 *
 * All structural validation happens inside Canonicalize, so a CompiledFilter
 * is only ever returned whole: callers never see a predicate without its
 * matching explanation.
 */

// CompiledFilter is the compiler output handed to the external batch engine.
type CompiledFilter struct {
	Predicate   string   `json:"predicate"`   // SQL WHERE fragment, passed to the engine verbatim
	Explanation string   `json:"explanation"` // human-readable mirror of the predicate structure
	Columns     []string `json:"columns"`     // distinct referenced columns, sorted
	Conditions  int      `json:"conditions"`  // leaf condition count
}

// Compile canonicalizes a condition tree and renders both outputs.
// Returns ErrEmptyFilter, ErrEmptyGroup, or ErrMalformedCondition (wrapped)
// before emitting any string.
func Compile(root types.Node) (*CompiledFilter, error) {
	canonical, err := Canonicalize(root)
	if err != nil {
		return nil, err
	}

	return &CompiledFilter{
		Predicate:   Predicate(canonical),
		Explanation: Explain(canonical),
		Columns:     columnsUsed(canonical),
		Conditions:  countConditions(canonical),
	}, nil
}

// columnsUsed collects distinct referenced column names, sorted for
// deterministic output.
func columnsUsed(node types.Node) []string {
	seen := map[string]struct{}{}
	collectColumns(node, seen)

	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func collectColumns(node types.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *types.Condition:
		seen[n.Field] = struct{}{}
	case *types.Group:
		for _, child := range n.Children {
			collectColumns(child, seen)
		}
	}
}
