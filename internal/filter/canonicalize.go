// internal/filter/canonicalize.go
package filter

import (
	"fmt"

	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Condition tree canonicalization.
 *
 * Normalizes an arbitrary input tree into the single canonical form consumed
 * by both the predicate renderer and the explainer:
 *   1. Singleton groups are flattened to their only child
 *   2. Directly-nested groups sharing the parent's logic are merged
 *   3. Mixed-logic nesting stays explicit (never merged into the parent)
 *
 * Child order is preserved. An earlier revision sorted commutative children
 * for byte-determinism, which reordered clauses away from the user's stated
 * intent; explanations read better in author order and determinism holds
 * regardless because canonicalization is a pure function of the input.
 *
 * Validation happens here, before any string is emitted: operator arity,
 * scalar-vs-list operands, empty groups, and structural limits (nesting
 * depth, condition count, IN cardinality) all fail with sentinel errors so
 * partial predicate output is never returned.
 *
 * Canonicalize is idempotent: a canonical tree passes through structurally
 * unchanged. Both renderers rely on this as the single source of truth for
 * boolean grouping.
 */

// Canonicalize validates and normalizes a condition tree.
// Returns ErrEmptyFilter for nil or childless roots, ErrEmptyGroup for empty
// nested groups, and ErrMalformedCondition (wrapped with field context) for
// operator/operand mismatches.
func Canonicalize(root types.Node) (types.Node, error) {
	if root == nil {
		return nil, types.ErrEmptyFilter
	}

	canonical, err := canonicalizeNode(root, 0)
	if err != nil {
		return nil, err
	}

	if countConditions(canonical) > types.MaxConditions {
		return nil, types.ErrTooManyConditions
	}

	return canonical, nil
}

// canonicalizeNode recursively normalizes one node. depth counts group
// nesting levels from the root (root group = 0).
func canonicalizeNode(node types.Node, depth int) (types.Node, error) {
	switch n := node.(type) {
	case *types.Condition:
		if err := validateCondition(n); err != nil {
			return nil, err
		}
		return n, nil

	case *types.Group:
		if depth > types.MaxNestingDepth {
			return nil, types.ErrFilterTooDeep
		}
		if n.Logic != types.LogicAnd && n.Logic != types.LogicOr {
			return nil, fmt.Errorf("%w: group logic %q", types.ErrMalformedCondition, n.Logic)
		}
		if len(n.Children) == 0 {
			if depth == 0 {
				return nil, types.ErrEmptyFilter
			}
			return nil, types.ErrEmptyGroup
		}

		children := make([]types.Node, 0, len(n.Children))
		for _, child := range n.Children {
			canonical, err := canonicalizeNode(child, depth+1)
			if err != nil {
				return nil, err
			}
			// Merge same-logic subgroups in place. The subgroup is already
			// canonical, so its own children cannot contain a further
			// same-logic group and one splice level suffices.
			if sub, ok := canonical.(*types.Group); ok && sub.Logic == n.Logic {
				children = append(children, sub.Children...)
				continue
			}
			children = append(children, canonical)
		}

		// Singleton groups are semantically their only child.
		if len(children) == 1 {
			return children[0], nil
		}

		return &types.Group{Logic: n.Logic, Children: children}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected node type %T", types.ErrMalformedCondition, node)
	}
}

// validateCondition enforces operator arity and operand shape on a leaf.
func validateCondition(c *types.Condition) error {
	if c.Field == "" {
		return fmt.Errorf("%w: condition has no field", types.ErrMalformedCondition)
	}

	switch c.Operator {
	case types.OpEq, types.OpNeq, types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		if len(c.Values) != 0 {
			return fmt.Errorf("%w: %s on %q takes a scalar value, not a list",
				types.ErrMalformedCondition, c.Operator, c.Field)
		}
		if !isScalar(c.Value) {
			return fmt.Errorf("%w: %s on %q requires a scalar value",
				types.ErrMalformedCondition, c.Operator, c.Field)
		}

	case types.OpLike:
		if len(c.Values) != 0 {
			return fmt.Errorf("%w: like on %q takes a scalar value, not a list",
				types.ErrMalformedCondition, c.Field)
		}
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: like on %q requires a string value",
				types.ErrMalformedCondition, c.Field)
		}

	case types.OpIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: in on %q has no values",
				types.ErrMalformedCondition, c.Field)
		}
		if len(c.Values) > types.MaxInValues {
			return types.ErrTooManyInValues
		}
		for _, v := range c.Values {
			if !isScalar(v) {
				return fmt.Errorf("%w: in on %q requires scalar values",
					types.ErrMalformedCondition, c.Field)
			}
		}

	case types.OpBetween:
		if len(c.Values) != 2 {
			return fmt.Errorf("%w: between on %q requires exactly 2 values, got %d",
				types.ErrMalformedCondition, c.Field, len(c.Values))
		}
		for _, v := range c.Values {
			if !isScalar(v) {
				return fmt.Errorf("%w: between on %q requires scalar bounds",
					types.ErrMalformedCondition, c.Field)
			}
		}

	default:
		return fmt.Errorf("%w: %q on %q", types.ErrUnknownOperator, c.Operator, c.Field)
	}

	return nil
}

// isScalar reports whether v is a comparable leaf operand. Covers the value
// kinds produced by JSON decoding plus native int types from direct callers.
func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

// countConditions returns the number of leaves reachable from node.
func countConditions(node types.Node) int {
	switch n := node.(type) {
	case *types.Condition:
		return 1
	case *types.Group:
		total := 0
		for _, child := range n.Children {
			total += countConditions(child)
		}
		return total
	default:
		return 0
	}
}
