// internal/filter/explain.go
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Structural explanation rendering.
 *
 * Mirrors internal/filter/predicate.go over the same canonical tree: one
 * recursive walk, same grouping rule (parenthesize multi-child non-root
 * groups). Because both renderers share the canonical tree and the wrapping
 * rule, the explanation cannot disagree with the predicate about which
 * clauses are ANDed vs ORed. This replaces an accumulator-based explainer
 * that flat-joined clauses with semicolons and silently dropped OR structure.
 */

// Explain renders a canonical tree as a human-readable sentence.
// The root group's parentheses are stripped and the result wrapped as
// "Filter: ….". Pure and total over canonical trees.
func Explain(canonical types.Node) string {
	body := renderExplain(canonical, true)
	if body == "" {
		return "No filter conditions."
	}
	return "Filter: " + body + "."
}

func renderExplain(node types.Node, root bool) string {
	switch n := node.(type) {
	case *types.Condition:
		return conditionClause(n)
	case *types.Group:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, renderExplain(child, false))
		}
		joined := strings.Join(parts, " "+string(n.Logic)+" ")
		if !root && len(parts) > 1 {
			return "(" + joined + ")"
		}
		return joined
	default:
		return ""
	}
}

// conditionClause renders one leaf as a readable phrase.
func conditionClause(c *types.Condition) string {
	switch c.Operator {
	case types.OpEq:
		return c.Field + " equals " + explainValue(c.Value)
	case types.OpNeq:
		return c.Field + " not equal to " + explainValue(c.Value)
	case types.OpGt:
		return c.Field + " greater than " + explainValue(c.Value)
	case types.OpGte:
		return c.Field + " at least " + explainValue(c.Value)
	case types.OpLt:
		return c.Field + " less than " + explainValue(c.Value)
	case types.OpLte:
		return c.Field + " at most " + explainValue(c.Value)
	case types.OpIn:
		items := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			items = append(items, explainValue(v))
		}
		return c.Field + " in [" + strings.Join(items, ", ") + "]"
	case types.OpLike:
		pattern, _ := c.Value.(string)
		return c.Field + " contains '" + pattern + "'"
	case types.OpBetween:
		return c.Field + " between " + explainValue(c.Values[0]) +
			" and " + explainValue(c.Values[1])
	default:
		return c.Field + " " + c.Operator.String()
	}
}

// explainValue formats an operand for prose. Strings stay unquoted to match
// the conversational register of the surrounding sentence.
func explainValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
