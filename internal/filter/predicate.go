// internal/filter/predicate.go
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parcelforge/parcelforge/internal/types"
)

/*
 * Predicate rendering.
 *
 * Renders a canonical condition tree into a SQL WHERE fragment for the
 * external batch engine (DuckDB dialect). One recursive walk, the identical
 * grouping rule as internal/filter/explain.go: a multi-child non-root group
 * wraps in parentheses, root parentheses are elided.
 *
 * Escaping rules:
 *   - identifiers double-quoted, embedded double quotes doubled
 *   - string literals single-quoted, embedded single quotes doubled
 *   - like maps to ILIKE with %, _ and \ escaped, pattern wrapped in %...%
 * Raw user text never reaches the predicate unescaped.
 *
 * between renders as a parenthesized >=/<= conjunction but is one leaf
 * rendering unit: its internal AND never participates in group joining.
 */

// Predicate renders a canonical tree as a SQL WHERE fragment.
// Pure and total over canonical trees; call Canonicalize first.
func Predicate(canonical types.Node) string {
	return renderPredicate(canonical, true)
}

func renderPredicate(node types.Node, root bool) string {
	switch n := node.(type) {
	case *types.Condition:
		return conditionSQL(n)
	case *types.Group:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, renderPredicate(child, false))
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

// conditionSQL renders one leaf as an operator-specific fragment.
func conditionSQL(c *types.Condition) string {
	col := quoteIdent(c.Field)

	switch c.Operator {
	case types.OpEq:
		return col + " = " + sqlLiteral(c.Value)
	case types.OpNeq:
		return col + " != " + sqlLiteral(c.Value)
	case types.OpGt:
		return col + " > " + sqlLiteral(c.Value)
	case types.OpGte:
		return col + " >= " + sqlLiteral(c.Value)
	case types.OpLt:
		return col + " < " + sqlLiteral(c.Value)
	case types.OpLte:
		return col + " <= " + sqlLiteral(c.Value)
	case types.OpIn:
		items := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			items = append(items, sqlLiteral(v))
		}
		return col + " IN (" + strings.Join(items, ", ") + ")"
	case types.OpLike:
		pattern, _ := c.Value.(string)
		return col + " ILIKE " + sqlLiteral("%"+escapeLike(pattern)+"%") + ` ESCAPE '\'`
	case types.OpBetween:
		// One leaf unit: the internal conjunction is always parenthesized so
		// it never interacts with sibling joining.
		return "(" + col + " >= " + sqlLiteral(c.Values[0]) +
			" AND " + col + " <= " + sqlLiteral(c.Values[1]) + ")"
	default:
		return ""
	}
}

// quoteIdent double-quotes a column name, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlLiteral renders a scalar operand as a SQL literal with escaping.
func sqlLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
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
		// Unreachable for canonical trees (isScalar gates operands), kept as
		// a safe fallback: quote like a string.
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}

// escapeLike escapes LIKE/ILIKE metacharacters with backslash.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
