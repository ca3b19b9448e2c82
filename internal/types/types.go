// Package types provides domain models shared across parcelforge components.
//
// Zero-dependency design: filter.go and errors.go use only encoding/json so
// the condition-tree types can be embedded anywhere without pulling in the
// compiler or validator. ID utilities in ids.go import uuid but are isolated
// for selective inclusion.
package types

// Record is a rendered mapping output: the nested document produced by
// applying a mapping template to one source row. Plain map form keeps the
// validator schema-agnostic; no parsing or normalization happens here.
type Record = map[string]any

// Structural limits enforced during canonicalization to keep compiled
// predicates bounded and explanations readable.
const (
	// MaxNestingDepth caps group nesting. Four levels covers every filter
	// observed in practice; deeper trees are almost always intent-parser bugs.
	MaxNestingDepth = 4

	// MaxConditions caps total leaves per tree so compiled predicates stay
	// within query-planner comfort.
	MaxConditions = 50

	// MaxInValues caps IN operand lists to bound predicate length.
	MaxInValues = 100
)

// Attempt ceiling bounds for the self-correction loop. The ceiling is
// caller-configurable within [MinAttemptCeiling, MaxAttemptCeiling].
const (
	MinAttemptCeiling     = 1
	MaxAttemptCeiling     = 5
	DefaultAttemptCeiling = 3
)
