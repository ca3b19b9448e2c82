// internal/types/filter.go
package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Domain types for filter condition trees.
 *
 * Provides the Node sum type consumed by internal/filter for canonicalization,
 * predicate compilation, and explanation. These types are wire-format
 * agnostic - the JSON codec below exists for the CLI and tests, callers may
 * construct trees directly.
 *
 * Key types:
 *   - Node: closed sum over *Condition and *Group
 *   - Condition: single comparison leaf (field, operator, value or values)
 *   - Group: AND/OR combinator over an ordered child sequence
 *
 * Why a closed sum: canonicalization and both renderers switch exhaustively
 * over the two variants. An unexported marker method prevents a third node
 * shape from passing through unhandled.
 */

// Logic is the boolean combinator of a Group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Operator enumerates the supported leaf comparison operators.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpIn
	OpLike
	OpBetween
)

var operatorNames = map[Operator]string{
	OpEq:      "eq",
	OpNeq:     "neq",
	OpGt:      "gt",
	OpGte:     "gte",
	OpLt:      "lt",
	OpLte:     "lte",
	OpIn:      "in",
	OpLike:    "like",
	OpBetween: "between",
}

// String returns the canonical lowercase operator name.
func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return "unspecified"
}

// ParseOperator converts a lowercase operator name to its enum value.
// Rejects unknown names to keep the operator set closed at the boundary.
func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if name == s {
			return op, nil
		}
	}
	return OpUnspecified, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// MarshalJSON encodes the operator as its canonical name.
func (op Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// UnmarshalJSON decodes an operator from its canonical name.
func (op *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// Node is a condition-tree node: either *Condition or *Group.
type Node interface {
	node()
}

// Condition is a leaf comparison. Value holds the scalar operand for unary
// comparison operators; Values holds the ordered operand list for in (one or
// more) and between (exactly two). Immutable once constructed.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"op"`
	Value    any      `json:"value,omitempty"`
	Values   []any    `json:"values,omitempty"`
}

// Group combines an ordered, non-empty child sequence with AND/OR logic.
type Group struct {
	Logic    Logic  `json:"logic"`
	Children []Node `json:"children"`
}

func (*Condition) node() {}
func (*Group) node()     {}

// UnmarshalJSON decodes a group and its children. Children are dispatched by
// shape: objects carrying "logic" decode as nested groups, objects carrying
// "field" decode as conditions.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		Logic    Logic             `json:"logic"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Logic != LogicAnd && raw.Logic != LogicOr {
		return fmt.Errorf("%w: group logic %q", ErrMalformedCondition, raw.Logic)
	}

	children := make([]Node, 0, len(raw.Children))
	for _, child := range raw.Children {
		node, err := DecodeNode(child)
		if err != nil {
			return err
		}
		children = append(children, node)
	}

	g.Logic = raw.Logic
	g.Children = children
	return nil
}

// DecodeNode decodes a single tree node from JSON, dispatching on shape.
func DecodeNode(data []byte) (Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if _, ok := probe["logic"]; ok {
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return &g, nil
	}
	if _, ok := probe["field"]; ok {
		var c Condition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, fmt.Errorf("%w: node is neither condition nor group", ErrMalformedCondition)
}
