package types

import (
	"encoding/json"
	"errors"
	"testing"
)

// Test node decoding dispatches on shape
func TestDecodeNode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		check   func(t *testing.T, node Node)
	}{
		{
			name: "condition",
			data: `{"field": "status", "op": "eq", "value": "ready"}`,
			check: func(t *testing.T, node Node) {
				c, ok := node.(*Condition)
				if !ok {
					t.Fatalf("expected *Condition, got %T", node)
				}
				if c.Field != "status" || c.Operator != OpEq || c.Value != "ready" {
					t.Errorf("unexpected condition: %+v", c)
				}
			},
		},
		{
			name: "condition with values list",
			data: `{"field": "carrier", "op": "in", "values": ["ups", "fedex"]}`,
			check: func(t *testing.T, node Node) {
				c, ok := node.(*Condition)
				if !ok {
					t.Fatalf("expected *Condition, got %T", node)
				}
				if c.Operator != OpIn || len(c.Values) != 2 {
					t.Errorf("unexpected condition: %+v", c)
				}
			},
		},
		{
			name: "group with nested children",
			data: `{"logic": "AND", "children": [
				{"field": "a", "op": "eq", "value": 1},
				{"logic": "OR", "children": [
					{"field": "b", "op": "gt", "value": 2},
					{"field": "c", "op": "lt", "value": 3}
				]}
			]}`,
			check: func(t *testing.T, node Node) {
				g, ok := node.(*Group)
				if !ok {
					t.Fatalf("expected *Group, got %T", node)
				}
				if g.Logic != LogicAnd || len(g.Children) != 2 {
					t.Fatalf("unexpected group: %+v", g)
				}
				sub, ok := g.Children[1].(*Group)
				if !ok || sub.Logic != LogicOr || len(sub.Children) != 2 {
					t.Errorf("unexpected nested group: %+v", g.Children[1])
				}
			},
		},
		{
			name:    "unknown operator rejected",
			data:    `{"field": "a", "op": "regex", "value": "x"}`,
			wantErr: ErrUnknownOperator,
		},
		{
			name:    "invalid group logic rejected",
			data:    `{"logic": "XOR", "children": []}`,
			wantErr: ErrMalformedCondition,
		},
		{
			name:    "shapeless object rejected",
			data:    `{"foo": "bar"}`,
			wantErr: ErrMalformedCondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := DecodeNode([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeNode() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeNode() error = %v", err)
			}
			tt.check(t, node)
		})
	}
}

// Test operator name round-trip
func TestOperator_Names(t *testing.T) {
	for op, name := range map[Operator]string{
		OpEq: "eq", OpNeq: "neq", OpGt: "gt", OpGte: "gte",
		OpLt: "lt", OpLte: "lte", OpIn: "in", OpLike: "like", OpBetween: "between",
	} {
		if op.String() != name {
			t.Errorf("Operator(%d).String() = %s, expected %s", op, op.String(), name)
		}
		parsed, err := ParseOperator(name)
		if err != nil {
			t.Errorf("ParseOperator(%s) error = %v", name, err)
		}
		if parsed != op {
			t.Errorf("ParseOperator(%s) = %v, expected %v", name, parsed, op)
		}
	}

	if _, err := ParseOperator("regex"); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("ParseOperator(regex) error = %v, want ErrUnknownOperator", err)
	}
}

// Test operator JSON encoding uses canonical names
func TestOperator_JSON(t *testing.T) {
	data, err := json.Marshal(Condition{Field: "a", Operator: OpGte, Value: 5})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	expected := `{"field":"a","op":"gte","value":5}`
	if string(data) != expected {
		t.Errorf("Marshal = %s, expected %s", data, expected)
	}
}
