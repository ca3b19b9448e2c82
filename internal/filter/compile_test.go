package filter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/parcelforge/parcelforge/internal/types"
)

// Test SQL predicate rendering per operator
func TestCompile_Predicate(t *testing.T) {
	tests := []struct {
		name     string
		input    types.Node
		expected string
	}{
		{
			name:     "equality with string literal",
			input:    cond("status", types.OpEq, "ready"),
			expected: `"status" = 'ready'`,
		},
		{
			name:     "single quotes doubled in string literal",
			input:    cond("recipient", types.OpEq, "O'Brien"),
			expected: `"recipient" = 'O''Brien'`,
		},
		{
			name:     "double quotes doubled in identifier",
			input:    cond(`we"ird`, types.OpEq, 1),
			expected: `"we""ird" = 1`,
		},
		{
			name:     "numeric comparison",
			input:    cond("weight", types.OpGt, 2.5),
			expected: `"weight" > 2.5`,
		},
		{
			name:     "boolean literal",
			input:    cond("express", types.OpNeq, true),
			expected: `"express" != TRUE`,
		},
		{
			name:     "in list",
			input:    condList("carrier", types.OpIn, "ups", "fedex"),
			expected: `"carrier" IN ('ups', 'fedex')`,
		},
		{
			name:     "like maps to ILIKE with wrapped pattern",
			input:    cond("city", types.OpLike, "york"),
			expected: `"city" ILIKE '%york%' ESCAPE '\'`,
		},
		{
			name:     "like metacharacters escaped",
			input:    cond("promo", types.OpLike, `50%_off\`),
			expected: `"promo" ILIKE '%50\%\_off\\%' ESCAPE '\'`,
		},
		{
			name:     "between renders as parenthesized conjunction",
			input:    condList("weight", types.OpBetween, 1, 5),
			expected: `("weight" >= 1 AND "weight" <= 5)`,
		},
		{
			name: "root group parentheses elided",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				cond("b", types.OpEq, 2),
			}},
			expected: `"a" = 1 AND "b" = 2`,
		},
		{
			name: "nested OR group parenthesized",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				&types.Group{Logic: types.LogicOr, Children: []types.Node{
					cond("carrier", types.OpEq, "ups"),
					cond("carrier", types.OpEq, "fedex"),
				}},
				cond("status", types.OpEq, "ready"),
			}},
			expected: `("carrier" = 'ups' OR "carrier" = 'fedex') AND "status" = 'ready'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := Compile(tt.input)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if compiled.Predicate != tt.expected {
				t.Errorf("Predicate = %s, expected %s", compiled.Predicate, tt.expected)
			}
		})
	}
}

// Test explanation rendering mirrors the predicate structure
func TestCompile_Explanation(t *testing.T) {
	tests := []struct {
		name     string
		input    types.Node
		expected string
	}{
		{
			name:     "single condition",
			input:    cond("status", types.OpEq, "ready"),
			expected: "Filter: status equals ready.",
		},
		{
			name:     "between phrasing",
			input:    condList("weight", types.OpBetween, 1, 5),
			expected: "Filter: weight between 1 and 5.",
		},
		{
			name:     "in phrasing",
			input:    condList("carrier", types.OpIn, "ups", "fedex"),
			expected: "Filter: carrier in [ups, fedex].",
		},
		{
			name:     "like phrasing",
			input:    cond("city", types.OpLike, "york"),
			expected: "Filter: city contains 'york'.",
		},
		{
			name: "nested OR keeps its grouping",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				&types.Group{Logic: types.LogicOr, Children: []types.Node{
					cond("carrier", types.OpEq, "ups"),
					cond("carrier", types.OpEq, "fedex"),
				}},
				cond("status", types.OpEq, "ready"),
			}},
			expected: "Filter: (carrier equals ups OR carrier equals fedex) AND status equals ready.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := Compile(tt.input)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if compiled.Explanation != tt.expected {
				t.Errorf("Explanation = %s, expected %s", compiled.Explanation, tt.expected)
			}
		})
	}
}

// Test both outputs agree on boolean structure
func TestCompile_StructuralParity(t *testing.T) {
	input := &types.Group{Logic: types.LogicOr, Children: []types.Node{
		&types.Group{Logic: types.LogicAnd, Children: []types.Node{
			cond("status", types.OpEq, "ready"),
			cond("weight", types.OpLte, 30),
		}},
		&types.Group{Logic: types.LogicAnd, Children: []types.Node{
			cond("express", types.OpEq, true),
			cond("carrier", types.OpEq, "dhl"),
		}},
	}}

	compiled, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	for _, token := range []string{" AND ", " OR ", "(", ")"} {
		p := strings.Count(compiled.Predicate, token)
		e := strings.Count(compiled.Explanation, token)
		if p != e {
			t.Errorf("token %q count: predicate %d, explanation %d", token, p, e)
		}
	}

	if strings.Contains(compiled.Explanation, ";") {
		t.Error("explanation must never flat-join clauses with semicolons")
	}
}

// Test metadata fields
func TestCompile_Metadata(t *testing.T) {
	input := &types.Group{Logic: types.LogicAnd, Children: []types.Node{
		cond("weight", types.OpGt, 1),
		&types.Group{Logic: types.LogicOr, Children: []types.Node{
			cond("carrier", types.OpEq, "ups"),
			cond("express", types.OpEq, true),
		}},
		cond("carrier", types.OpNeq, "dhl"),
	}}

	compiled, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	expectedCols := []string{"carrier", "express", "weight"}
	if !reflect.DeepEqual(compiled.Columns, expectedCols) {
		t.Errorf("Columns = %v, expected %v", compiled.Columns, expectedCols)
	}
	if compiled.Conditions != 4 {
		t.Errorf("Conditions = %d, expected 4", compiled.Conditions)
	}
}

// Test compile failures surface canonicalization errors and emit nothing
func TestCompile_Errors(t *testing.T) {
	compiled, err := Compile(&types.Group{Logic: types.LogicAnd})
	if !errors.Is(err, types.ErrEmptyFilter) {
		t.Fatalf("Compile() error = %v, wantErr %v", err, types.ErrEmptyFilter)
	}
	if compiled != nil {
		t.Error("Compile() must not return partial output on error")
	}
}
