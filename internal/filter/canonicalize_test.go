package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/parcelforge/parcelforge/internal/types"
)

func cond(field string, op types.Operator, value any) *types.Condition {
	return &types.Condition{Field: field, Operator: op, Value: value}
}

func condList(field string, op types.Operator, values ...any) *types.Condition {
	return &types.Condition{Field: field, Operator: op, Values: values}
}

// Test structural normalization
func TestCanonicalize_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		input    types.Node
		expected types.Node
	}{
		{
			name: "singleton group flattens to its child",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("status", types.OpEq, "ready"),
			}},
			expected: cond("status", types.OpEq, "ready"),
		},
		{
			name: "nested singleton groups flatten transitively",
			input: &types.Group{Logic: types.LogicOr, Children: []types.Node{
				&types.Group{Logic: types.LogicAnd, Children: []types.Node{
					cond("weight", types.OpGt, 10.0),
				}},
			}},
			expected: cond("weight", types.OpGt, 10.0),
		},
		{
			name: "same-logic subgroup merges into parent",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				&types.Group{Logic: types.LogicAnd, Children: []types.Node{
					cond("b", types.OpEq, 2),
					cond("c", types.OpEq, 3),
				}},
			}},
			expected: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				cond("b", types.OpEq, 2),
				cond("c", types.OpEq, 3),
			}},
		},
		{
			name: "mixed-logic subgroup stays nested",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				&types.Group{Logic: types.LogicOr, Children: []types.Node{
					cond("b", types.OpEq, 2),
					cond("c", types.OpEq, 3),
				}},
			}},
			expected: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				&types.Group{Logic: types.LogicOr, Children: []types.Node{
					cond("b", types.OpEq, 2),
					cond("c", types.OpEq, 3),
				}},
			}},
		},
		{
			name: "child order preserved",
			input: &types.Group{Logic: types.LogicOr, Children: []types.Node{
				cond("z", types.OpEq, 1),
				cond("a", types.OpEq, 2),
			}},
			expected: &types.Group{Logic: types.LogicOr, Children: []types.Node{
				cond("z", types.OpEq, 1),
				cond("a", types.OpEq, 2),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if err != nil {
				t.Fatalf("Canonicalize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Canonicalize() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

// Test validation failures
func TestCanonicalize_Errors(t *testing.T) {
	deep := func(levels int) types.Node {
		node := types.Node(&types.Group{Logic: types.LogicAnd, Children: []types.Node{
			cond("a", types.OpEq, 1),
			cond("b", types.OpEq, 2),
		}})
		for i := 0; i < levels; i++ {
			logic := types.LogicOr
			if i%2 == 1 {
				logic = types.LogicAnd
			}
			node = &types.Group{Logic: logic, Children: []types.Node{
				node,
				cond("c", types.OpEq, i),
			}}
		}
		return node
	}

	manyConds := make([]types.Node, 0, types.MaxConditions+1)
	for i := 0; i <= types.MaxConditions; i++ {
		manyConds = append(manyConds, cond("f", types.OpEq, i))
	}

	manyInValues := make([]any, 0, types.MaxInValues+1)
	for i := 0; i <= types.MaxInValues; i++ {
		manyInValues = append(manyInValues, i)
	}

	tests := []struct {
		name    string
		input   types.Node
		wantErr error
	}{
		{
			name:    "nil root",
			input:   nil,
			wantErr: types.ErrEmptyFilter,
		},
		{
			name:    "empty root group",
			input:   &types.Group{Logic: types.LogicAnd},
			wantErr: types.ErrEmptyFilter,
		},
		{
			name: "empty nested group",
			input: &types.Group{Logic: types.LogicAnd, Children: []types.Node{
				cond("a", types.OpEq, 1),
				&types.Group{Logic: types.LogicOr},
			}},
			wantErr: types.ErrEmptyGroup,
		},
		{
			name:    "unknown operator",
			input:   cond("a", types.OpUnspecified, 1),
			wantErr: types.ErrUnknownOperator,
		},
		{
			name:    "condition without field",
			input:   cond("", types.OpEq, 1),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "scalar operator with list operand",
			input:   condList("a", types.OpEq, 1, 2),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "like with non-string value",
			input:   cond("a", types.OpLike, 42),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "in with no values",
			input:   condList("a", types.OpIn),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "between with wrong arity",
			input:   condList("a", types.OpBetween, 1),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "between with non-scalar bound",
			input:   condList("a", types.OpBetween, 1, []any{2}),
			wantErr: types.ErrMalformedCondition,
		},
		{
			name: "group with invalid logic",
			input: &types.Group{Logic: "XOR", Children: []types.Node{
				cond("a", types.OpEq, 1),
				cond("b", types.OpEq, 2),
			}},
			wantErr: types.ErrMalformedCondition,
		},
		{
			name:    "nesting beyond the depth limit",
			input:   deep(types.MaxNestingDepth + 1),
			wantErr: types.ErrFilterTooDeep,
		},
		{
			name:    "too many conditions",
			input:   &types.Group{Logic: types.LogicAnd, Children: manyConds},
			wantErr: types.ErrTooManyConditions,
		},
		{
			name:    "too many in values",
			input:   condList("a", types.OpIn, manyInValues...),
			wantErr: types.ErrTooManyInValues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Canonicalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Test nesting at the depth limit is accepted
func TestCanonicalize_DepthLimitBoundary(t *testing.T) {
	node := types.Node(&types.Group{Logic: types.LogicAnd, Children: []types.Node{
		cond("a", types.OpEq, 1),
		cond("b", types.OpEq, 2),
	}})
	for i := 1; i < types.MaxNestingDepth; i++ {
		logic := types.LogicOr
		if i%2 == 1 {
			logic = types.LogicAnd
		}
		node = &types.Group{Logic: logic, Children: []types.Node{
			node,
			cond("c", types.OpEq, i),
		}}
	}

	if _, err := Canonicalize(node); err != nil {
		t.Fatalf("Canonicalize() at depth limit error = %v", err)
	}
}

// buildTree generates a deterministic tree from a small parameter space for
// property testing.
func buildTree(depth, width int, orLogic bool) types.Node {
	if depth <= 0 {
		return cond("field", types.OpEq, depth*31+width)
	}

	logic := types.LogicAnd
	if orLogic {
		logic = types.LogicOr
	}

	children := make([]types.Node, 0, width)
	for i := 0; i < width; i++ {
		children = append(children, buildTree(depth-1, width, i%2 == 0))
	}
	return &types.Group{Logic: logic, Children: children}
}

// hasRedundantStructure reports singleton groups or same-logic direct nesting.
func hasRedundantStructure(node types.Node) bool {
	g, ok := node.(*types.Group)
	if !ok {
		return false
	}
	if len(g.Children) == 1 {
		return true
	}
	for _, child := range g.Children {
		if sub, ok := child.(*types.Group); ok && sub.Logic == g.Logic {
			return true
		}
		if hasRedundantStructure(child) {
			return true
		}
	}
	return false
}

func TestCanonicalize_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("canonicalization is idempotent", prop.ForAll(
		func(depth int, width int, orLogic bool) bool {
			once, err := Canonicalize(buildTree(depth, width, orLogic))
			if err != nil {
				return true
			}
			twice, err := Canonicalize(once)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(once, twice)
		},
		gen.IntRange(0, 3),
		gen.IntRange(1, 4),
		gen.Bool(),
	))

	properties.Property("canonical trees have no redundant structure", prop.ForAll(
		func(depth int, width int, orLogic bool) bool {
			canonical, err := Canonicalize(buildTree(depth, width, orLogic))
			if err != nil {
				return true
			}
			return !hasRedundantStructure(canonical)
		},
		gen.IntRange(0, 3),
		gen.IntRange(1, 4),
		gen.Bool(),
	))

	properties.Property("condition count is preserved", prop.ForAll(
		func(depth int, width int, orLogic bool) bool {
			input := buildTree(depth, width, orLogic)
			before := countConditions(input)
			canonical, err := Canonicalize(input)
			if err != nil {
				return true
			}
			return countConditions(canonical) == before
		},
		gen.IntRange(0, 3),
		gen.IntRange(1, 4),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
