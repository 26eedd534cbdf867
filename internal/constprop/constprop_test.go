package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lustre/internal/ast"
	"lustre/internal/constprop"
	"lustre/internal/diag"
	"lustre/internal/ident"
	"lustre/internal/types"
	"lustre/internal/values"
)

func id(name string) ident.Ident { return ident.New(name, ident.Position{Line: 1, Column: 1}) }

func litInt(v int64) ast.Expr   { return &ast.LitExpr{Value: values.Int{V: v}} }
func litBool(v bool) ast.Expr   { return &ast.LitExpr{Value: values.Bool{V: v}} }
func varE(name string) ast.Expr { return &ast.VarExpr{Name: id(name)} }

func TestPropagateFoldsPureArithmetic(t *testing.T) {
	n := ast.Node{
		Name:    id("Pure"),
		Outputs: []ast.Param{{Name: id("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("out"), Expr: &ast.BinOpExpr{
				Lhs: litInt(2),
				Op:  values.Add,
				Rhs: &ast.BinOpExpr{Lhs: litInt(3), Op: values.Mult, Rhs: litInt(4)},
			}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	result := constprop.Propagate(a)

	folded := result.Ast.Nodes[0].Equations[0].Expr.(*ast.LitExpr)
	assert.Equal(t, values.Int{V: 14}, folded.Value)
	require.Len(t, result.Hints, 1)
	assert.Equal(t, diag.ValueHint, result.Hints[0].Kind)
	assert.Equal(t, " >> 14", result.Hints[0].Label)
}

func TestPropagateLeavesTemporalExpressionsUnfolded(t *testing.T) {
	n := ast.Node{
		Name:    id("Stateful"),
		Outputs: []ast.Param{{Name: id("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("out"), Expr: &ast.BinOpExpr{
				Lhs: litInt(0),
				Op:  values.Arrow,
				Rhs: &ast.UnaryOpExpr{Op: values.Pre, Rhs: varE("out")},
			}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	result := constprop.Propagate(a)

	_, isLit := result.Ast.Nodes[0].Equations[0].Expr.(*ast.LitExpr)
	assert.False(t, isLit, "a temporal equation must not be folded to a literal")
	assert.Empty(t, result.Hints)
}

func TestPropagateEmitsPassingTestVerdict(t *testing.T) {
	n := ast.Node{
		Tag:     ast.Test,
		TagPos:  ident.Position{Line: 7, Column: 1},
		Name:    id("CheckInvariant"),
		Outputs: []ast.Param{{Name: id("ok"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("ok"), Expr: &ast.BinOpExpr{Lhs: litInt(1), Op: values.Eq, Rhs: litInt(1)}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	result := constprop.Propagate(a)

	require.Len(t, result.Hints, 2) // one value hint, one verdict hint
	verdict := result.Hints[len(result.Hints)-1]
	assert.Equal(t, diag.TestVerdictHint, verdict.Kind)
	assert.Equal(t, "✅", verdict.Label)
	assert.Equal(t, n.TagPos, verdict.Position)
}

func TestPropagateEmitsFailingTestVerdict(t *testing.T) {
	n := ast.Node{
		Tag:     ast.Test,
		Name:    id("CheckInvariant"),
		Outputs: []ast.Param{{Name: id("ok"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("ok"), Expr: litBool(false)},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	result := constprop.Propagate(a)

	verdict := result.Hints[len(result.Hints)-1]
	assert.Equal(t, diag.TestVerdictHint, verdict.Kind)
	assert.Equal(t, "❌", verdict.Label)
}

// TestPropagateEmitsFailingVerdictWhenFoldNeverProducesALiteral covers the
// case a prior revision of emitVerdict silently dropped: a #[test] node
// whose sole equation never folds to anything (its RHS is a bare input
// reference, which can never be constant) must still get a ❌ verdict
// hint, not no hint at all (spec §4.6 item 3 is an unconditional
// either/or).
func TestPropagateEmitsFailingVerdictWhenFoldNeverProducesALiteral(t *testing.T) {
	n := ast.Node{
		Tag:     ast.Test,
		TagPos:  ident.Position{Line: 3, Column: 1},
		Name:    id("NeverFolds"),
		Inputs:  []ast.Param{{Name: id("in"), Type: types.Prim(types.Bool)}},
		Outputs: []ast.Param{{Name: id("ok"), Type: types.Prim(types.Bool)}},
		Equations: []ast.Equation{
			{Name: id("ok"), Expr: varE("in")},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	result := constprop.Propagate(a)

	require.Len(t, result.Hints, 1) // no value hint (nothing folded), one verdict hint
	verdict := result.Hints[0]
	assert.Equal(t, diag.TestVerdictHint, verdict.Kind)
	assert.Equal(t, "❌", verdict.Label)
	assert.Equal(t, n.TagPos, verdict.Position)
}

func TestPropagateLiftsOverArrayArgument(t *testing.T) {
	callee := ast.Node{
		Name:      id("Double"),
		Inputs:    []ast.Param{{Name: id("x"), Type: types.Prim(types.Int)}},
		Outputs:   []ast.Param{{Name: id("y"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{{Name: id("y"), Expr: &ast.BinOpExpr{Lhs: varE("x"), Op: values.Mult, Rhs: litInt(2)}}},
	}
	caller := ast.Node{
		Name:    id("Caller"),
		Outputs: []ast.Param{{Name: id("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("out"), Expr: &ast.CallExpr{Callee: id("Double"), Args: []ast.Expr{
				&ast.ArrayExpr{Elems: []ast.Expr{litInt(1), litInt(2), litInt(3)}},
			}}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{callee, caller}}
	result := constprop.Propagate(a)

	callerNode := result.Ast.Nodes[1]
	folded := callerNode.Equations[0].Expr.(*ast.LitExpr)
	arr := folded.Value.(values.Array)
	assert.Equal(t, []values.Value{values.Int{V: 2}, values.Int{V: 4}, values.Int{V: 6}}, arr.Elems)
}

// TestPropagateFoldsArrayCallOverTemporalCallee is the spec §8 scenario
// 1/2/6 shape: the callee itself uses `pre`/`->`, so folding the call
// requires compiling+scheduling+stepping it (spec §4.6 items 4-6) rather
// than symbolically re-entering `fold` on its body — re-entering `fold`
// would hit the `->`/`pre` temporal cutoff on every column and the whole
// call would never reduce to a literal.
func TestPropagateFoldsArrayCallOverTemporalCallee(t *testing.T) {
	count := ast.Node{
		Name:    id("Count"),
		Inputs:  []ast.Param{{Name: id("x"), Type: types.Prim(types.Unit)}},
		Outputs: []ast.Param{{Name: id("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: id("out"), Expr: &ast.BinOpExpr{
				Lhs: litInt(0),
				Op:  values.Arrow,
				Rhs: &ast.BinOpExpr{
					Lhs: &ast.UnaryOpExpr{Op: values.Pre, Rhs: varE("out")},
					Op:  values.Add,
					Rhs: litInt(1),
				},
			}},
		},
	}
	unitLit := func() ast.Expr { return &ast.LitExpr{Value: values.Unit{}} }
	caller := ast.Node{
		Name:    id("Caller"),
		Outputs: []ast.Param{{Name: id("out"), Type: types.ArrayOf(types.Prim(types.Int))}},
		Equations: []ast.Equation{
			{Name: id("out"), Expr: &ast.CallExpr{Callee: id("Count"), Args: []ast.Expr{
				&ast.ArrayExpr{Elems: []ast.Expr{unitLit(), unitLit(), unitLit(), unitLit(), unitLit()}},
			}}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{count, caller}}
	result := constprop.Propagate(a)

	callerNode := result.Ast.Nodes[1]
	folded, ok := callerNode.Equations[0].Expr.(*ast.LitExpr)
	require.True(t, ok, "array-lifted call to a temporal callee must fold to a literal")
	arr := folded.Value.(values.Array)
	assert.Equal(t, []values.Value{
		values.Int{V: 0}, values.Int{V: 1}, values.Int{V: 2}, values.Int{V: 3}, values.Int{V: 4},
	}, arr.Elems)
}
