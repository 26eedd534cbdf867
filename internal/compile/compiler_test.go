package compile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lustre/internal/ast"
	"lustre/internal/compile"
	"lustre/internal/compiled"
	"lustre/internal/ident"
	"lustre/internal/schedule"
	"lustre/internal/step"
	"lustre/internal/types"
	"lustre/internal/values"
)

func cid(name string) ident.Ident { return ident.New(name, ident.Position{Line: 1, Column: 1}) }

func cvar(name string) ast.Expr { return &ast.VarExpr{Name: cid(name)} }

func clit(v int64) ast.Expr { return &ast.LitExpr{Value: values.Int{V: v}} }

// TestCompileSelfReferentialOutputTerminates exercises spec §4.3 step 3: a
// node whose sole output's own defining equation reads `pre` of that same
// output (`out = 0 -> pre(out) + step`) must compile without the compiler
// re-entering the equation it is still in the middle of translating. A
// prior revision resolved each output by calling getVar directly, with
// nothing registered in env until after the whole equation had compiled,
// which recursed without end on exactly this shape.
func TestCompileSelfReferentialOutputTerminates(t *testing.T) {
	n := ast.Node{
		Name:    cid("Counter"),
		Inputs:  []ast.Param{{Name: cid("step"), Type: types.Prim(types.Int)}},
		Outputs: []ast.Param{{Name: cid("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: cid("out"), Expr: &ast.BinOpExpr{
				Lhs: clit(0),
				Op:  values.Arrow,
				Rhs: &ast.BinOpExpr{
					Lhs: &ast.UnaryOpExpr{Op: values.Pre, Rhs: cvar("out")},
					Op:  values.Add,
					Rhs: cvar("step"),
				},
			}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{n}}
	c := compile.New(a)

	cn, err := c.Compile("Counter")
	require.NoError(t, err)
	require.Len(t, cn.OutputIdx, 1)
	require.Equal(t, compiled.COutput, cn.Get(cn.OutputIdx[0]).Kind)

	order := schedule.Order(cn)
	schedule.Reset(cn)

	steps := []int64{1, 1, 5}
	want := []int64{0, 1, 6}
	for i, in := range steps {
		require.NoError(t, step.Step(cn, order, []values.Value{values.Int{V: in}}))
		got := cn.Values[cn.OutputIdx[0]].(values.Int)
		require.Equal(t, values.Int{V: want[i]}, got, "instant %d", i)
	}
}

// TestCompileInlinesCalleeWithSelfReferentialOutput covers the same shape
// through inlineCall: a callee whose output equation is self-referential
// (the array-lifting accumulator pattern from
// internal/integration.TestArrayLiftedCallStepsEachElementIndependently)
// must compile the same way when spliced into a caller, not just at the
// top level.
func TestCompileInlinesCalleeWithSelfReferentialOutput(t *testing.T) {
	acc := ast.Node{
		Name:    cid("Acc"),
		Inputs:  []ast.Param{{Name: cid("x"), Type: types.Prim(types.Int)}},
		Outputs: []ast.Param{{Name: cid("y"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: cid("y"), Expr: &ast.BinOpExpr{
				Lhs: cvar("x"),
				Op:  values.Arrow,
				Rhs: &ast.BinOpExpr{
					Lhs: &ast.UnaryOpExpr{Op: values.Pre, Rhs: cvar("y")},
					Op:  values.Add,
					Rhs: cvar("x"),
				},
			}},
		},
	}
	caller := ast.Node{
		Name:    cid("Caller"),
		Inputs:  []ast.Param{{Name: cid("x"), Type: types.Prim(types.Int)}},
		Outputs: []ast.Param{{Name: cid("out"), Type: types.Prim(types.Int)}},
		Equations: []ast.Equation{
			{Name: cid("out"), Expr: &ast.CallExpr{Callee: cid("Acc"), Args: []ast.Expr{cvar("x")}}},
		},
	}
	a := &ast.Ast{Nodes: []ast.Node{acc, caller}}
	c := compile.New(a)

	cn, err := c.Compile("Caller")
	require.NoError(t, err)

	order := schedule.Order(cn)
	schedule.Reset(cn)

	require.NoError(t, step.Step(cn, order, []values.Value{values.Int{V: 3}}))
	require.Equal(t, values.Int{V: 3}, cn.Values[cn.OutputIdx[0]])

	require.NoError(t, step.Step(cn, order, []values.Value{values.Int{V: 3}}))
	require.Equal(t, values.Int{V: 6}, cn.Values[cn.OutputIdx[0]])
}
