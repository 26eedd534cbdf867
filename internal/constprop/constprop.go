// Package constprop is the constant propagator and #[test] evaluator
// (spec §4.6): it symbolically folds the purely combinational fragment of
// each node's equations into literals, rewrites the node with whatever
// folded, and emits value hints plus a pass/fail verdict for every #[test]
// node. Grounded on the original's
// analyzer/src/interpreter/constant_propagate.rs, restructured as a
// recursive AST fold (mirroring internal/check's env-memoization shape)
// for every expression shape except Call: a subexpression reaching `pre`,
// `fby`, or `->` directly is, by construction, not a single constant, and
// folding stops there without needing to schedule anything. A Call's
// callee, though, may itself use `pre`/`fby`/`->` internally (spec §4.6
// items 4-6), so folding a Call drives the callee through the same
// compile+schedule+step pipeline internal/step runs at runtime, one step
// per array column when the call is array-lifted — that stepping is
// exactly what gives a temporal callee (e.g. a Fibonacci node built from
// `fby`) a well-defined constant result.
package constprop

import (
	"lustre/internal/ast"
	"lustre/internal/compile"
	"lustre/internal/compiled"
	"lustre/internal/diag"
	"lustre/internal/ident"
	"lustre/internal/schedule"
	"lustre/internal/step"
	"lustre/internal/values"
)

// Result is the rewritten Ast plus the hints produced while folding it.
type Result struct {
	Ast   *ast.Ast
	Hints []diag.Hint
}

// Propagate folds every node of a independently, each with its own reset
// fold cache (spec §4.6 supplemented feature: "per-node fold-cache reset").
func Propagate(a *ast.Ast) Result {
	p := &propagator{ast: a, compiler: compile.New(a)}
	out := &ast.Ast{Nodes: make([]ast.Node, len(a.Nodes))}
	for i := range a.Nodes {
		out.Nodes[i] = p.propagateNode(&a.Nodes[i])
	}
	return Result{Ast: out, Hints: p.hints}
}

type propagator struct {
	ast   *ast.Ast
	node  *ast.Node
	env   map[string]*values.Value
	hints []diag.Hint

	// compiler compiles+schedules a Call's callee on demand when folding
	// it (spec §4.6 item 4); singleflight-memoized per callee name so a
	// node called from several equations or array columns is compiled once
	// (spec §4.3 supplemented feature, shared with internal/compile).
	compiler *compile.Compiler
}

// propagateNode folds every equation of n against a fresh cache, rewriting
// the node's shell with whichever equations folded to a literal.
func (p *propagator) propagateNode(n *ast.Node) ast.Node {
	p.node = n
	p.env = make(map[string]*values.Value)
	for _, eq := range n.Equations {
		p.env[eq.Name.Name] = nil
	}

	shell := ast.ShellFrom(n)
	for _, eq := range n.Equations {
		newEq := eq
		if v, ok := p.resolve(eq.Name); ok {
			newEq.Expr = &ast.LitExpr{Value: v}
			p.hints = append(p.hints, diag.Hint{
				Kind:     diag.ValueHint,
				Position: eq.TermPos,
				Label:    " >> " + v.String(),
			})
		}
		shell.Equations = append(shell.Equations, newEq)
	}

	if n.Tag == ast.Test {
		p.emitVerdict(&shell)
	}
	return shell
}

// emitVerdict always pushes a pass/fail hint anchored at the node's
// #[test] tag (spec §4.6 item 3: "✅ if is_only_true_equations holds, ❌
// otherwise" — an unconditional either/or, not conditional on whether
// folding produced a literal at all). is_only_true_equations holds iff the
// node has exactly one equation defining its one output and that
// equation's RHS folded to the literal `true`; every other shape — no
// fold, a non-bool literal, a bool literal `false`, more than one
// equation — is ❌.
func (p *propagator) emitVerdict(shell *ast.Node) {
	passed := false
	if len(shell.Outputs) == 1 && len(shell.Equations) == 1 {
		eq := shell.Equations[0]
		if eq.Name.Equal(shell.Outputs[0].Name) {
			if lit, ok := eq.Expr.(*ast.LitExpr); ok {
				if b, ok := lit.Value.(values.Bool); ok {
					passed = b.V
				}
			}
		}
	}
	label := "❌"
	if passed {
		label = "✅"
	}
	p.hints = append(p.hints, diag.Hint{Kind: diag.TestVerdictHint, Position: shell.TagPos, Label: label})
}

// resolve folds the equation defining name, consulting/populating the fold
// cache exactly like internal/check's env (an absent entry means name is
// not one of this node's equations — e.g. an input, which can never fold
// to a constant since it varies at runtime; a nil entry is pending).
func (p *propagator) resolve(name ident.Ident) (values.Value, bool) {
	entry, present := p.env[name.Name]
	if !present {
		return nil, false
	}
	if entry != nil {
		return *entry, true
	}
	eq, found := p.node.Equation(name)
	if !found {
		return nil, false
	}
	v, ok := p.fold(eq.Expr)
	if !ok {
		return nil, false
	}
	p.env[name.Name] = &v
	return v, true
}

func (p *propagator) fold(e ast.Expr) (values.Value, bool) {
	switch expr := e.(type) {
	case *ast.LitExpr:
		return expr.Value, true

	case *ast.VarExpr:
		return p.resolve(expr.Name)

	case *ast.UnaryOpExpr:
		if expr.Op == values.Pre {
			return nil, false // temporal: never a single constant
		}
		rhs, ok := p.fold(expr.Rhs)
		if !ok {
			return nil, false
		}
		v := expr.Op.Apply(rhs, values.InstantUnknown)
		return v, v != nil

	case *ast.BinOpExpr:
		if expr.Op == values.Fby || expr.Op == values.Arrow {
			return nil, false // temporal: value differs across instants
		}
		lhs, lok := p.fold(expr.Lhs)
		rhs, rok := p.fold(expr.Rhs)
		if !lok || !rok {
			return nil, false
		}
		v := expr.Op.Apply(lhs, rhs, values.InstantUnknown)
		return v, v != nil

	case *ast.IfExpr:
		cond, cok := p.fold(expr.Cond)
		yes, yok := p.fold(expr.Yes)
		no, nok := p.fold(expr.No)
		if !cok || !yok || !nok {
			return nil, false
		}
		b, ok := cond.(values.Bool)
		if !ok {
			return nil, false
		}
		if b.V {
			return yes, true
		}
		return no, true

	case *ast.ArrayExpr:
		elems := make([]values.Value, len(expr.Elems))
		for i, el := range expr.Elems {
			v, ok := p.fold(el)
			if !ok {
				return nil, false
			}
			elems[i] = v
		}
		return values.Array{Elems: elems}, true

	case *ast.TupleExpr:
		elems := make([]values.Value, len(expr.Elems))
		for i, el := range expr.Elems {
			v, ok := p.fold(el)
			if !ok {
				return nil, false
			}
			elems[i] = v
		}
		return values.TupleFromSlice(elems), true

	case *ast.CallExpr:
		return p.foldCall(expr)

	default:
		return nil, false
	}
}

// foldCall folds a call's arguments, then drives the callee through
// compile+schedule+step exactly as internal/step would at runtime (spec
// §4.6 items 1-6): a Simple call steps once with the argument values; an
// Array call steps once per column, in order, over the *same* compiled
// instance so Pre memory carries across columns the way it would across
// real instants — this is what lets a temporal callee (`fby`/`pre`/`->`)
// fold to a constant at all.
func (p *propagator) foldCall(e *ast.CallExpr) (values.Value, bool) {
	args := e.Args
	if len(args) == 0 {
		args = []ast.Expr{&ast.LitExpr{Value: values.Unit{}}}
	}
	argVals := make([]values.Value, len(args))
	for i, a := range args {
		v, ok := p.fold(a)
		if !ok {
			return nil, false
		}
		argVals[i] = v
	}

	// A call with literally no dynamic input is not evaluated here (spec
	// §4.6 item 2).
	if len(argVals) == 1 {
		if _, isUnit := argVals[0].(values.Unit); isUnit {
			return nil, false
		}
	}

	callee, found := p.ast.Node(e.Callee)
	if !found {
		return nil, false
	}

	length := -1
	for _, v := range argVals {
		if arr, ok := v.(values.Array); ok {
			if length != -1 && len(arr.Elems) != length {
				return nil, false
			}
			length = len(arr.Elems)
		}
	}

	cn, err := p.compiler.CompileOnce(callee.Name.Name)
	if err != nil {
		return nil, false
	}
	order := schedule.Order(cn)
	schedule.Reset(cn)

	if length == -1 {
		// Simple (spec §4.6 item 5): one step with the argument values.
		if err := step.Step(cn, order, argVals); err != nil {
			return nil, false
		}
		return values.TupleFromSlice(outputValues(cn)), true
	}

	// Array (spec §4.6 item 6): step once per column, collecting each
	// output's values column-wise into an Array.
	columns := make([][]values.Value, len(cn.OutputIdx))
	for k := 0; k < length; k++ {
		elemInputs := make([]values.Value, len(argVals))
		for i, v := range argVals {
			if arr, ok := v.(values.Array); ok {
				elemInputs[i] = arr.Elems[k]
			} else {
				elemInputs[i] = v
			}
		}
		if err := step.Step(cn, order, elemInputs); err != nil {
			return nil, false
		}
		for i := range columns {
			columns[i] = append(columns[i], cn.Values[cn.OutputIdx[i]])
		}
	}
	outVals := make([]values.Value, len(columns))
	for i, col := range columns {
		outVals[i] = values.Array{Elems: col}
	}
	return values.TupleFromSlice(outVals), true
}

func outputValues(cn *compiled.CNode) []values.Value {
	out := make([]values.Value, len(cn.OutputIdx))
	for i, idx := range cn.OutputIdx {
		out[i] = cn.Values[idx]
	}
	return out
}
