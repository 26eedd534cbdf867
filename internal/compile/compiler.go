// Package compile lowers a checked ast.Ast into the flat compiled.CNode IR
// (spec §4.3): it desugars fby into arrow+pre, inlines every call — array-
// lifted or not — with input-splicing, and memoizes structurally identical
// subexpressions. Spec §4.3 describes a single, unconditional "inline it"
// rule for Call with no compile-time Simple/Array branch; array lifting
// falls out for free at step time from §4.2's pointwise Value operators,
// so there is no dedicated call-shaped CExpr. Grounded on the original's
// analyzer/src/interpreter/compiler.rs, adapted from its Set/Get
// indirection to spec.md's simpler Pre{Src Idx} model, the way the
// teacher's internal/compiler package lowers internal/parser's AST into
// internal/bytecode instructions.
package compile

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"lustre/internal/ast"
	"lustre/internal/compiled"
	"lustre/internal/ident"
	"lustre/internal/lustreerr"
	"lustre/internal/values"
)

// Compiler lowers nodes of a single Ast on demand.
type Compiler struct {
	ast *ast.Ast

	templates sync.Map // string (callee name) -> *compiled.CNode
	group     singleflight.Group
}

// New builds a Compiler over a.
func New(a *ast.Ast) *Compiler {
	return &Compiler{ast: a}
}

// CompileOnce compiles the named node at most once, regardless of how many
// call sites or constant-propagator fold attempts later ask for the same
// callee (spec §4.3 supplemented feature: "singleflight-memoized compile
// per callee name"). The returned CNode's structural fields (Exprs,
// InputIdx, OutputIdx) are safe to share across callers; a caller that
// steps it must schedule.Reset it first to get independent per-instant
// state.
func (c *Compiler) CompileOnce(name string) (*compiled.CNode, error) {
	if cached, ok := c.templates.Load(name); ok {
		return cached.(*compiled.CNode), nil
	}
	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		n, err := c.Compile(name)
		if err != nil {
			return nil, err
		}
		c.templates.Store(name, n)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*compiled.CNode), nil
}

// Compile lowers the named node into a fresh CNode.
func (c *Compiler) Compile(name string) (*compiled.CNode, error) {
	n, found := c.ast.Node(ident.New(name, ident.Position{}))
	if !found {
		return nil, lustreerr.New(lustreerr.UnknownCallee, "no such node %q", name)
	}
	nc := &nodeCompiler{
		compiler: c,
		node:     compiled.NewCNode(name),
		env:      make(map[string]compiled.Idx),
		memo:     make(map[string]compiled.Idx),
		astNode:  n,
	}
	for i, p := range n.Inputs {
		idx := nc.push(compiled.CExpr{Kind: compiled.CInput, InputSlot: i}, "input "+p.Name.Name)
		nc.env[p.Name.Name] = idx
		nc.node.InputIdx = append(nc.node.InputIdx, idx)
	}
	outIdx, err := nc.compileOutputs()
	if err != nil {
		return nil, err
	}
	nc.node.OutputIdx = append(nc.node.OutputIdx, outIdx...)
	return nc.node, nil
}

// compileOutputs pushes a forwarding Output placeholder for each of
// nc.astNode's declared outputs and registers it in nc.env before walking
// any equation (spec §4.3 step 3), then compiles each output's defining
// expression and rewrites its placeholder's Src to point at the result
// (spec §4.3 step 5). Seeding env first is what lets a self-referential
// output equation (`out = 0 -> pre(out) + step`) resolve its own `pre`
// reference to the placeholder instead of recompiling the equation it is
// itself inside of.
func (nc *nodeCompiler) compileOutputs() ([]compiled.Idx, error) {
	outIdx := make([]compiled.Idx, len(nc.astNode.Outputs))
	for i, p := range nc.astNode.Outputs {
		idx := nc.node.Push(compiled.CExpr{Kind: compiled.COutput}, "output "+p.Name.Name)
		nc.env[p.Name.Name] = idx
		outIdx[i] = idx
	}
	for i, p := range nc.astNode.Outputs {
		eq, found := nc.astNode.Equation(p.Name)
		if !found {
			return nil, lustreerr.New(lustreerr.BadIndex, "no equation for %q in node %q (checker should have rejected this)", p.Name.Name, nc.astNode.Name.Name)
		}
		real, err := nc.compileExpr(eq.Expr)
		if err != nil {
			return nil, err
		}
		nc.node.Exprs[outIdx[i]].Src = real
	}
	return outIdx, nil
}

// nodeCompiler holds the mutable state of lowering one node's body,
// including whichever callee body is presently being inlined into it.
type nodeCompiler struct {
	compiler *Compiler
	node     *compiled.CNode
	env      map[string]compiled.Idx
	memo     map[string]compiled.Idx
	astNode  *ast.Node
}

// push appends e, or returns the Idx of a structurally identical
// expression already present (spec §4.3 "memoizes").
func (nc *nodeCompiler) push(e compiled.CExpr, info string) compiled.Idx {
	key := memoKey(e)
	if idx, ok := nc.memo[key]; ok {
		return idx
	}
	idx := nc.node.Push(e, info)
	nc.memo[key] = idx
	return idx
}

func memoKey(e compiled.CExpr) string {
	switch e.Kind {
	case compiled.CInput:
		return fmt.Sprintf("in:%d", e.InputSlot)
	case compiled.CPre:
		return fmt.Sprintf("pre:%d", e.Src)
	case compiled.CBinOp:
		return fmt.Sprintf("bin:%d:%d:%d", e.Op, e.Lhs, e.Rhs)
	case compiled.CUnaryOp:
		return fmt.Sprintf("un:%d:%d", e.Op, e.Unary)
	case compiled.CIf:
		return fmt.Sprintf("if:%d:%d:%d", e.Cond, e.Yes, e.No)
	case compiled.CLit:
		return fmt.Sprintf("lit:%#v", e.Lit)
	case compiled.CTuple:
		return fmt.Sprintf("tup:%v", e.Elems)
	case compiled.CArray:
		return fmt.Sprintf("arr:%v", e.Elems)
	default:
		return fmt.Sprintf("?:%d", e.Kind)
	}
}

// getVar resolves name: an already-compiled local is returned directly,
// otherwise its defining equation is compiled and the result cached.
func (nc *nodeCompiler) getVar(name ident.Ident) (compiled.Idx, error) {
	if idx, ok := nc.env[name.Name]; ok {
		return idx, nil
	}
	eq, found := nc.astNode.Equation(name)
	if !found {
		return 0, lustreerr.New(lustreerr.BadIndex, "no equation for %q in node %q (checker should have rejected this)", name.Name, nc.astNode.Name.Name)
	}
	idx, err := nc.compileExpr(eq.Expr)
	if err != nil {
		return 0, err
	}
	nc.env[name.Name] = idx
	return idx, nil
}

func (nc *nodeCompiler) compileExpr(e ast.Expr) (compiled.Idx, error) {
	switch expr := e.(type) {
	case *ast.LitExpr:
		return nc.push(compiled.CExpr{Kind: compiled.CLit, Lit: expr.Value}, "lit"), nil

	case *ast.VarExpr:
		return nc.getVar(expr.Name)

	case *ast.UnaryOpExpr:
		rhs, err := nc.compileExpr(expr.Rhs)
		if err != nil {
			return 0, err
		}
		if expr.Op == values.Pre {
			return nc.push(compiled.CExpr{Kind: compiled.CPre, Src: rhs}, "pre"), nil
		}
		return nc.push(compiled.CExpr{Kind: compiled.CUnaryOp, Op: int(expr.Op), Unary: rhs}, expr.Op.String()), nil

	case *ast.BinOpExpr:
		lhs, err := nc.compileExpr(expr.Lhs)
		if err != nil {
			return 0, err
		}
		if expr.Op == values.Fby {
			// "lhs fby rhs" desugars to "lhs -> pre rhs" (spec §4.3).
			rhs, err := nc.compileExpr(expr.Rhs)
			if err != nil {
				return 0, err
			}
			pre := nc.push(compiled.CExpr{Kind: compiled.CPre, Src: rhs}, "fby-pre")
			return nc.push(compiled.CExpr{Kind: compiled.CBinOp, Op: int(values.Arrow), Lhs: lhs, Rhs: pre}, "fby-arrow"), nil
		}
		rhs, err := nc.compileExpr(expr.Rhs)
		if err != nil {
			return 0, err
		}
		return nc.push(compiled.CExpr{Kind: compiled.CBinOp, Op: int(expr.Op), Lhs: lhs, Rhs: rhs}, expr.Op.String()), nil

	case *ast.IfExpr:
		cond, err := nc.compileExpr(expr.Cond)
		if err != nil {
			return 0, err
		}
		yes, err := nc.compileExpr(expr.Yes)
		if err != nil {
			return 0, err
		}
		no, err := nc.compileExpr(expr.No)
		if err != nil {
			return 0, err
		}
		return nc.push(compiled.CExpr{Kind: compiled.CIf, Cond: cond, Yes: yes, No: no}, "if"), nil

	case *ast.TupleExpr:
		elems := make([]compiled.Idx, len(expr.Elems))
		for i, el := range expr.Elems {
			idx, err := nc.compileExpr(el)
			if err != nil {
				return 0, err
			}
			elems[i] = idx
		}
		return nc.push(compiled.CExpr{Kind: compiled.CTuple, Elems: elems}, "tuple"), nil

	case *ast.ArrayExpr:
		elems := make([]compiled.Idx, len(expr.Elems))
		for i, el := range expr.Elems {
			idx, err := nc.compileExpr(el)
			if err != nil {
				return 0, err
			}
			elems[i] = idx
		}
		return nc.push(compiled.CExpr{Kind: compiled.CArray, Elems: elems}, "array"), nil

	case *ast.CallExpr:
		return nc.compileCall(expr)

	default:
		return 0, lustreerr.New(lustreerr.BadIndex, "unhandled expression shape %T", e)
	}
}

func (nc *nodeCompiler) compileCall(e *ast.CallExpr) (compiled.Idx, error) {
	args := e.Args
	if len(args) == 0 {
		args = []ast.Expr{&ast.LitExpr{Value: values.Unit{}}}
	}
	argIdx := make([]compiled.Idx, len(args))
	for i, a := range args {
		idx, err := nc.compileExpr(a)
		if err != nil {
			return 0, err
		}
		argIdx[i] = idx
	}

	callee, found := nc.compiler.ast.Node(e.Callee)
	if !found {
		return 0, lustreerr.New(lustreerr.UnknownCallee, "call to undefined node %q (checker should have rejected this)", e.Callee.Name)
	}

	// Every call is inlined, array-lifted or not (spec §4.3): lifting over
	// an array argument falls out for free once inlined, since a Pre over
	// an array-typed slot just copies the whole stored Array, and the
	// arithmetic/relational operators above it already apply pointwise
	// (spec §4.2, internal/values.BinOp/UnaryOp.Apply).
	return nc.inlineCall(callee, argIdx)
}

// inlineCall splices callee's body into nc.node: its declared inputs are
// bound to argIdx in a fresh, isolated environment (so callee-local names
// never leak into the caller's), its outputs are compiled within that
// environment, and the caller's environment is restored afterward.
func (nc *nodeCompiler) inlineCall(callee *ast.Node, argIdx []compiled.Idx) (compiled.Idx, error) {
	savedEnv, savedAstNode := nc.env, nc.astNode
	nc.astNode = callee
	nc.env = make(map[string]compiled.Idx, len(callee.Inputs))
	if len(callee.Inputs) > 0 {
		for i, p := range callee.Inputs {
			nc.env[p.Name.Name] = argIdx[i]
		}
	}
	// A nullary callee's synthetic Unit argument has nothing to bind to.

	outIdx, err := nc.compileOutputs()

	nc.env, nc.astNode = savedEnv, savedAstNode
	if err != nil {
		return 0, err
	}
	if len(outIdx) == 1 {
		return outIdx[0], nil
	}
	return nc.push(compiled.CExpr{Kind: compiled.CTuple, Elems: outIdx}, "call-result:"+callee.Name.Name), nil
}
