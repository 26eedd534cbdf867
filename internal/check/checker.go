// Package check is the static type checker (spec §4.1): a two-pass
// signature-then-body visitor that produces diagnostics and inlay hints
// without mutating the AST. Grounded on the original's
// analyzer/src/checker/types.rs and function_type.rs, generalized to this
// repo's Go visitor idiom (internal/ast.ExprVisitor) the way the teacher's
// internal/compiler package walks internal/parser's AST.
package check

import (
	"fmt"

	"lustre/internal/ast"
	"lustre/internal/diag"
	"lustre/internal/ident"
	"lustre/internal/types"
	"lustre/internal/values"
)

// Result is everything the checker produced for one Ast.
type Result struct {
	Diagnostics []diag.Diagnostic
	Hints       []diag.Hint
	Signatures  map[string]FunctionType
	// ArrayCalls maps every call site the checker typed successfully, keyed
	// by the call's own CallExpr pointer, to whether it was classified as
	// Array-lifted (spec §4.1.1); Simple calls map to false. internal/compile inlines every call regardless of
	// this classification (spec §4.3); ArrayCalls exists for consumers that
	// need the lifting classification itself, such as inlay-hint rendering.
	ArrayCalls map[*ast.CallExpr]bool
}

// Check type-checks every node in a, in two passes: first every node's
// signature is collected (catching duplicate names), then every node's
// equations are typed, except those of a later node reusing a name already
// declared (spec §4.1).
func Check(a *ast.Ast) Result {
	sigs, dup, diags := collectSignatures(a)
	c := &checker{sigs: sigs, arrayCalls: make(map[*ast.CallExpr]bool)}
	c.diags = append(c.diags, diags...)

	checked := make(map[string]bool)
	for i := range a.Nodes {
		n := &a.Nodes[i]
		if dup[n.Name.Name] && checked[n.Name.Name] {
			continue
		}
		checked[n.Name.Name] = true
		c.checkNode(n)
	}
	return Result{Diagnostics: c.diags, Hints: c.hints, Signatures: sigs, ArrayCalls: c.arrayCalls}
}

// checker holds the mutable state of one pass-two traversal: the
// in-progress node, its local type environment, and accumulated output.
type checker struct {
	sigs  map[string]FunctionType
	node  *ast.Node
	env   map[string]*types.VarType
	diags []diag.Diagnostic
	hints []diag.Hint

	arrayCalls map[*ast.CallExpr]bool
}

func (c *checker) errf(span ident.Span, format string, args ...interface{}) {
	c.diags = append(c.diags, diag.Diagnostic{
		Severity: diag.Error,
		Range:    span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func spanOf(id ident.Ident) ident.Span {
	return ident.Span{Start: id.Pos, End: id.End()}
}

// checkNode seeds the local environment (spec §4.1 "setup_local_types")
// then types every output's defining equation directly, independent of the
// environment, the way the original's check_node does.
func (c *checker) checkNode(n *ast.Node) {
	c.node = n
	c.env = make(map[string]*types.VarType)

	for _, p := range n.Inputs {
		t := p.Type
		c.env[p.Name.Name] = &t
	}
	for _, eq := range n.Equations {
		if _, exists := c.env[eq.Name.Name]; exists {
			c.errf(spanOf(eq.Name), "Var name already used.")
			continue
		}
		c.env[eq.Name.Name] = nil
	}
	for _, p := range n.Outputs {
		t := p.Type
		c.env[p.Name.Name] = &t
	}

	for _, p := range n.Outputs {
		derived, ok := c.resolveEquation(p.Name)
		if !ok {
			continue
		}
		if !types.EqualWithoutPre(derived, p.Type) || !derived.Initialized && p.Type.Initialized {
			c.errf(spanOf(p.Name),
				"Output '%s' has declared type '%s' but its equation has type '%s'.",
				p.Name.Name, p.Type.String(), derived.String())
		}
	}
}

// resolveEquation types the equation defining name directly (bypassing the
// env), pushing its type hint. Mirrors the original's get_type_var.
func (c *checker) resolveEquation(name ident.Ident) (types.VarType, bool) {
	eq, found := c.node.Equation(name)
	if !found {
		c.errf(spanOf(name), "No equation found for '%s'.", name.Name)
		return types.VarType{}, false
	}
	t, ok := c.typeOf(eq.Expr)
	if !ok {
		return types.VarType{}, false
	}
	c.hints = append(c.hints, diag.Hint{
		Kind:     diag.TypeHint,
		Position: name.End(),
		Label:    ": " + t.String(),
	})
	return t, true
}

type exprResult struct {
	t  types.VarType
	ok bool
}

func (c *checker) typeOf(e ast.Expr) (types.VarType, bool) {
	r := e.Accept(c).(exprResult)
	return r.t, r.ok
}

func fail() interface{} { return exprResult{} }

func ok(t types.VarType) interface{} { return exprResult{t: t, ok: true} }

func (c *checker) VisitLit(e *ast.LitExpr) interface{} {
	return ok(e.Value.TypeOf())
}

func (c *checker) VisitVar(e *ast.VarExpr) interface{} {
	entry, present := c.env[e.Name.Name]
	if !present {
		c.errf(spanOf(e.Name), "No equation found for '%s'.", e.Name.Name)
		return fail()
	}
	if entry != nil {
		return ok(*entry)
	}
	t, good := c.resolveEquation(e.Name)
	if !good {
		return fail()
	}
	c.env[e.Name.Name] = &t
	return ok(t)
}

func (c *checker) VisitUnaryOp(e *ast.UnaryOpExpr) interface{} {
	t, good := c.typeOf(e.Rhs)
	if !good {
		return fail()
	}
	if e.Op == values.Pre {
		if !t.Initialized {
			c.errf(e.OpSpan, "Cannot take 'pre' of a value that is not yet initialized.")
			return fail()
		}
		return ok(t.WithInit(false))
	}
	return ok(t)
}

func (c *checker) VisitBinOp(e *ast.BinOpExpr) interface{} {
	lt, lok := c.typeOf(e.Lhs)
	rt, rok := c.typeOf(e.Rhs)
	if !lok || !rok {
		return fail()
	}

	switch e.Op {
	case values.Arrow:
		if !lt.Initialized {
			c.errf(e.OpSpan, "Left-hand side of '->' must be initialized at the first instant.")
			return fail()
		}
		if !types.EqualWithoutPre(lt, rt) {
			c.errf(e.OpSpan, "'->' operands have incompatible types: '%s' and '%s'.", lt.String(), rt.String())
			return fail()
		}
		return ok(types.RemoveOnePre(rt))
	case values.Fby:
		if !types.EqualWithoutPre(lt, rt) {
			c.errf(e.OpSpan, "'fby' operands have incompatible types: '%s' and '%s'.", lt.String(), rt.String())
			return fail()
		}
		return ok(lt)
	case values.Eq, values.Neq:
		if !types.EqualWithoutPre(lt, rt) {
			c.errf(e.OpSpan, "Cannot compare '%s' and '%s'.", lt.String(), rt.String())
			return fail()
		}
		return ok(types.Prim(types.Bool).WithInit(lt.Initialized && rt.Initialized))
	case values.Or, values.And:
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			c.errf(e.OpSpan, "'%s' expects bool operands, found '%s' and '%s'.", e.Op.String(), lt.String(), rt.String())
			return fail()
		}
		return ok(types.Prim(types.Bool).WithInit(lt.Initialized && rt.Initialized))
	default: // + - * /
		m, good := types.Merge(lt, rt)
		if !good || (m.Kind != types.Int && m.Kind != types.Float) {
			c.errf(e.OpSpan, "'%s' expects matching numeric operands, found '%s' and '%s'.", e.Op.String(), lt.String(), rt.String())
			return fail()
		}
		return ok(m)
	}
}

func (c *checker) VisitIf(e *ast.IfExpr) interface{} {
	ct, cok := c.typeOf(e.Cond)
	yt, yok := c.typeOf(e.Yes)
	nt, nok := c.typeOf(e.No)
	if !cok || !yok || !nok {
		return fail()
	}
	if ct.Kind != types.Bool {
		c.errf(ident.Span{}, "'if' condition must be bool, found '%s'.", ct.String())
		return fail()
	}
	m, good := types.Merge(yt, nt)
	if !good {
		c.errf(ident.Span{}, "'if' branches have incompatible types: '%s' and '%s'.", yt.String(), nt.String())
		return fail()
	}
	return ok(m)
}

func (c *checker) VisitArray(e *ast.ArrayExpr) interface{} {
	if len(e.Elems) == 0 {
		return ok(types.NewArray(types.Prim(types.Unit), types.KnownLength(0)))
	}
	first, good := c.typeOf(e.Elems[0])
	if !good {
		return fail()
	}
	init := first.Initialized
	for _, el := range e.Elems[1:] {
		t, good := c.typeOf(el)
		if !good {
			return fail()
		}
		if !types.EqualWithoutPre(t, first) {
			c.errf(ident.Span{}, "Array elements must share a type: '%s' vs '%s'.", first.String(), t.String())
			return fail()
		}
		init = init && t.Initialized
	}
	return ok(types.NewArray(first.WithInit(init), types.KnownLength(len(e.Elems))))
}

func (c *checker) VisitTuple(e *ast.TupleExpr) interface{} {
	elems := make([]types.VarType, len(e.Elems))
	init := true
	for i, el := range e.Elems {
		t, good := c.typeOf(el)
		if !good {
			return fail()
		}
		elems[i] = t
		init = init && t.Initialized
	}
	return ok(types.NewTuple(elems).WithInit(init))
}

// callClass is the argument-lifting mode determined by the first argument
// (spec §4.1.1): Simple types it argument-for-argument against the
// declared input; Array requires every argument to be an array of the
// declared input type and lifts every output into an array.
type callClass int

const (
	classUnknown callClass = iota
	classSimple
	classArray
)

func (c *checker) VisitCall(e *ast.CallExpr) interface{} {
	if e.Callee.Name == c.node.Name.Name {
		c.errf(spanOf(e.Callee), "Recursive function calls are not allowed.")
		return fail()
	}
	ft, found := c.sigs[e.Callee.Name]
	if !found {
		c.errf(spanOf(e.Callee), "Function '%s' is never defined.", e.Callee.Name)
		return fail()
	}

	args := e.Args
	if len(args) == 0 {
		args = []ast.Expr{&ast.LitExpr{Value: values.Unit{}}}
	}
	if len(args) != len(ft.Inputs) {
		c.errf(spanOf(e.Callee), "Expected %d arguments for function '%s' but got %d.",
			len(ft.Inputs), e.Callee.Name, len(args))
		return fail()
	}

	class := classUnknown
	for i, arg := range args {
		at, good := c.typeOf(arg)
		if !good {
			c.errf(spanOf(e.Callee), "The %s argument of function '%s' does not type check.",
				numeralString(i), e.Callee.Name)
			return fail()
		}
		expected := ft.Inputs[i].Type

		switch class {
		case classUnknown:
			switch {
			case types.Equal(at, expected):
				class = classSimple
			case types.EqualArrayOf(at, expected):
				class = classArray
			default:
				c.errf(spanOf(e.Callee),
					"The %s argument of function '%s' has type '%s' but expected '%s' or '%s'.",
					numeralString(i), e.Callee.Name, at.String(), expected.String(), types.ArrayOf(expected).String())
				return fail()
			}
		case classSimple:
			if !types.Equal(at, expected) {
				c.errf(spanOf(e.Callee),
					"The %s argument of function '%s' has type '%s' but expected '%s'.",
					numeralString(i), e.Callee.Name, at.String(), expected.String())
				return fail()
			}
		case classArray:
			want := types.ArrayOf(expected)
			if !types.EqualArrayOf(at, expected) {
				c.errf(spanOf(e.Callee),
					"The %s argument of function '%s' has type '%s' but expected '%s'.",
					numeralString(i), e.Callee.Name, at.String(), want.String())
				return fail()
			}
		}
	}

	c.arrayCalls[e] = class == classArray

	outTypes := make([]types.VarType, len(ft.Outputs))
	for i, p := range ft.Outputs {
		if class == classArray {
			outTypes[i] = types.ArrayOf(p.Type)
		} else {
			outTypes[i] = p.Type
		}
	}
	return ok(types.TupleFromSlice(outTypes))
}
