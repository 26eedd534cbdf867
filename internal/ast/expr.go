// Package ast models the checked-AST data the surface parser produces
// (spec §3): nodes, equations, and expressions over the two temporal
// operators `fby` and `pre`. The parser itself is an external collaborator
// (spec §1) — this package only models what it emits.
//
// The visitor shape is grounded on the teacher's internal/parser/ast.go
// (ExprVisitor with one VisitXExpr method per variant), generalized from
// Sentra's dynamic-scripting expressions to this spec's dataflow
// expressions, per spec §9 "Polymorphism over AST" (tagged-union dispatch
// with exhaustive matches, no inheritance hierarchies).
package ast

import (
	"lustre/internal/ident"
	"lustre/internal/values"
)

// Expr is any dataflow expression node.
type Expr interface {
	Accept(v ExprVisitor) interface{}
}

// BinOpExpr is `lhs op rhs`; OpSpan anchors operator-specific diagnostics.
type BinOpExpr struct {
	Lhs    Expr
	Op     values.BinOp
	OpSpan ident.Span
	Rhs    Expr
}

func (e *BinOpExpr) Accept(v ExprVisitor) interface{} { return v.VisitBinOp(e) }

// UnaryOpExpr is `op rhs`.
type UnaryOpExpr struct {
	Op     values.UnaryOp
	OpSpan ident.Span
	Rhs    Expr
}

func (e *UnaryOpExpr) Accept(v ExprVisitor) interface{} { return v.VisitUnaryOp(e) }

// IfExpr is a strict conditional (spec §9 open question: strict semantics
// frozen — see DESIGN.md).
type IfExpr struct {
	Cond Expr
	Yes  Expr
	No   Expr
}

func (e *IfExpr) Accept(v ExprVisitor) interface{} { return v.VisitIf(e) }

// ArrayExpr is an array literal `[e, e, ...]`.
type ArrayExpr struct {
	Elems []Expr
}

func (e *ArrayExpr) Accept(v ExprVisitor) interface{} { return v.VisitArray(e) }

// TupleExpr is a tuple literal `(e, e, ...)`.
type TupleExpr struct {
	Elems []Expr
}

func (e *TupleExpr) Accept(v ExprVisitor) interface{} { return v.VisitTuple(e) }

// CallExpr is `callee(args...)`. An empty argument list is normalized to a
// single Unit literal argument by the parser (spec §6); callers that build
// ASTs by hand should do the same.
type CallExpr struct {
	Callee ident.Ident
	Args   []Expr
}

func (e *CallExpr) Accept(v ExprVisitor) interface{} { return v.VisitCall(e) }

// VarExpr references an input, output, or local-equation name.
type VarExpr struct {
	Name ident.Ident
}

func (e *VarExpr) Accept(v ExprVisitor) interface{} { return v.VisitVar(e) }

// LitExpr is a literal value.
type LitExpr struct {
	Value values.Value
}

func (e *LitExpr) Accept(v ExprVisitor) interface{} { return v.VisitLit(e) }

// ExprVisitor dispatches over every Expr variant exhaustively; adding a
// variant is a compile-time forcing function for every implementer
// (spec §9).
type ExprVisitor interface {
	VisitBinOp(e *BinOpExpr) interface{}
	VisitUnaryOp(e *UnaryOpExpr) interface{}
	VisitIf(e *IfExpr) interface{}
	VisitArray(e *ArrayExpr) interface{}
	VisitTuple(e *TupleExpr) interface{}
	VisitCall(e *CallExpr) interface{}
	VisitVar(e *VarExpr) interface{}
	VisitLit(e *LitExpr) interface{}
}
