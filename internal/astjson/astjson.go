// Package astjson decodes the JSON AST format cmd/lustrec reads from
// stdin/file. Spec §1 treats the surface parser as an external
// collaborator this repo doesn't implement; astjson is the substitute
// input format that lets the pipeline be exercised end to end without one,
// grounded on the teacher's internal/reporting package's JSON-tagged wire
// structs for the same "plain data in, typed value out" shape.
package astjson

import (
	"encoding/json"
	"fmt"
	"io"

	"lustre/internal/ast"
	"lustre/internal/ident"
	"lustre/internal/types"
	"lustre/internal/values"
)

type wireAst struct {
	Nodes []wireNode `json:"nodes"`
}

type wireNode struct {
	Tag       string         `json:"tag,omitempty"` // "" or "test"
	Name      string         `json:"name"`
	Inputs    []wireParam    `json:"inputs,omitempty"`
	Outputs   []wireParam    `json:"outputs"`
	Locals    []wireParam    `json:"locals,omitempty"`
	Equations []wireEquation `json:"equations"`
}

type wireParam struct {
	Name string   `json:"name"`
	Type wireType `json:"type"`
}

type wireType struct {
	Kind  string     `json:"kind"` // unit|int|float|bool|char|string|tuple|array
	Elem  *wireType  `json:"elem,omitempty"`
	Elems []wireType `json:"elems,omitempty"`
	Len   *int       `json:"len,omitempty"`  // nil = unknown length (array only)
	Init  *bool      `json:"init,omitempty"` // nil defaults to true
}

type wireEquation struct {
	Name string   `json:"name"`
	Expr wireExpr `json:"expr"`
}

type wireExpr struct {
	Kind string `json:"kind"` // bin|un|if|array|tuple|call|var|lit

	Op string `json:"op,omitempty"`

	Lhs   *wireExpr `json:"lhs,omitempty"`
	Rhs   *wireExpr `json:"rhs,omitempty"`
	Unary *wireExpr `json:"unary,omitempty"`

	Cond *wireExpr `json:"cond,omitempty"`
	Yes  *wireExpr `json:"yes,omitempty"`
	No   *wireExpr `json:"no,omitempty"`

	Elems []wireExpr `json:"elems,omitempty"`

	Callee string     `json:"callee,omitempty"`
	Args   []wireExpr `json:"args,omitempty"`

	Name string `json:"name,omitempty"`

	Lit *wireValue `json:"lit,omitempty"`
}

// Value is the wire format for a single runtime value, exported so
// cmd/lustrec can decode per-instant input values without round-tripping
// through a whole Ast (used by the `run` command's input-stream format).
type Value = wireValue

// DecodeValue converts a wire Value into a runtime values.Value.
func DecodeValue(v Value) (values.Value, error) { return decodeValue(v) }

type wireValue struct {
	Kind   string      `json:"kind"` // unit|int|float|bool|char|string|tuple|array
	Int    int64       `json:"int,omitempty"`
	Float  float64     `json:"float,omitempty"`
	Bool   bool        `json:"bool,omitempty"`
	Char   string      `json:"char,omitempty"` // single rune
	String string      `json:"string,omitempty"`
	Elems  []wireValue `json:"elems,omitempty"`
}

// Decode reads a JSON-encoded Ast from r.
func Decode(r io.Reader) (*ast.Ast, error) {
	var w wireAst
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	out := &ast.Ast{Nodes: make([]ast.Node, len(w.Nodes))}
	for i, n := range w.Nodes {
		node, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		out.Nodes[i] = node
	}
	return out, nil
}

func decodeNode(n wireNode) (ast.Node, error) {
	tag := ast.NoTag
	if n.Tag == "test" {
		tag = ast.Test
	}
	node := ast.Node{
		Tag:  tag,
		Name: newIdent(n.Name),
	}
	for _, p := range n.Inputs {
		t, err := decodeType(p.Type)
		if err != nil {
			return ast.Node{}, err
		}
		node.Inputs = append(node.Inputs, ast.Param{Name: newIdent(p.Name), Type: t})
	}
	for _, p := range n.Outputs {
		t, err := decodeType(p.Type)
		if err != nil {
			return ast.Node{}, err
		}
		node.Outputs = append(node.Outputs, ast.Param{Name: newIdent(p.Name), Type: t})
	}
	for _, p := range n.Locals {
		t, err := decodeType(p.Type)
		if err != nil {
			return ast.Node{}, err
		}
		node.Locals = append(node.Locals, ast.Param{Name: newIdent(p.Name), Type: t})
	}
	for _, eq := range n.Equations {
		e, err := decodeExpr(eq.Expr)
		if err != nil {
			return ast.Node{}, err
		}
		node.Equations = append(node.Equations, ast.Equation{Name: newIdent(eq.Name), Expr: e})
	}
	return node, nil
}

func decodeType(t wireType) (types.VarType, error) {
	init := true
	if t.Init != nil {
		init = *t.Init
	}
	switch t.Kind {
	case "unit":
		return types.Prim(types.Unit).WithInit(init), nil
	case "int":
		return types.Prim(types.Int).WithInit(init), nil
	case "float":
		return types.Prim(types.Float).WithInit(init), nil
	case "bool":
		return types.Prim(types.Bool).WithInit(init), nil
	case "char":
		return types.Prim(types.Char).WithInit(init), nil
	case "string":
		return types.Prim(types.String).WithInit(init), nil
	case "tuple":
		elems := make([]types.VarType, len(t.Elems))
		for i, e := range t.Elems {
			et, err := decodeType(e)
			if err != nil {
				return types.VarType{}, err
			}
			elems[i] = et
		}
		return types.NewTuple(elems).WithInit(init), nil
	case "array":
		if t.Elem == nil {
			return types.VarType{}, fmt.Errorf("astjson: array type missing elem")
		}
		elem, err := decodeType(*t.Elem)
		if err != nil {
			return types.VarType{}, err
		}
		length := types.UnknownLength
		if t.Len != nil {
			length = types.KnownLength(*t.Len)
		}
		return types.NewArray(elem, length).WithInit(init), nil
	default:
		return types.VarType{}, fmt.Errorf("astjson: unknown type kind %q", t.Kind)
	}
}

func decodeExpr(e wireExpr) (ast.Expr, error) {
	switch e.Kind {
	case "lit":
		if e.Lit == nil {
			return nil, fmt.Errorf("astjson: lit expr missing value")
		}
		v, err := decodeValue(*e.Lit)
		if err != nil {
			return nil, err
		}
		return &ast.LitExpr{Value: v}, nil

	case "var":
		return &ast.VarExpr{Name: newIdent(e.Name)}, nil

	case "un":
		op, err := decodeUnaryOp(e.Op)
		if err != nil {
			return nil, err
		}
		if e.Unary == nil {
			return nil, fmt.Errorf("astjson: unary expr missing operand")
		}
		rhs, err := decodeExpr(*e.Unary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOpExpr{Op: op, Rhs: rhs}, nil

	case "bin":
		op, err := decodeBinOp(e.Op)
		if err != nil {
			return nil, err
		}
		if e.Lhs == nil || e.Rhs == nil {
			return nil, fmt.Errorf("astjson: bin expr missing operand")
		}
		lhs, err := decodeExpr(*e.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(*e.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.BinOpExpr{Op: op, Lhs: lhs, Rhs: rhs}, nil

	case "if":
		if e.Cond == nil || e.Yes == nil || e.No == nil {
			return nil, fmt.Errorf("astjson: if expr missing a branch")
		}
		cond, err := decodeExpr(*e.Cond)
		if err != nil {
			return nil, err
		}
		yes, err := decodeExpr(*e.Yes)
		if err != nil {
			return nil, err
		}
		no, err := decodeExpr(*e.No)
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Yes: yes, No: no}, nil

	case "array":
		elems, err := decodeExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayExpr{Elems: elems}, nil

	case "tuple":
		elems, err := decodeExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.TupleExpr{Elems: elems}, nil

	case "call":
		args, err := decodeExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Callee: newIdent(e.Callee), Args: args}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expr kind %q", e.Kind)
	}
}

func decodeExprs(ws []wireExpr) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(ws))
	for i, w := range ws {
		e, err := decodeExpr(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeValue(v wireValue) (values.Value, error) {
	switch v.Kind {
	case "unit":
		return values.Unit{}, nil
	case "int":
		return values.Int{V: v.Int}, nil
	case "float":
		return values.Float{V: v.Float}, nil
	case "bool":
		return values.Bool{V: v.Bool}, nil
	case "char":
		r := []rune(v.Char)
		if len(r) != 1 {
			return nil, fmt.Errorf("astjson: char value must be one rune, got %q", v.Char)
		}
		return values.Char{V: r[0]}, nil
	case "string":
		return values.String{V: v.String}, nil
	case "tuple":
		elems := make([]values.Value, len(v.Elems))
		for i, e := range v.Elems {
			ev, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return values.TupleFromSlice(elems), nil
	case "array":
		elems := make([]values.Value, len(v.Elems))
		for i, e := range v.Elems {
			ev, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return values.Array{Elems: elems}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown value kind %q", v.Kind)
	}
}

func decodeBinOp(s string) (values.BinOp, error) {
	switch s {
	case "+":
		return values.Add, nil
	case "-":
		return values.Sub, nil
	case "*":
		return values.Mult, nil
	case "/":
		return values.Div, nil
	case "==":
		return values.Eq, nil
	case "!=":
		return values.Neq, nil
	case "or":
		return values.Or, nil
	case "and":
		return values.And, nil
	case "fby":
		return values.Fby, nil
	case "->":
		return values.Arrow, nil
	default:
		return 0, fmt.Errorf("astjson: unknown binary operator %q", s)
	}
}

func decodeUnaryOp(s string) (values.UnaryOp, error) {
	switch s {
	case "-":
		return values.Neg, nil
	case "pre":
		return values.Pre, nil
	case "not":
		return values.Not, nil
	default:
		return 0, fmt.Errorf("astjson: unknown unary operator %q", s)
	}
}

func newIdent(name string) ident.Ident {
	return ident.New(name, ident.Position{Line: 1, Column: 1})
}
