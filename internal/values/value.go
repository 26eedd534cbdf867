// Package values implements the runtime tagged union (spec §3 "Value") and
// the operator apply-rules parametric on the current instant (spec §4.2).
//
// Mirrors the teacher's `vm.Value interface{}` + type-switch idiom
// (internal/vm/value.go) but closes the union over the set spec.md names,
// exhaustively matched everywhere a Value is consumed.
package values

import (
	"fmt"
	"strings"

	"lustre/internal/types"
)

// Value is the runtime tagged union. Concrete variants below implement it.
type Value interface {
	isValue()
	// TypeOf projects this value onto its structural VarType (always
	// initialized — runtime values only exist once defined).
	TypeOf() types.VarType
	String() string
}

type Unit struct{}

func (Unit) isValue()              {}
func (Unit) TypeOf() types.VarType { return types.Prim(types.Unit) }
func (Unit) String() string        { return "()" }

type Int struct{ V int64 }

func (Int) isValue()              {}
func (Int) TypeOf() types.VarType { return types.Prim(types.Int) }
func (v Int) String() string      { return fmt.Sprintf("%d", v.V) }

type Float struct{ V float64 }

func (Float) isValue()              {}
func (Float) TypeOf() types.VarType { return types.Prim(types.Float) }
func (v Float) String() string      { return fmt.Sprintf("%g", v.V) }

type Bool struct{ V bool }

func (Bool) isValue()              {}
func (Bool) TypeOf() types.VarType { return types.Prim(types.Bool) }
func (v Bool) String() string      { return fmt.Sprintf("%t", v.V) }

type Char struct{ V rune }

func (Char) isValue()              {}
func (Char) TypeOf() types.VarType { return types.Prim(types.Char) }
func (v Char) String() string      { return fmt.Sprintf("'%c'", v.V) }

type String struct{ V string }

func (String) isValue()              {}
func (String) TypeOf() types.VarType { return types.Prim(types.String) }
func (v String) String() string      { return fmt.Sprintf("%q", v.V) }

// Tuple is a runtime sequence of values. A singleton tuple is never
// constructed; use TupleFromSlice instead of this literal directly.
type Tuple struct{ Elems []Value }

func (Tuple) isValue() {}
func (t Tuple) TypeOf() types.VarType {
	ts := make([]types.VarType, len(t.Elems))
	for i, e := range t.Elems {
		ts[i] = e.TypeOf()
	}
	return types.NewTuple(ts)
}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Array is a runtime sequence of values, all of the same type by construction.
type Array struct{ Elems []Value }

func (Array) isValue() {}
func (a Array) TypeOf() types.VarType {
	if len(a.Elems) == 0 {
		return types.NewArray(types.Prim(types.Unit), types.KnownLength(0))
	}
	return types.NewArray(a.Elems[0].TypeOf(), types.KnownLength(len(a.Elems)))
}
func (a Array) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleFromSlice returns the sole element unwrapped for a singleton slice,
// otherwise a Tuple (spec §3: "tuple_from_vec returns the sole element as
// itself").
func TupleFromSlice(vs []Value) Value {
	if len(vs) == 1 {
		return vs[0]
	}
	return Tuple{Elems: vs}
}

// Equal performs deep structural equality, used by Eq/Neq (deepEqual) and
// by compiled.Equal's Lit case.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Unit:
		_, ok := b.(Unit)
		return ok
	case Int:
		bv, ok := b.(Int)
		return ok && av.V == bv.V
	case Float:
		bv, ok := b.(Float)
		return ok && av.V == bv.V
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.V == bv.V
	case Char:
		bv, ok := b.(Char)
		return ok && av.V == bv.V
	case String:
		bv, ok := b.(String)
		return ok && av.V == bv.V
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
