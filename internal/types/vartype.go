// Package types represents value types: a structural inner kind plus an
// initialization bit tracking whether a stream has a value at instant 0
// (spec §3 "Value type (VarType)").
package types

import (
	"fmt"
	"strings"
)

// Kind tags the structural shape of a VarType, ignoring initialization.
type Kind int

const (
	Unit Kind = iota
	Int
	Float
	Bool
	Char
	String
	Tuple
	Array
)

func (k Kind) String() string {
	switch k {
	case Unit:
		return "unit"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case String:
		return "string"
	case Tuple:
		return "tuple"
	case Array:
		return "array"
	default:
		return "?"
	}
}

// Length is an array length: either a known natural number or Unknown.
type Length struct {
	Known bool
	Value int
}

// UnknownLength is the length of an array whose size was not pinned down
// (e.g. a lifted call result, spec §4.1.1).
var UnknownLength = Length{Known: false}

// KnownLength builds a fixed array length.
func KnownLength(n int) Length {
	return Length{Known: true, Value: n}
}

// mergeLength unifies two array lengths: Unknown unifies with any known
// length to that length (spec §3 "merge").
func mergeLength(a, b Length) (Length, bool) {
	switch {
	case !a.Known && !b.Known:
		return UnknownLength, true
	case !a.Known:
		return b, true
	case !b.Known:
		return a, true
	case a.Value == b.Value:
		return a, true
	default:
		return Length{}, false
	}
}

// VarType is a structural type: an inner kind plus an initialization bit.
// Initialized == true means the stream has a defined value at instant 0.
type VarType struct {
	Kind        Kind
	Elem        *VarType  // Tuple elements flattened here via Elems; Array uses Elem
	Elems       []VarType // Tuple inner kinds
	Len         Length    // Array length
	Initialized bool
}

// Prim builds an initialized primitive type (Unit/Int/Float/Bool/Char/String).
func Prim(k Kind) VarType {
	return VarType{Kind: k, Initialized: true}
}

// NewTuple builds an initialized tuple type from element types.
func NewTuple(elems []VarType) VarType {
	return VarType{Kind: Tuple, Elems: elems, Initialized: true}
}

// NewArray builds an initialized array type of the given element type and length.
func NewArray(elem VarType, length Length) VarType {
	e := elem
	return VarType{Kind: Array, Elem: &e, Len: length, Initialized: true}
}

// WithInit returns a copy of t with its initialization bit set to init.
func (t VarType) WithInit(init bool) VarType {
	t.Initialized = init
	return t
}

// RemoveOnePre sets the initialization bit to true; used by the arrow
// operator's result type (spec §3 "remove_one_pre").
func RemoveOnePre(t VarType) VarType {
	return t.WithInit(true)
}

// EqualWithoutPre ignores the initialization bit and compares the
// structural shape only (spec §3 "equal_without_pre").
func EqualWithoutPre(a, b VarType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !EqualWithoutPre(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		if _, ok := mergeLength(a.Len, b.Len); !ok {
			return false
		}
		return EqualWithoutPre(*a.Elem, *b.Elem)
	default:
		return true
	}
}

// Equal is full structural equality, including the initialization bit and
// exact array lengths (Unknown equals only Unknown). Used by call-argument
// type matching (spec §4.1.1), which is stricter than EqualWithoutPre.
func Equal(a, b VarType) bool {
	if a.Kind != b.Kind || a.Initialized != b.Initialized {
		return false
	}
	switch a.Kind {
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		if a.Len.Known != b.Len.Known || (a.Len.Known && a.Len.Value != b.Len.Value) {
			return false
		}
		return Equal(*a.Elem, *b.Elem)
	default:
		return true
	}
}

// EqualArrayOf returns true iff a is Array(t, _) and t's shape equals b's
// shape (spec §3 "equal_array_of"), used by the call-lifting classifier.
func EqualArrayOf(a, b VarType) bool {
	if a.Kind != Array {
		return false
	}
	return EqualWithoutPre(*a.Elem, b)
}

// Merge performs a structural match with array-length merge; the result's
// initialization bit is the logical AND of both inputs (spec §3 "merge").
// Returns ok=false when the shapes are incompatible.
func Merge(a, b VarType) (VarType, bool) {
	if a.Kind != b.Kind {
		return VarType{}, false
	}
	init := a.Initialized && b.Initialized
	switch a.Kind {
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return VarType{}, false
		}
		elems := make([]VarType, len(a.Elems))
		for i := range a.Elems {
			m, ok := Merge(a.Elems[i], b.Elems[i])
			if !ok {
				return VarType{}, false
			}
			elems[i] = m
		}
		return VarType{Kind: Tuple, Elems: elems, Initialized: init}, true
	case Array:
		length, ok := mergeLength(a.Len, b.Len)
		if !ok {
			return VarType{}, false
		}
		elem, ok := Merge(*a.Elem, *b.Elem)
		if !ok {
			return VarType{}, false
		}
		return VarType{Kind: Array, Elem: &elem, Len: length, Initialized: init}, true
	default:
		return VarType{Kind: a.Kind, Initialized: init}, true
	}
}

// ArrayOf wraps t in an Array of unknown length, used when lifting a call's
// output types over an array argument (spec §4.1.1).
func ArrayOf(t VarType) VarType {
	return NewArray(t, UnknownLength)
}

// TupleFromSlice mirrors the runtime's "a singleton tuple is never
// constructed" rule at the type level: a single-element slice collapses to
// that element's type.
func TupleFromSlice(ts []VarType) VarType {
	if len(ts) == 1 {
		return ts[0]
	}
	return NewTuple(ts)
}

func (t VarType) String() string {
	var sb strings.Builder
	if !t.Initialized {
		sb.WriteString("pre ")
	}
	switch t.Kind {
	case Tuple:
		sb.WriteString("(")
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(")")
	case Array:
		if t.Len.Known {
			sb.WriteString(fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len.Value))
		} else {
			sb.WriteString(fmt.Sprintf("[%s]", t.Elem.String()))
		}
	default:
		sb.WriteString(t.Kind.String())
	}
	return sb.String()
}
