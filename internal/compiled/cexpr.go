// Package compiled is the flat compiled IR (spec §4.3 "Compiled AST"): a
// single dense array of tagged CExpr nodes addressed by Idx, with Pre as
// the sole memory-carrying element. Grounded on the teacher's
// internal/bytecode.Chunk (a flat instruction array addressed by index,
// walked instead of recursed), adapted from bytecode instructions to a
// CExpr DAG per spec §4.3.
package compiled

import "lustre/internal/values"

// Idx is a dense index into a CNode's Exprs array.
type Idx uint32

// CExprKind tags a compiled expression node's shape.
type CExprKind int

const (
	CInput CExprKind = iota
	COutput
	CPre
	CBinOp
	CUnaryOp
	CIf
	CLit
	CVar
	// CTuple / CArray combine several already-compiled scalar Idx slots
	// into one aggregate value; produced when lowering tuple/array
	// literals and when an inlined call has more than one output. Calls
	// themselves are never a CExpr variant: spec §4.3 always inlines them,
	// array-lifted or not (see internal/compile.inlineCall).
	CTuple
	CArray
)

// CExpr is one flat node of the compiled IR. Only the fields relevant to
// Kind are meaningful; unused fields are zero. Grounded on spec §4.3's
// enumeration of compiled-node shapes.
type CExpr struct {
	Kind CExprKind

	// CInput: which declared input slot (0-based) this reads.
	InputSlot int

	// CPre: the single predecessor read from last instant's value. This is
	// the only element the scheduler treats as a back-edge.
	Src Idx

	// CBinOp / CUnaryOp
	Op    int // values.BinOp or values.UnaryOp, per Kind
	Lhs   Idx
	Rhs   Idx
	Unary Idx

	// CIf
	Cond, Yes, No Idx

	// CLit
	Lit values.Value

	// CVar: an alias into another Idx. internal/compile does not emit it
	// (outputs forward through COutput's Src instead); schedule.Order and
	// step.Step still evaluate it.
	Alias Idx

	// CTuple / CArray
	Elems []Idx
}

// CNode is one compiled node: its flat expression DAG plus the Idx of each
// declared output (spec §4.3). Exprs[i].Kind == CInput appears once per
// declared input, in declaration order, and Idx i is an input's own slot
// number's home in the array (so "reading input k" means evaluating
// Exprs[InputIdx[k]]).
type CNode struct {
	Name string

	Exprs []CExpr
	// Infos is a parallel debug-tag vector, one string per Exprs entry,
	// naming where that node came from in the source (spec §4.3
	// supplemented feature: "debug infos tags on compiled expressions").
	Infos []string

	InputIdx  []Idx // one per declared input, in order
	OutputIdx []Idx // one per declared output, in order

	// Values holds each expression's value at the current instant; nil
	// means "not yet computed" or "undefined this instant". A Pre node's
	// slot is refilled each step from PreValues.
	Values []values.Value
	// PreValues holds, for each CPre node (indexed by its own Idx), the
	// value produced at the end of the previous instant.
	PreValues map[Idx]values.Value

	Instant values.Instant
}

// NewCNode allocates an empty compiled node ready for the compiler to push
// expressions into.
func NewCNode(name string) *CNode {
	return &CNode{
		Name:      name,
		PreValues: make(map[Idx]values.Value),
		Instant:   values.Initial,
	}
}

// Push appends e (with its debug tag) and returns its new Idx.
func (n *CNode) Push(e CExpr, info string) Idx {
	idx := Idx(len(n.Exprs))
	n.Exprs = append(n.Exprs, e)
	n.Infos = append(n.Infos, info)
	return idx
}

// Get returns the expression at idx.
func (n *CNode) Get(idx Idx) CExpr { return n.Exprs[idx] }

// Len is the number of compiled expressions.
func (n *CNode) Len() int { return len(n.Exprs) }

// Equal reports whether two CExprs are structurally identical. The
// compiler's push-with-memoization does not call it; it keys its memo on
// internal/compile.memoKey strings built from the same fields. Lit compares
// by value equality, not identity.
func Equal(a, b CExpr) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case CInput:
		return a.InputSlot == b.InputSlot
	case COutput:
		return a.Src == b.Src
	case CPre:
		return a.Src == b.Src
	case CBinOp:
		return a.Op == b.Op && a.Lhs == b.Lhs && a.Rhs == b.Rhs
	case CUnaryOp:
		return a.Op == b.Op && a.Unary == b.Unary
	case CIf:
		return a.Cond == b.Cond && a.Yes == b.Yes && a.No == b.No
	case CLit:
		return values.Equal(a.Lit, b.Lit)
	case CVar:
		return a.Alias == b.Alias
	case CTuple, CArray:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if a.Elems[i] != b.Elems[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
