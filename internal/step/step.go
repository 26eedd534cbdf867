// Package step is the one-instant interpreter (spec §4.5): given a
// scheduled compiled.CNode and this instant's input values, it fills in
// every expression's Values slot in schedule order, then advances Pre
// memory and the instant tag. Grounded on the original's
// analyzer/src/interpreter/compiled_ast/step.rs, adapted to a single
// forward pass over the order schedule.Order returns (the original iterates
// in reverse, an artifact of its own Set/Get index convention that does not
// transfer).
package step

import (
	"lustre/internal/compiled"
	"lustre/internal/lustreerr"
	"lustre/internal/values"
)

// Step evaluates one instant of n, given order (from schedule.Order) and
// this instant's input values (one per n.InputIdx slot). On return,
// n.Values holds every expression's value for this instant and n.Instant
// has advanced to what the NEXT call to Step should use.
func Step(n *compiled.CNode, order []compiled.Idx, inputs []values.Value) error {
	if n.Values == nil {
		n.Values = make([]values.Value, len(n.Exprs))
	}

	for _, idx := range order {
		e := n.Get(idx)
		switch e.Kind {
		case compiled.CInput:
			if e.InputSlot >= len(inputs) {
				return lustreerr.New(lustreerr.BadIndex, "input slot %d out of range (%d inputs given)", e.InputSlot, len(inputs))
			}
			n.Values[idx] = inputs[e.InputSlot]

		case compiled.CLit:
			n.Values[idx] = e.Lit

		case compiled.CVar:
			n.Values[idx] = n.Values[e.Alias]

		case compiled.COutput:
			n.Values[idx] = n.Values[e.Src]

		case compiled.CPre:
			n.Values[idx] = n.PreValues[idx]

		case compiled.CBinOp:
			n.Values[idx] = values.BinOp(e.Op).Apply(n.Values[e.Lhs], n.Values[e.Rhs], n.Instant)

		case compiled.CUnaryOp:
			n.Values[idx] = values.UnaryOp(e.Op).Apply(n.Values[e.Unary], n.Instant)

		case compiled.CIf:
			n.Values[idx] = evalIf(n, e)

		case compiled.CTuple:
			n.Values[idx] = values.TupleFromSlice(gather(n, e.Elems))

		case compiled.CArray:
			n.Values[idx] = values.Array{Elems: gather(n, e.Elems)}
		}
	}

	// Buffer every Pre's source value for next instant, then advance.
	for idx, e := range n.Exprs {
		if e.Kind == compiled.CPre {
			n.PreValues[compiled.Idx(idx)] = n.Values[e.Src]
		}
	}
	n.Instant = n.Instant.Next()

	for _, out := range n.OutputIdx {
		if n.Values[out] == nil {
			return lustreerr.New(lustreerr.MissingOutput, "node %q produced no value for output slot", n.Name)
		}
	}
	return nil
}

func gather(n *compiled.CNode, idxs []compiled.Idx) []values.Value {
	out := make([]values.Value, len(idxs))
	for i, idx := range idxs {
		out[i] = n.Values[idx]
	}
	return out
}

func evalIf(n *compiled.CNode, e compiled.CExpr) values.Value {
	cond, ok := n.Values[e.Cond].(values.Bool)
	if !ok {
		return nil
	}
	// Strict: both branches were already evaluated in schedule order
	// (spec §9 open question: `if` is strict, no short-circuiting).
	if cond.V {
		return n.Values[e.Yes]
	}
	return n.Values[e.No]
}
