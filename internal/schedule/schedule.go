// Package schedule linearizes a compiled.CNode into an evaluation order
// (spec §4.4): a DFS-postorder traversal that treats a Pre node's Src edge
// as a back-edge and cuts it, since Pre reads last instant's buffered
// value rather than depending on its source within the same instant.
//
// Grounded on spec §4.4's own algorithm description rather than the
// original's mark-and-sweep analyzer/src/interpreter/compiled_ast/schedule.rs
// — spec.md is authoritative here, and its DFS-postorder formulation is
// simpler than what it was distilled from (see DESIGN.md).
package schedule

import (
	"lustre/internal/compiled"
	"lustre/internal/values"
)

// Order returns a valid evaluation order for every expression in n: every
// non-Pre dependency of an index appears before it. Pre dependencies are
// deliberately unordered relative to their Src, since a Pre only needs
// Src's value from the previous instant.
func Order(n *compiled.CNode) []compiled.Idx {
	visited := make([]bool, len(n.Exprs))
	order := make([]compiled.Idx, 0, len(n.Exprs))

	var visit func(idx compiled.Idx)
	visit = func(idx compiled.Idx) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		e := n.Exprs[idx]
		switch e.Kind {
		case compiled.CBinOp:
			visit(e.Lhs)
			visit(e.Rhs)
		case compiled.CUnaryOp:
			visit(e.Unary)
		case compiled.CIf:
			visit(e.Cond)
			visit(e.Yes)
			visit(e.No)
		case compiled.CTuple, compiled.CArray:
			for _, el := range e.Elems {
				visit(el)
			}
		case compiled.CVar:
			visit(e.Alias)
		case compiled.COutput:
			visit(e.Src)
		case compiled.CPre:
			// Cut: Src is scheduled on its own, via this loop's later root
			// visit, never as a prerequisite of this Pre node.
		}
		order = append(order, idx)
	}

	for i := range n.Exprs {
		visit(compiled.Idx(i))
	}
	return order
}

// Reset clears n's per-instant Values and its Pre memory and resets its
// instant tag to Initial, ready for a fresh run from instant 0 (spec §4.4
// "resetting instant to Initial"). It does not compute an order; that is
// Order's job.
func Reset(n *compiled.CNode) {
	n.Instant = values.Initial
	n.Values = make([]values.Value, len(n.Exprs))
	n.PreValues = make(map[compiled.Idx]values.Value)
}
