package ast

import "lustre/internal/values"

// GetValue returns the literal value carried by a LitExpr, or false for any
// other expression shape. Mirrors the original's `Expr::get_value`.
func GetValue(e Expr) (values.Value, bool) {
	lit, ok := e.(*LitExpr)
	if !ok {
		return nil, false
	}
	return lit.Value, true
}

// IsOnlyTrueEquation reports whether n has exactly one equation whose LHS
// is its sole output and whose RHS is the literal `true` — the test-verdict
// predicate used by the constant propagator (spec §4.6 "is_only_true_equations").
func IsOnlyTrueEquation(n *Node) bool {
	if len(n.Outputs) != 1 || len(n.Equations) != 1 {
		return false
	}
	eq := n.Equations[0]
	if !eq.Name.Equal(n.Outputs[0].Name) {
		return false
	}
	v, ok := GetValue(eq.Expr)
	if !ok {
		return false
	}
	b, ok := v.(values.Bool)
	return ok && b.V
}
