package check

import (
	"fmt"

	"golang.org/x/exp/slices"

	"lustre/internal/ast"
	"lustre/internal/diag"
	"lustre/internal/ident"
	"lustre/internal/types"
)

// FunctionType is a node's call signature: its ordered inputs and outputs.
// Grounded on the original's FunctionType (analyzer/src/checker/function_type.rs).
type FunctionType struct {
	Inputs  []ast.Param
	Outputs []ast.Param
}

// collectSignatures runs the checker's first pass (spec §4.1, "Two-pass
// signature-then-body checking", SPEC_FULL.md supplemented feature): build
// every node's FunctionType up front, flagging duplicate declared names
// along the way, before any equation body is typed. Nodes whose name
// collides with an earlier one are recorded in dup so pass two can skip
// their bodies.
func collectSignatures(a *ast.Ast) (map[string]FunctionType, map[string]bool, []diag.Diagnostic) {
	sigs := make(map[string]FunctionType)
	dup := make(map[string]bool)
	var diags []diag.Diagnostic

	for i := range a.Nodes {
		n := &a.Nodes[i]
		diags = append(diags, checkUniqueNames(n.Inputs, "Input name already used.")...)
		diags = append(diags, checkUniqueNames(n.Outputs, "Output name already used.")...)
		diags = append(diags, checkUniqueNames(n.Locals, "Var name already used.")...)

		if _, seen := sigs[n.Name.Name]; seen {
			dup[n.Name.Name] = true
			diags = append(diags, diag.Diagnostic{
				Severity: diag.Error,
				Range:    ident.Span{Start: n.Name.Pos, End: n.Name.End()},
				Message:  fmt.Sprintf("Function name '%s' already defined in this file.", n.Name.Name),
			})
			continue
		}

		ft := FunctionType{Inputs: n.Inputs, Outputs: n.Outputs}
		if len(ft.Inputs) == 0 {
			// A nullary node still takes one Unit argument at call sites
			// (spec §6 "empty call sites are rewritten"); give it a
			// synthetic input so arity/type matching sees a real slot.
			ft.Inputs = []ast.Param{{Name: n.Name, Type: types.Prim(types.Unit)}}
		}
		sigs[n.Name.Name] = ft
	}
	return sigs, dup, diags
}

func checkUniqueNames(params []ast.Param, message string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	var seen []string
	for _, p := range params {
		if slices.Contains(seen, p.Name.Name) {
			diags = append(diags, diag.Diagnostic{
				Severity: diag.Error,
				Range:    ident.Span{Start: p.Name.Pos, End: p.Name.End()},
				Message:  message,
			})
			continue
		}
		seen = append(seen, p.Name.Name)
	}
	return diags
}

// numeralString names an argument's 1-based ordinal position the way the
// original checker does (analyzer/src/checker/types.rs::numeral_string),
// quirk and all: every position past the first gets an "nd" suffix, not
// "rd"/"th". Kept verbatim — SPEC_FULL.md supplemented feature.
func numeralString(i int) string {
	if i == 0 {
		return "1st"
	}
	return fmt.Sprintf("%dnd", i+1)
}
