package ast

import "lustre/internal/ident"
import "lustre/internal/types"

// Tag marks a node's role; currently only Test is defined (spec §3).
type Tag int

const (
	NoTag Tag = iota
	Test
)

// Param is a declared input or output: a name and its declared type.
type Param struct {
	Name ident.Ident
	Type types.VarType
}

// Equation is a single `name = expr ;` assignment. TermPos is the position
// of the terminating semicolon, used to anchor value inlay hints (spec §6).
type Equation struct {
	Name    ident.Ident
	Expr    Expr
	TermPos ident.Position
}

// Node is a declaration: optional Tag, name, ordered inputs/outputs,
// (unused in the core) locals, and ordered equations (spec §3 "Node").
//
// Invariant: within a node, input/output/local names are disjoint and
// unique; each output name has exactly one equation among the equations
// (an input standing in for an output is not permitted).
type Node struct {
	Tag       Tag
	TagPos    ident.Position // position of the #[test] tag, for its verdict hint
	Name      ident.Ident
	Inputs    []Param
	Outputs   []Param
	Locals    []Param
	Equations []Equation
}

// Equation looks up the equation defining name, if any.
func (n *Node) Equation(name ident.Ident) (Equation, bool) {
	for _, eq := range n.Equations {
		if eq.Name.Equal(name) {
			return eq, true
		}
	}
	return Equation{}, false
}

// IsOutput reports whether name is one of the node's outputs, and its index.
func (n *Node) IsOutput(name ident.Ident) (int, bool) {
	for i, p := range n.Outputs {
		if p.Name.Equal(name) {
			return i, true
		}
	}
	return 0, false
}

// IsInput reports whether name is one of the node's inputs, and its index.
func (n *Node) IsInput(name ident.Ident) (int, bool) {
	for i, p := range n.Inputs {
		if p.Name.Equal(name) {
			return i, true
		}
	}
	return 0, false
}

// Ast is an ordered sequence of nodes. Invariant: node names are unique.
type Ast struct {
	Nodes []Node
}

// Node looks up a node by name.
func (a *Ast) Node(name ident.Ident) (*Node, bool) {
	for i := range a.Nodes {
		if a.Nodes[i].Name.Equal(name) {
			return &a.Nodes[i], true
		}
	}
	return nil, false
}

// ShellFrom copies a node's declaration (tag, name, I/O) but clears its
// equations, used by the constant propagator to build the rewritten AST one
// node at a time (spec §4.6 "Copy the node shell").
func ShellFrom(n *Node) Node {
	return Node{
		Tag:     n.Tag,
		TagPos:  n.TagPos,
		Name:    n.Name,
		Inputs:  append([]Param(nil), n.Inputs...),
		Outputs: append([]Param(nil), n.Outputs...),
		Locals:  append([]Param(nil), n.Locals...),
	}
}
