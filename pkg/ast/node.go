// Package ast defines the abstract syntax tree of XS.
//
// Nodes are built by the parser and never mutated afterwards. Each node
// exclusively owns its children. Every expression is typed when it is built,
// so Type never needs to look at anything but the node itself.
//
// Variables and labels are the only values shared between nodes: a Variable
// is created once when it is declared, and every reference to it points to
// the same Variable.
package ast

import (
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/types"
)

// Span is the source location of a node.
type Span struct {
	// Offset and Length are in bytes.
	Offset int
	Length int
	// Line and Column are 1-based. A zero Line means the location is
	// unknown, which is the case for nodes synthesized by desugaring.
	Line   int
	Column int
}

// Range returns the span as a diag.Ranging.
func (s Span) Range() diag.Ranging {
	return diag.Ranging{From: s.Offset, To: s.Offset + s.Length}
}

// Pos returns the span itself. It is promoted to all nodes.
func (s Span) Pos() Span { return s }

// Node is a node in the tree.
type Node interface {
	diag.Ranger
	Pos() Span
	// Type returns the static type of the value the node produces. Nodes that
	// do not produce a value return types.Void.
	Type() *types.Type
	node()
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	expr()
}

// Stmt is a node that is executed for its effect.
type Stmt interface {
	Node
	stmt()
}

type exprNode struct{}

func (exprNode) node() {}
func (exprNode) expr() {}

type stmtNode struct{}

func (stmtNode) node() {}
func (stmtNode) stmt() {}

// Variable is a typed local binding. Its identity is its address.
type Variable struct {
	Name string
	Type *types.Type
}

func (v *Variable) String() string { return v.Name + ": " + v.Type.String() }

// Label is a jump target. Labels of loops are synthesized and have names
// starting with a '$'; labels declared in source use the name given there.
type Label struct {
	Name string
}

func (l *Label) String() string { return l.Name }

// Program is the root of a parsed source.
type Program struct {
	Body *Block
	// Source text the program was parsed from.
	Source string
	// Name of the source, used in diagnostics.
	Name string
}

// Type returns the static type of the program's result.
func (p *Program) Type() *types.Type { return p.Body.Type() }
