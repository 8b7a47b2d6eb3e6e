package ast

import "src.xs.sh/pkg/types"

// Literal is a constant. Value holds the Go representation of the constant:
// int, int64, float32, float64, bool, rune, string, or nil.
type Literal struct {
	exprNode
	Span
	Value any
	Typ   *types.Type
}

func (n *Literal) Type() *types.Type { return n.Typ }

// VarRef reads a variable.
type VarRef struct {
	exprNode
	Span
	Var *Variable
}

func (n *VarRef) Type() *types.Type { return n.Var.Type }

// Unary applies a unary operator. For the increment and decrement
// operators, X is the target being modified.
type Unary struct {
	exprNode
	Span
	Op  UnaryOp
	X   Node
	Typ *types.Type
}

func (n *Unary) Type() *types.Type { return n.Typ }

// Binary applies a binary operator.
type Binary struct {
	exprNode
	Span
	Op   BinaryOp
	X, Y Node
	Typ  *types.Type
}

func (n *Binary) Type() *types.Type { return n.Typ }

// Assign stores a value into a variable, member or element. A compound
// assignment like x += 1 is stored with Op set to AddAssign and Value set to
// the desugared x + 1.
type Assign struct {
	exprNode
	Span
	Op     AssignOp
	Target Node
	Value  Node
}

func (n *Assign) Type() *types.Type { return n.Target.Type() }

// Conditional evaluates Then or Else depending on Test. It is built from
// if/else statements. Else may be nil.
type Conditional struct {
	exprNode
	Span
	Test       Node
	Then, Else Node
	Typ        *types.Type
}

func (n *Conditional) Type() *types.Type { return n.Typ }

// Lambda is an anonymous function.
type Lambda struct {
	exprNode
	Span
	Params []*Variable
	Body   *Block
	Typ    *types.Type
}

func (n *Lambda) Type() *types.Type { return n.Typ }

// Invoke calls a lambda value.
type Invoke struct {
	exprNode
	Span
	Fn   Node
	Args []Node
}

func (n *Invoke) Type() *types.Type { return n.Fn.Type().Ret }

// Call calls a method of a host type. Recv is nil for static methods.
type Call struct {
	exprNode
	Span
	Recv   Node
	Owner  *types.Type
	Method *types.Method
	Args   []Node
}

func (n *Call) Type() *types.Type { return n.Method.Ret }

// Member accesses a field or property. Recv is nil for static members. The
// builtin Length of arrays and strings is represented with a Member whose
// Member field is synthesized by the parser.
type Member struct {
	exprNode
	Span
	Recv   Node
	Owner  *types.Type
	Member *types.Member
}

func (n *Member) Type() *types.Type { return n.Member.Type }

// Index accesses an element of an array, a string, or an indexable host
// value. Get and Set are the accessor methods of host values; they are nil
// for arrays and strings, and Set is nil for read-only host values.
type Index struct {
	exprNode
	Span
	X        Node
	Index    Node
	Typ      *types.Type
	Get, Set *types.Method
}

func (n *Index) Type() *types.Type { return n.Typ }

// New constructs a host object.
type New struct {
	exprNode
	Span
	Typ  *types.Type
	Ctor *types.Method
	Args []Node
}

func (n *New) Type() *types.Type { return n.Typ }

// NewArray constructs an array, either from a list of elements or with a
// length. Exactly one of Elems and Len is used; Len is nil when Elems is.
type NewArray struct {
	exprNode
	Span
	Elem  *types.Type
	Elems []Node
	Len   Node
}

func (n *NewArray) Type() *types.Type { return types.ArrayOf(n.Elem) }

// Default produces the zero value of a type.
type Default struct {
	exprNode
	Span
	Typ *types.Type
}

func (n *Default) Type() *types.Type { return n.Typ }

// Block evaluates a sequence of nodes, producing the value of the last one.
// Vars lists the variables declared directly in the block.
type Block struct {
	exprNode
	Span
	Vars []*Variable
	Body []Node
}

func (n *Block) Type() *types.Type {
	if len(n.Body) == 0 {
		return types.Void
	}
	return n.Body[len(n.Body)-1].Type()
}
