package ast

import "src.xs.sh/pkg/types"

// Declare introduces a variable. Init is nil when there is no initializer,
// in which case the variable holds the zero value of its type.
type Declare struct {
	stmtNode
	Span
	Var  *Variable
	Init Node
}

func (n *Declare) Type() *types.Type { return n.Var.Type }

// Return leaves the innermost lambda, or the program at the top level. Value
// is nil for a bare return.
type Return struct {
	stmtNode
	Span
	Value Node
}

func (n *Return) Type() *types.Type { return types.Void }

// Throw raises an exception.
type Throw struct {
	stmtNode
	Span
	Value Node
}

func (n *Throw) Type() *types.Type { return types.Void }

// Break exits the loop owning Label.
type Break struct {
	stmtNode
	Span
	Label *Label
}

func (n *Break) Type() *types.Type { return types.Void }

// Continue jumps to the continue point of the loop owning Label.
type Continue struct {
	stmtNode
	Span
	Label *Label
}

func (n *Continue) Type() *types.Type { return types.Void }

// Goto jumps to a label declared in the same or an enclosing block.
type Goto struct {
	stmtNode
	Span
	Label *Label
}

func (n *Goto) Type() *types.Type { return types.Void }

// LabelStmt marks a goto target.
type LabelStmt struct {
	stmtNode
	Span
	Label *Label
}

func (n *LabelStmt) Type() *types.Type { return types.Void }

// Loop repeats Body. The loop keyword produces a Loop with only a body;
// while and for loops also set Test, evaluated before each iteration, and
// Step, evaluated at the continue point.
type Loop struct {
	stmtNode
	Span
	Test     Node
	Body     *Block
	Step     Node
	Break    *Label
	Continue *Label
}

func (n *Loop) Type() *types.Type { return types.Void }

// Case is one case of a Switch.
type Case struct {
	Values []Node
	Body   []Node
}

// Switch selects the first case with a value equal to Value. Cases do not
// fall through. A break inside a case jumps to Break, which ends the switch.
type Switch struct {
	stmtNode
	Span
	Value   Node
	Cases   []*Case
	Default []Node
	Typ     *types.Type
	Break   *Label
}

func (n *Switch) Type() *types.Type { return n.Typ }

// Catch is a catch clause of a Try. Var may be nil.
type Catch struct {
	ExcType *types.Type
	Var     *Variable
	Body    *Block
}

// Try runs Body, running the first matching catch clause if an exception is
// thrown and Finally in any case. Finally may be nil.
type Try struct {
	stmtNode
	Span
	Body    *Block
	Catches []*Catch
	Finally *Block
}

func (n *Try) Type() *types.Type { return n.Body.Type() }

// Directive is a #-directive, like #r "pkg: Name, ^1.0". Directives take
// effect while parsing and are no-ops when executed.
type Directive struct {
	stmtNode
	Span
	Name string
	Arg  string
}

func (n *Directive) Type() *types.Type { return types.Void }

// DebugPoint captures the state of the program for a debugger before the
// statement at Line and Column runs. Cond is the condition of an explicit
// debug(cond) statement and is nil otherwise.
type DebugPoint struct {
	stmtNode
	Span
	Line, Column int
	Text         string
	Vars         []*Variable
	Explicit     bool
	Cond         Node
}

func (n *DebugPoint) Type() *types.Type { return types.Void }
