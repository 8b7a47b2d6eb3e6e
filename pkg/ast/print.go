package ast

import (
	"strconv"
	"strings"

	"src.xs.sh/pkg/scan"
	"src.xs.sh/pkg/types"
)

// Print returns XS source text for a node. Parsing the output yields a tree
// that is equal to n except for source spans.
func Print(n Node) string {
	var p printer
	p.node(n)
	return p.sb.String()
}

// PrintProgram returns XS source text for a whole program, one statement per
// line.
func PrintProgram(prog *Program) string {
	var p printer
	p.stmts(prog.Body.Body, true)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) write(ss ...string) {
	for _, s := range ss {
		p.sb.WriteString(s)
	}
}

func (p *printer) newline() {
	p.sb.WriteByte('\n')
	p.sb.WriteString(strings.Repeat("  ", p.indent))
}

// IsComplex reports whether a node is printed as a self-delimiting statement
// that is not followed by a semicolon.
func IsComplex(n Node) bool {
	switch n := n.(type) {
	case *Conditional, *Loop, *Switch, *Try, *Block, *LabelStmt, *Directive:
		return true
	case *DebugPoint:
		return !n.Explicit
	}
	return false
}

func (p *printer) stmts(body []Node, top bool) {
	first := true
	for _, n := range body {
		if d, ok := n.(*DebugPoint); ok && !d.Explicit {
			continue
		}
		if !first || !top {
			p.newline()
		}
		first = false
		p.node(n)
		if !IsComplex(n) {
			p.write(";")
		}
	}
}

func (p *printer) block(b *Block) {
	p.write("{")
	p.indent++
	p.stmts(b.Body, false)
	p.indent--
	if len(b.Body) > 0 {
		p.newline()
	}
	p.write("}")
}

func (p *printer) list(ns []Node) {
	for i, n := range ns {
		if i > 0 {
			p.write(", ")
		}
		p.node(n)
	}
}

// Operands that are not primary expressions are parenthesized when they
// appear under an operator.
func (p *printer) operand(n Node, parentPrec int, right bool) {
	paren := false
	switch n := n.(type) {
	case *Binary:
		prec := n.Op.Precedence()
		paren = prec < parentPrec || (right && prec == parentPrec)
	case *Conditional, *Assign, *Lambda, *Switch, *Try, *Loop:
		paren = true
	case *Unary:
		paren = parentPrec > 100
	case *Literal:
		paren = parentPrec > 100 && isNegative(n.Value)
	}
	if paren {
		p.write("(")
		p.node(n)
		p.write(")")
	} else {
		p.node(n)
	}
}

const unaryPrec = 101

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case *Literal:
		p.write(LiteralText(n.Value))
	case *VarRef:
		p.write(n.Var.Name)
	case *Unary:
		if n.Op.IsPostfix() {
			p.operand(n.X, unaryPrec, false)
			p.write(n.Op.String())
		} else {
			p.write(n.Op.String())
			p.operand(n.X, unaryPrec, false)
		}
	case *Binary:
		prec := n.Op.Precedence()
		p.operand(n.X, prec, false)
		p.write(" ", n.Op.String(), " ")
		p.operand(n.Y, prec, true)
	case *Assign:
		p.node(n.Target)
		p.write(" ", n.Op.String(), " ")
		value := n.Value
		if n.Op != PlainAssign {
			if b, ok := value.(*Binary); ok {
				value = b.Y
			}
		}
		p.node(value)
	case *Conditional:
		p.write("if (")
		p.node(n.Test)
		p.write(") ")
		p.branch(n.Then)
		if n.Else != nil {
			p.write(" else ")
			if c, ok := n.Else.(*Conditional); ok {
				p.node(c)
			} else {
				p.branch(n.Else)
			}
		}
	case *Lambda:
		p.write("(")
		for i, v := range n.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(TypeText(v.Type), " ", v.Name)
		}
		p.write(") => ")
		p.block(n.Body)
	case *Invoke:
		p.operand(n.Fn, unaryPrec+1, false)
		p.write("(")
		p.list(n.Args)
		p.write(")")
	case *Call:
		p.receiver(n.Recv, n.Owner)
		p.write(".", n.Method.Name, "(")
		p.list(n.Args)
		p.write(")")
	case *Member:
		p.receiver(n.Recv, n.Owner)
		p.write(".", n.Member.Name)
	case *Index:
		p.operand(n.X, unaryPrec+1, false)
		p.write("[")
		p.node(n.Index)
		p.write("]")
	case *New:
		p.write("new ", TypeText(n.Typ), "(")
		p.list(n.Args)
		p.write(")")
	case *NewArray:
		if n.Len != nil {
			// Jagged arrays are written with the length first, as in
			// new int[3][].
			base, dims := n.Elem, 0
			for base.Kind == types.ArrayKind {
				base, dims = base.Elem, dims+1
			}
			p.write("new ", TypeText(base), "[")
			p.node(n.Len)
			p.write("]", strings.Repeat("[]", dims))
		} else {
			p.write("new ", TypeText(n.Elem), "[] {")
			p.list(n.Elems)
			p.write("}")
		}
	case *Default:
		p.write("default(", TypeText(n.Typ), ")")
	case *Block:
		p.block(n)
	case *Declare:
		p.write("var ", n.Var.Name)
		if n.Init == nil || !types.Identical(n.Init.Type(), n.Var.Type) {
			p.write(": ", TypeText(n.Var.Type))
		}
		if n.Init != nil {
			p.write(" = ")
			p.node(n.Init)
		}
	case *Return:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.node(n.Value)
		}
	case *Throw:
		p.write("throw ")
		p.node(n.Value)
	case *Break:
		p.write("break")
	case *Continue:
		p.write("continue")
	case *Goto:
		p.write("goto ", n.Label.Name)
	case *LabelStmt:
		p.write(n.Label.Name, ":")
	case *Loop:
		p.loop(n)
	case *Switch:
		p.write("switch (")
		p.node(n.Value)
		p.write(") {")
		p.indent++
		for _, c := range n.Cases {
			for _, v := range c.Values {
				p.newline()
				p.write("case ")
				p.node(v)
				p.write(":")
			}
			p.indent++
			p.stmts(c.Body, false)
			p.indent--
		}
		if n.Default != nil {
			p.newline()
			p.write("default:")
			p.indent++
			p.stmts(n.Default, false)
			p.indent--
		}
		p.indent--
		p.newline()
		p.write("}")
	case *Try:
		p.write("try ")
		p.block(n.Body)
		for _, c := range n.Catches {
			p.write(" catch")
			if c.ExcType != nil {
				p.write(" (", TypeText(c.ExcType))
				if c.Var != nil {
					p.write(" ", c.Var.Name)
				}
				p.write(")")
			}
			p.write(" ")
			p.block(c.Body)
		}
		if n.Finally != nil {
			p.write(" finally ")
			p.block(n.Finally)
		}
	case *Directive:
		p.write("#", n.Name, " ", scan.Quote(n.Arg))
	case *DebugPoint:
		if n.Explicit {
			p.write("debug(")
			if n.Cond != nil {
				p.node(n.Cond)
			}
			p.write(")")
		}
	default:
		p.write("<?>")
	}
}

func (p *printer) branch(n Node) {
	if b, ok := n.(*Block); ok {
		p.block(b)
	} else {
		p.block(&Block{Body: []Node{n}})
	}
}

func (p *printer) receiver(recv Node, owner *types.Type) {
	if recv == nil {
		p.write(TypeText(owner))
	} else {
		p.operand(recv, unaryPrec+1, false)
	}
}

func (p *printer) loop(n *Loop) {
	switch {
	case n.Test == nil && n.Step == nil:
		p.write("loop ")
	case n.Step == nil:
		p.write("while (")
		p.node(n.Test)
		p.write(") ")
	default:
		p.write("for (; ")
		if n.Test != nil {
			p.node(n.Test)
		}
		p.write("; ")
		p.node(n.Step)
		p.write(") ")
	}
	p.block(n.Body)
}

// TypeText returns the name of a type as written in source.
func TypeText(t *types.Type) string {
	return t.String()
}

// LiteralText returns the source text of a literal value.
func LiteralText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10) + "L"
	case float32:
		return floatText(float64(v), 32) + "F"
	case float64:
		return floatText(v, 64) + "D"
	case rune:
		return scan.QuoteChar(v)
	case string:
		return scan.Quote(v)
	}
	return "<?>"
}

func floatText(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func isNegative(v any) bool {
	switch v := v.(type) {
	case int:
		return v < 0
	case int64:
		return v < 0
	case float32:
		return v < 0
	case float64:
		return v < 0
	}
	return false
}
