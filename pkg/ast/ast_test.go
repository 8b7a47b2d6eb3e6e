package ast

import (
	"strings"
	"testing"

	"src.xs.sh/pkg/tt"
	"src.xs.sh/pkg/types"
)

func intLit(v int) *Literal { return &Literal{Value: v, Typ: types.Int} }

var x = &Variable{Name: "x", Type: types.Int}

func TestPrint(t *testing.T) {
	tt.Test(t, Print,
		tt.Args(&Binary{Op: Mul, X: &Binary{Op: Add, X: intLit(1), Y: intLit(2)}, Y: intLit(3)}).
			Rets("(1 + 2) * 3"),
		tt.Args(&Binary{Op: Sub, X: intLit(1), Y: &Binary{Op: Sub, X: intLit(2), Y: intLit(3)}}).
			Rets("1 - (2 - 3)"),
		tt.Args(&Unary{Op: Negate, X: intLit(-1)}).Rets("-(-1)"),
		tt.Args(&Unary{Op: PostIncrement, X: &VarRef{Var: x}}).Rets("x++"),
		tt.Args(&Loop{Test: &Literal{Value: true, Typ: types.Bool}, Body: &Block{}}).Rets("while (true) {}"),
		tt.Args(&Loop{Step: &Unary{Op: PreIncrement, X: &VarRef{Var: x}}, Body: &Block{}}).
			Rets("for (; ; ++x) {}"),
		tt.Args(&Literal{Value: "a\"b", Typ: types.String}).Rets(`"a\"b"`),
		tt.Args(&Literal{Value: int64(3), Typ: types.Long}).Rets("3L"),
		tt.Args(&Literal{Value: nil, Typ: types.Null}).Rets("null"),
		tt.Args(&Declare{Var: &Variable{Name: "y", Type: types.Long}, Init: intLit(1)}).
			Rets("var y: long = 1"),
		tt.Args(&Directive{Name: "r", Arg: "XS.Text"}).Rets(`#r "XS.Text"`),
		tt.Args(&DebugPoint{Explicit: true}).Rets("debug()"),
		tt.Args(&Default{Typ: types.ArrayOf(types.Char)}).Rets("default(char[])"),
		tt.Args(&Assign{Op: PlainAssign, Target: &VarRef{Var: x}, Value: intLit(1)}).Rets("x = 1"),
		tt.Args(&Assign{Op: AddAssign, Target: &VarRef{Var: x},
			Value: &Binary{Op: Add, X: &VarRef{Var: x}, Y: intLit(2)}}).Rets("x += 2"),
	)
}

func TestPrintProgram_SkipsImplicitDebugPoints(t *testing.T) {
	prog := &Program{Body: &Block{Body: []Node{
		&DebugPoint{Line: 1, Column: 1},
		&Declare{Var: x, Init: intLit(1)},
		&DebugPoint{Explicit: true},
	}}}
	if got, want := PrintProgram(prog), "var x = 1;\ndebug();"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPPrint(t *testing.T) {
	n := &Block{Vars: []*Variable{x}, Body: []Node{
		&Declare{Span: Span{0, 10, 1, 1}, Var: x,
			Init: &Literal{Span: Span{8, 1, 1, 9}, Value: 1, Typ: types.Int}},
		&Binary{Span: Span{11, 5, 2, 1}, Op: Add,
			X:   &VarRef{Span: Span{11, 1, 2, 1}, Var: x},
			Y:   &Literal{Value: false, Typ: types.Bool},
			Typ: types.Int},
	}}
	var sb strings.Builder
	PPrint(n, &sb)
	want := "Block Vars=[x]\n" +
		"  Declare 1:1 Var=x: int\n" +
		"    Init: Literal 1:9 Value=1 Typ=int\n" +
		"  Binary 2:1 Op=+ Typ=int\n" +
		"    X: VarRef 2:1 Var=x: int\n" +
		"    Y: Literal Value=false Typ=bool\n"
	if got := sb.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPPrint_Clauses(t *testing.T) {
	exc := types.NewHost("Exception")
	e := &Variable{Name: "e", Type: exc}
	n := &Try{
		Body:    &Block{},
		Catches: []*Catch{{ExcType: exc, Var: e, Body: &Block{}}},
	}
	var sb strings.Builder
	PPrint(n, &sb)
	want := "Try\n" +
		"  Body: Block\n" +
		"  Catch ExcType=Exception Var=e: Exception\n" +
		"    Body: Block\n"
	if got := sb.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestClone(t *testing.T) {
	orig := &Switch{
		Value: &VarRef{Var: x},
		Cases: []*Case{{Values: []Node{intLit(1)}, Body: []Node{&Break{Label: &Label{Name: "$break1"}}}}},
		Typ:   types.Void,
	}
	c := Clone(orig)
	if c == orig || c.Value == orig.Value || c.Cases[0] == orig.Cases[0] ||
		c.Cases[0].Values[0] == orig.Cases[0].Values[0] {
		t.Errorf("nodes are shared with the original")
	}
	if c.Value.(*VarRef).Var != x {
		t.Errorf("variable is not shared with the original")
	}
	if c.Cases[0].Body[0].(*Break).Label != orig.Cases[0].Body[0].(*Break).Label {
		t.Errorf("label is not shared with the original")
	}
	if Print(c) != Print(orig) {
		t.Errorf("clone prints differently")
	}
}

func TestWalk(t *testing.T) {
	n := &Try{
		Body:    &Block{Body: []Node{intLit(1)}},
		Catches: []*Catch{{Body: &Block{Body: []Node{intLit(2)}}}},
	}
	var lits []any
	Walk(n, func(n Node) bool {
		if l, ok := n.(*Literal); ok {
			lits = append(lits, l.Value)
		}
		return true
	})
	if len(lits) != 2 || lits[0] != 1 || lits[1] != 2 {
		t.Errorf("got %v", lits)
	}
}
