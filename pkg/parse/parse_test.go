package parse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/scope"
	. "src.xs.sh/pkg/tt"
	"src.xs.sh/pkg/types"
)

func parse(code string) (*ast.Program, error) {
	return Parse(NewSource("[test]", code), Config{Resolver: newTestResolver()})
}

func mustParse(t *testing.T, code string) *ast.Program {
	t.Helper()
	prog, err := parse(code)
	if err != nil {
		t.Fatalf("parse %q: %v", code, err)
	}
	return prog
}

func parseErr(code string) error {
	_, err := parse(code)
	return err
}

func literal(code string) (any, *types.Type) {
	prog, err := parse(code)
	if err != nil {
		return err, nil
	}
	lit := prog.Body.Body[0].(*ast.Literal)
	return lit.Value, lit.Typ
}

func TestParse_Literals(t *testing.T) {
	Test(t, literal,
		Args("42").Rets(42, types.Int),
		Args("2147483647").Rets(2147483647, types.Int),
		It("widens integers that do not fit int to long").
			Args("2147483648").Rets(int64(2147483648), types.Long),
		It("folds the sign into negative numbers").
			Args("-2147483648").Rets(-2147483648, types.Int),
		Args("10L").Rets(int64(10), types.Long),
		Args("1.5").Rets(1.5, types.Double),
		Args("1e3").Rets(1000.0, types.Double),
		Args("1.5F").Rets(float32(1.5), types.Float),
		Args("2d").Rets(2.0, types.Double),
		Args("true").Rets(true, types.Bool),
		Args("null").Rets(nil, types.Null),
		Args(`"a\tb"`).Rets("a\tb", types.String),
		Args(`'x'`).Rets('x', types.Char),
	)
}

func TestParse_Errors(t *testing.T) {
	Test(t, parseErr,
		Args("break;").Rets(ErrorWithMessage("break outside of loop")),
		Args("continue;").Rets(ErrorWithMessage("continue outside of loop")),
		It("does not let break escape a lambda").
			Args("loop { (int x) => { break; }; }").Rets(ErrorWithMessage("break outside of loop")),
		It("does not let continue target a switch").
			Args("switch (1) { case 1: continue; }").Rets(ErrorWithMessage("continue outside of loop")),
		Args("var x = 1; var x = 2;").Rets(ErrorWithMessage("variable already declared in this scope")),
		Args("y;").Rets(ErrorWithMessage("variable not found: y")),
		Args("var count = 1; cont;").Rets(ErrorWithMessage("did you mean count?")),
		Args("loop { var y = 1; break; } y;").Rets(ErrorWithMessage("variable not found: y")),
		Args("if (1) { }").Rets(ErrorWithMessage("if condition must be bool, got int")),
		Args("if (true) { 1; } else { return; }").Rets(
			ErrorWithMessage("mismatched types in conditional: int and void")),
		Args("var x = null;").Rets(ErrorWithMessage("cannot infer the type of x from null")),
		Args("var x;").Rets(ErrorWithMessage("variable x needs a type or an initializer")),
		Args(`var x: int = "a";`).Rets(ErrorWithMessage("cannot use string as int")),
		Args(`var s = "a" - 1;`).Rets(ErrorWithMessage("operator - is not defined for string and int")),
		Args("var b = true; b += 1;").Rets(ErrorWithMessage("operator + is not defined for bool and int")),
		Args("1 +").Rets(ErrorWithMessage("unexpected end of input, should be expression")),
		Args("1 = 2;").Rets(ErrorWithMessage("unexpected '=', should be ';'")),
		Args("1 2").Rets(ErrorWithMessage("unexpected '2', should be ';'")),
		Args("1.5m").Rets(ErrorWithMessage("decimal literals are not supported")),
		Args("99999999999999999999").Rets(ErrorWithMessage("integer literal out of range")),
		Args("goto end;").Rets(ErrorWithMessage("label not defined: end")),
		Args("a: a:").Rets(ErrorWithMessage("label a already defined")),
		Args("switch (1) { default: 1; default: 2; }").Rets(ErrorWithMessage("multiple defaults in switch")),
		Args(`switch (1) { case "a": 1; }`).Rets(ErrorWithMessage("case value of type string does not match int")),
		Args("try { 1; }").Rets(ErrorWithMessage("try needs a catch or finally clause")),
		Args("throw 1;").Rets(ErrorWithMessage("cannot throw int")),
		Args("(int x) => { return 1; return true; };").Rets(ErrorWithMessage("mismatched return types: int and bool")),
		Args("Math.Max(true);").Rets(ErrorWithMessage("static method not found: Math.Max(bool)")),
		Args("Math.E;").Rets(ErrorWithMessage("static member not found: Math.E")),
		Args(`new Exception(1);`).Rets(ErrorWithMessage("constructor not found: Exception(int)")),
		Args("Math<int>.PI;").Rets(ErrorWithMessage("Math is not a generic type")),
		Args(`#foo "x"`).Rets(ErrorWithMessage("unknown directive #foo")),
		Args(`#r "Missing"`).Rets(ErrorWithMessage("package not found: Missing")),
		Args(`#r "A, not a version"`).Rets(ErrorWithMessage("invalid version in reference")),
		Args("var f = (int x) => x; f(1, 2);").Rets(ErrorWithMessage("wrong number of arguments: want 1, got 2")),
		Args("1++;").Rets(ErrorWithMessage("unexpected '+'")),
		Args("new StringBuilder();").Rets(ErrorWithMessage("type not found: StringBuilder")),
		Args("new Text.Builder();").Rets(ErrorWithMessage("type not found: Text.Builder")),
		Args("default(Foo);").Rets(ErrorWithMessage("type not found: Foo")),
		Args("var x: Foo = 1;").Rets(ErrorWithMessage("type not found: Foo")),
		Args("new (1);").Rets(ErrorWithMessage("should be type")),
	)
}

func TestParse_ErrorTypesAndPositions(t *testing.T) {
	_, err := parse("var x = 1;\n  foo;")
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("got %T, want *SemanticError", err)
	}
	if pos := semErr.Position(); pos != (diag.Position{Line: 2, Column: 3}) {
		t.Errorf("got position %v, want 2:3", pos)
	}

	_, err = parse("new Missing();")
	if !errors.As(err, &semErr) {
		t.Fatalf("got %T, want *SemanticError for an unknown type", err)
	}
	if pos := semErr.Position(); pos != (diag.Position{Line: 1, Column: 5}) {
		t.Errorf("got position %v, want 1:5", pos)
	}

	_, err = parse("1 + )")
	var parseErr *Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T, want *Error", err)
	}
}

func TestIsPartial(t *testing.T) {
	Test(t, func(code string) bool { return IsPartial(parseErr(code)) },
		Args("if (true) {").Rets(true),
		Args("1 +").Rets(true),
		Args("var x = ").Rets(true),
		Args("1 + )").Rets(false),
		Args("foo;").Rets(false),
	)
}

func TestParse_LoopWithBreak(t *testing.T) {
	prog := mustParse(t, "var x = 0; loop { x++; if (x == 10) { break; } } x;")
	if prog.Type() != types.Int {
		t.Errorf("got program type %s, want int", prog.Type())
	}
	loop := prog.Body.Body[1].(*ast.Loop)
	var breaks []*ast.Break
	ast.Walk(loop, func(n ast.Node) bool {
		if b, ok := n.(*ast.Break); ok {
			breaks = append(breaks, b)
		}
		return true
	})
	if len(breaks) != 1 || breaks[0].Label != loop.Break {
		t.Errorf("break does not target the loop: %v", breaks)
	}
	if len(prog.Body.Vars) != 1 || prog.Body.Vars[0].Name != "x" {
		t.Errorf("got top-level vars %v, want [x]", prog.Body.Vars)
	}
}

func TestParse_NestedLoopsTargetInnermost(t *testing.T) {
	prog := mustParse(t, "loop { loop { continue; } break; }")
	outer := prog.Body.Body[0].(*ast.Loop)
	inner := outer.Body.Body[0].(*ast.Loop)
	cont := inner.Body.Body[0].(*ast.Continue)
	brk := outer.Body.Body[1].(*ast.Break)
	if cont.Label != inner.Continue {
		t.Errorf("continue targets %v, want %v", cont.Label, inner.Continue)
	}
	if brk.Label != outer.Break {
		t.Errorf("break targets %v, want %v", brk.Label, outer.Break)
	}
}

func TestParse_CompoundAssignment(t *testing.T) {
	prog := mustParse(t, "var x = 1; x += 2;")
	decl := prog.Body.Body[0].(*ast.Declare)
	assign := prog.Body.Body[1].(*ast.Assign)
	if assign.Op != ast.AddAssign {
		t.Errorf("got op %v, want +=", assign.Op)
	}
	b, ok := assign.Value.(*ast.Binary)
	if !ok || b.Op != ast.Add {
		t.Fatalf("value is %#v, want x + 2", assign.Value)
	}
	if ref, ok := b.X.(*ast.VarRef); !ok || ref.Var != decl.Var {
		t.Errorf("left operand is %#v, want a reference to x", b.X)
	}
	if b.X == assign.Target {
		t.Errorf("target node is shared with the value")
	}
}

func TestParse_Shadowing(t *testing.T) {
	prog := mustParse(t, `var x = 1; if (true) { var x = "s"; x; } else { "t"; }`)
	outer := prog.Body.Body[0].(*ast.Declare).Var
	cond := prog.Body.Body[1].(*ast.Conditional)
	then := cond.Then.(*ast.Block)
	inner := then.Body[0].(*ast.Declare).Var
	ref := then.Body[1].(*ast.VarRef)
	if ref.Var != inner || inner == outer {
		t.Errorf("inner x does not shadow outer x")
	}
	if cond.Type() != types.String {
		t.Errorf("got conditional type %s, want string", cond.Type())
	}
	if len(then.Vars) != 1 || then.Vars[0] != inner {
		t.Errorf("got block vars %v, want [inner x]", then.Vars)
	}
}

func TestParse_ScopeRestoredAfterError(t *testing.T) {
	s := scope.New()
	_, err := Parse(NewSource("[test]", "loop { if (true) { switch (1) { case 1: 1 + ; } } }"),
		Config{Scope: s})
	if err == nil {
		t.Fatal("want error")
	}
	if s.Depth() != 1 || s.LoopDepth() != 0 {
		t.Errorf("got depth %d and loop depth %d, want 1 and 0", s.Depth(), s.LoopDepth())
	}
}

func TestParse_PersistentScope(t *testing.T) {
	s := scope.New()
	cfg := Config{Scope: s}
	first, err := Parse(NewSource("[1]", "var x = 1;"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(NewSource("[2]", "x + 1;"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	decl := first.Body.Body[0].(*ast.Declare)
	ref := second.Body.Body[0].(*ast.Binary).X.(*ast.VarRef)
	if ref.Var != decl.Var {
		t.Errorf("second parse does not see x from the first")
	}
}

func TestParse_ShortenAndRetry(t *testing.T) {
	prog := mustParse(t, "A.B.C;")
	m := prog.Body.Body[0].(*ast.Member)
	if m.Owner != abType || m.Member.Name != "C" || m.Recv != nil {
		t.Errorf("got %s, want static member C of A.B", ast.Print(m))
	}
}

func TestParse_HostCalls(t *testing.T) {
	Test(t, func(code string) *types.Type { return mustParse(t, code).Type() },
		Args("Math.Max(1, 2);").Rets(types.Int),
		It("selects the overload by argument types").
			Args("Math.Max(1, 2.5);").Rets(types.Double),
		Args("Math.PI * 2;").Rets(types.Double),
		Args(`new Exception("x").Message;`).Rets(types.String),
		Args("var l = new List<int>(); l.Add(1); l[0] = 2; l[0] + l.Count;").Rets(types.Int),
		Args(`"abc"[1];`).Rets(types.Char),
		Args("new int[3][];").Rets(types.ArrayOf(types.ArrayOf(types.Int))),
		Args("default(long);").Rets(types.Long),
	)
}

func TestNewGrammar_SwitchCaseBodies(t *testing.T) {
	g, err := NewGrammar()
	if err != nil {
		t.Fatal(err)
	}
	prog, err := g.Parse(NewSource("[test]", "switch (2) { case 1: 10; 11; default: 20; }"),
		Config{Resolver: newTestResolver()})
	if err != nil {
		t.Fatal(err)
	}
	sw := prog.Body.Body[0].(*ast.Switch)
	if len(sw.Cases) != 1 || len(sw.Cases[0].Body) != 2 || len(sw.Default) != 1 {
		t.Errorf("got %d cases, default %d statements", len(sw.Cases), len(sw.Default))
	}
}

func TestParse_EveryBinaryOperator(t *testing.T) {
	for op := ast.Add; op <= ast.Coalesce; op++ {
		if binaryOps[op.String()] != op {
			t.Errorf("operator %q not registered", op)
		}
	}
	prog := mustParse(t, "1 + 2 * 3;")
	if b, ok := prog.Body.Body[0].(*ast.Binary); !ok || b.Op != ast.Add {
		t.Errorf("got %T, want + at the top", prog.Body.Body[0])
	}
}

func TestParse_Precedence(t *testing.T) {
	top := func(code string) string {
		prog := mustParse(t, code)
		b := prog.Body.Body[0].(*ast.Binary)
		return b.Op.String() + " " + opOf(b.X) + " " + opOf(b.Y)
	}
	Test(t, top,
		Args("1 + 2 * 3").Rets("+ lit *"),
		Args("1 * 2 + 3").Rets("+ * lit"),
		Args("1 - 2 - 3").Rets("- - lit"),
		Args("1 << 2 + 3").Rets("<< lit +"),
		Args("1 < 2 == true").Rets("== < lit"),
		Args("1 | 2 ^ 3 & 4").Rets("| lit ^"),
		Args("true || false && true").Rets("|| lit &&"),
		Args("-1 - -2").Rets("- lit lit"),
		Args("(1 + 2) * 3").Rets("* + lit"),
	)
}

func opOf(n ast.Node) string {
	if b, ok := n.(*ast.Binary); ok {
		return b.Op.String()
	}
	return "lit"
}

func TestParse_Lambda(t *testing.T) {
	prog := mustParse(t, "var f = (int x, int y) => x * y; f(2, 3);")
	f := prog.Body.Body[0].(*ast.Declare)
	want := types.LambdaOf([]*types.Type{types.Int, types.Int}, types.Int)
	if !types.Identical(f.Var.Type, want) {
		t.Errorf("got type %s, want %s", f.Var.Type, want)
	}
	if prog.Type() != types.Int {
		t.Errorf("got program type %s, want int", prog.Type())
	}

	prog = mustParse(t, "(int x) => { if (x > 0) { return 1.5; } return 2; };")
	ret := prog.Body.Body[0].Type().Ret
	if ret != types.Double {
		t.Errorf("got return type %s, want double", ret)
	}
}

func TestParse_References(t *testing.T) {
	r := newTestResolver()
	_, err := Parse(NewSource("[test]", `#r "nuget: XS.Text, ^1.0"`+"\n"+`#r "Other";`),
		Config{Resolver: r})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"XS.Text", "Other"}, r.refs); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}
}

func TestParseReference(t *testing.T) {
	name := func(arg string) (string, bool, error) {
		n, c, err := ParseReference(arg)
		return n, c != nil, err
	}
	Test(t, name,
		Args("XS.Text, ^1.2").Rets("XS.Text", true, nil),
		Args(" nuget: XS.Text ").Rets("XS.Text", false, nil),
		Args("").Rets("", false, ErrorWithMessage("invalid reference")),
		Args("a b").Rets("", false, ErrorWithMessage("invalid reference")),
	)
}

func TestParse_RequireTermination(t *testing.T) {
	code := "var x = 1; x"
	if _, err := Parse(NewSource("[test]", code), Config{}); err != nil {
		t.Errorf("got error %v without RequireTermination", err)
	}
	_, err := Parse(NewSource("[test]", code), Config{RequireTermination: true})
	if err == nil || !IsPartial(err) {
		t.Errorf("got error %v with RequireTermination, want partial error", err)
	}
}

func TestParse_DebugWeaving(t *testing.T) {
	code := "var x = 1;\nif (x > 0) {\n  x + 1;\n}"
	d := &debug.Debugger{Mode: debug.Statements, Handler: func(debug.Capture) {}}
	prog, err := Parse(NewSource("[test]", code), Config{Debugger: d})
	if err != nil {
		t.Fatal(err)
	}
	body := prog.Body.Body
	if len(body) != 4 {
		t.Fatalf("got %d top-level nodes, want 4", len(body))
	}
	p0 := body[0].(*ast.DebugPoint)
	p1 := body[2].(*ast.DebugPoint)
	if p0.Line != 1 || len(p0.Vars) != 0 {
		t.Errorf("first point at line %d with %d vars", p0.Line, len(p0.Vars))
	}
	if p1.Line != 2 || p1.Text != "if (x > 0) {" || len(p1.Vars) != 1 {
		t.Errorf("second point at line %d, text %q, %d vars", p1.Line, p1.Text, len(p1.Vars))
	}
	inner := body[3].(*ast.Conditional).Then.(*ast.Block).Body
	if p, ok := inner[0].(*ast.DebugPoint); !ok || p.Line != 3 || p.Column != 3 {
		t.Errorf("got %#v, want a point at 3:3", inner[0])
	}

	d.Mode = debug.Call
	prog, _ = Parse(NewSource("[test]", code), Config{Debugger: d})
	if len(prog.Body.Body) != 2 {
		t.Errorf("points woven in call mode")
	}
}

var roundTripCases = []string{
	"var x = 1;\nx += 2;\nx;",
	"var a = new int[] {1, 2, 3};\na[0] = -a[1] * 2;",
	"var f = (int x) => {\n  x * 2;\n};\nf(3);",
	"var i = 0;\nloop {\n  i++;\n  if (i > 3) {\n    break;\n  }\n}",
	"switch (2) {\n  case 1:\n    \"one\";\n  default:\n    \"other\";\n}",
	"try {\n  throw new Exception(\"x\");\n} catch (Exception e) {\n  e.Message;\n} finally {\n  1;\n}",
	"if (1 < 2) {\n  1;\n} else if (false) {\n  2;\n} else {\n  3;\n}",
	"var s = \"a\\n\" + 'b';",
	"var l = 10000000000L;\nvar d = 1.5D;\nvar f = 2.5F;",
	"goto end;\n1;\nend:",
	"var m = Math.Max(1, 2) + A.B.C;",
	"var n: long = 1;\nvar z: string;",
	"1 - 2 - (3 - 4);",
	"var j = new int[2][];\nj[0] = new int[] {1};",
	"var g = ((int x) => {\n  x;\n})(1);",
}

var astCmpOpts = cmp.Options{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.IgnoreTypes(ast.Span{}),
	cmp.Comparer(func(a, b *types.Type) bool { return types.Identical(a, b) }),
	cmp.Comparer(func(a, b *types.Method) bool { return a == b }),
	cmp.Comparer(func(a, b *types.Member) bool { return a == b }),
}

func TestPrint_RoundTrip(t *testing.T) {
	for _, code := range roundTripCases {
		prog := mustParse(t, code)
		printed := ast.PrintProgram(prog)
		reparsed, err := parse(printed)
		if err != nil {
			t.Errorf("parse printed form of %q: %v\nprinted:\n%s", code, err, printed)
			continue
		}
		if diff := cmp.Diff(prog.Body, reparsed.Body, astCmpOpts); diff != "" {
			t.Errorf("round trip of %q (-want +got):\n%s", code, diff)
		}
	}
}

func TestPrint_Canonical(t *testing.T) {
	for _, code := range roundTripCases {
		if printed := ast.PrintProgram(mustParse(t, code)); printed != code {
			t.Errorf("printed form of %q is %q", code, printed)
		}
	}
}
