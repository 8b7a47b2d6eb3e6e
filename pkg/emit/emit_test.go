package emit_test

import (
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/emit"
	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/parse"
)

func check(t *testing.T, code string) *ast.Program {
	t.Helper()
	ev, err := eval.NewEvaler(nil)
	if err != nil {
		t.Fatal(err)
	}
	prog, err := ev.Check(parse.Source{Name: "test.xs", Code: code}, eval.EvalCfg{})
	if err != nil {
		t.Fatalf("Check(%q): %v", code, err)
	}
	return prog
}

var emitTests = []struct {
	code string
	want []string
}{
	{"1 + 2", []string{"v0 := int32(1)", "v1 := int32(2)", "return (v0 + v1)", "func (Program) Run() int32"}},
	{"1 + 2L", []string{"(int64(v0) + v1)", "Run() int64"}},
	{"7 / 2 * 3", []string{"((v0 / v1) * v2)"}},
	{"5.5 % 2", []string{`"math"`, "math.Mod(float64(v0), float64(float64(v1)))"}},
	{"'a' + 1", []string{"v0 := 'a'", "(int32(v0) + v1)"}},
	{`"a" + 'b'`, []string{`v0 := "a"`, "(v0 + string(v1))", "Run() string"}},
	{"1 << 33", []string{"(v0 << (uint(v1) & 31))"}},
	{"1L >> 65", []string{"(v0 >> (uint(v1) & 63))"}},
	{"-(1)", []string{"-v0"}},
	{"~5", []string{"^v0"}},
	{"!(1 < 2)", []string{"!(v0 < v1)"}},
	{"true & false", []string{"x && y"}},
	{"true ^ false", []string{"(v0 != v1)"}},
	{"1 < 2 && 2.5 > 1", []string{"((v0 < v1) && (v2 > float64(v3)))"}},
	{`"a" == "b"`, []string{"(v0 == v1)", "Run() bool"}},
	{"if (1 < 2) { 1; } else { 2.5; }", []string{"func() float64 {", "return float64(v2)", "return v3"}},
}

func TestEmit(t *testing.T) {
	for _, test := range emitTests {
		src, err := emit.Emit(check(t, test.code), emit.Options{})
		if err != nil {
			t.Errorf("Emit(%q) -> error %v", test.code, err)
			continue
		}
		out := string(src)
		for _, want := range test.want {
			if !strings.Contains(out, want) {
				t.Errorf("Emit(%q) output lacks %q:\n%s", test.code, want, out)
			}
		}
		if _, err := parser.ParseFile(token.NewFileSet(), "out.go", src, 0); err != nil {
			t.Errorf("Emit(%q) produced invalid Go: %v", test.code, err)
		}
	}
}

func TestEmit_Options(t *testing.T) {
	prog := check(t, "1 + 1")
	src, err := emit.Emit(prog, emit.Options{Package: "calc", Type: "Adder", Func: "Sum"})
	if err != nil {
		t.Fatal(err)
	}
	out := string(src)
	for _, want := range []string{"package calc", "type Adder struct{}", "func (Adder) Sum() int32",
		"// Code generated by xs compile from test.xs. DO NOT EDIT."} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"func main", `"fmt"`} {
		if strings.Contains(out, unwanted) {
			t.Errorf("library output contains %q:\n%s", unwanted, out)
		}
	}

	if _, err := emit.Emit(prog, emit.Options{Func: "not valid"}); err == nil {
		t.Errorf("invalid function name accepted")
	}
}

func TestEmit_MainPackage(t *testing.T) {
	src, err := emit.Emit(check(t, "2 * 21"), emit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	out := string(src)
	if !strings.Contains(out, "package main") || !strings.Contains(out, "fmt.Println(Program{}.Run())") {
		t.Errorf("main package output lacks the main function:\n%s", out)
	}
}

var notSupportedTests = []string{
	"var x = 1; x",
	"Math.Max(1, 2)",
	`"a" + 1`,
	`null ?? "x"`,
	"Console.WriteLine(1)",
	"if (true) { 1; }",
	"new int[] { 1 }",
	"",
}

func TestEmit_NotSupported(t *testing.T) {
	for _, code := range notSupportedTests {
		_, err := emit.Emit(check(t, code), emit.Options{})
		if !errors.Is(err, emit.ErrNotSupported) {
			t.Errorf("Emit(%q) -> %v, want ErrNotSupported", code, err)
		}
	}
}
