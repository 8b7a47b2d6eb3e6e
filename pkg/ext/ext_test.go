package ext_test

import (
	"strings"
	"testing"

	"src.xs.sh/pkg/ast"
	. "src.xs.sh/pkg/eval/evaltest"
	"src.xs.sh/pkg/ext"
	"src.xs.sh/pkg/parse"
)

func TestFor(t *testing.T) {
	Test(t,
		That("var s = 0; for (var i = 0; i < 5; i++) { s += i; } s").Puts(10),
		That("var n = 0; for (;;) { n++; if (n == 3) { break; } } n").Puts(3),
		That("var s = 0; for (var i = 0; i < 5; i++) { if (i % 2 == 0) { continue; } s += i; } s").Puts(4),
		That("var i = 10; for (i = 0; i < 3; i++) { } i").Puts(3),
		That("var s = 0; for (var i = 0; i < 3; i++) { for (var j = 0; j < 3; j++) { if (j == 1) { break; } s++; } } s").Puts(3),
		That("for (var i = 0; i; i++) { }").DoesNotParse("for condition must be bool, got int"),
		That("for (var i = 0; i < 2; i++) { } i").DoesNotParse("variable not found: i"),
	)
}

func TestWhile(t *testing.T) {
	Test(t,
		That("var i = 0; while (i < 3) { i++; } i").Puts(3),
		That("var i = 0; while (true) { if (++i == 4) { break; } } i").Puts(4),
		That("while (1) { }").DoesNotParse("while condition must be bool, got int"),
	)
}

func TestForeach(t *testing.T) {
	Test(t,
		That("var s = 0; foreach (var x in new int[] { 1, 2, 3 }) { s += x; } s").Puts(6),
		That(`var r = ""; foreach (var c in "abc") { r = c + r; } r`).Puts("cba"),
		That("var l = new List<int>(); l.Add(4); l.Add(5); var s = 0; foreach (int x in l) { s += x; } s").Puts(9),
		That("var s = 0L; foreach (long x in new int[] { 1, 2 }) { s += x; } s").Puts(int64(3)),
		That("var s = 0; foreach (var x in new int[] { 1, 2, 3, 4 }) { if (x == 2) { continue; } if (x == 4) { break; } s += x; } s").Puts(4),
		That("var n = 0; foreach (var x in new int[0]) { n++; } n").Puts(0),
		That("foreach (string x in new int[] { 1 }) { }").DoesNotParse("cannot use int as string"),
		That("foreach (var x in 5) { }").DoesNotParse("cannot iterate over int"),
		That("foreach (var x in new int[0]) { } x").DoesNotParse("variable not found: x"),
	)
}

func TestDebug(t *testing.T) {
	Test(t,
		That("debug(); 1").Puts(1),
		That("var x = 1; debug(x > 0); x").Puts(1),
		That("debug(1);").DoesNotParse("debug condition must be bool, got int"),
	)
}

func TestNameOf(t *testing.T) {
	Test(t,
		That("var count = 1; nameof(count)").Puts("count"),
		That(`var s = "x"; nameof(s.Length)`).Puts("Length"),
		That(`var s = "x"; nameof(s.ToUpper())`).Puts("ToUpper"),
		That("nameof(int)").Puts("int"),
		That("nameof(Math)").Puts("Math"),
		That("nameof(1 + 2)").DoesNotParse("expression has no name"),
	)
}

func TestTypeOf(t *testing.T) {
	Test(t,
		That("typeof(int)").Puts("System.Int32"),
		That("typeof(string)").Puts("System.String"),
		That("typeof(long[])").Puts("System.Int64[]"),
		That("typeof(char[][])").Puts("System.Char[][]"),
		That("typeof(Exception)").Puts("System.Exception"),
		That("typeof((int) => bool)").Puts("(int) => bool"),
	)
}

type fakeExtension struct {
	typ parse.ExtensionType
	key string
}

func (e fakeExtension) Type() parse.ExtensionType { return e.typ }
func (e fakeExtension) Key() string               { return e.key }

func (e fakeExtension) CreateParser(*parse.Binder) parse.Parser[ast.Node] {
	return parse.New(e.key, func(*parse.Context) (ast.Node, bool) { return nil, false })
}

func TestExtensionConflicts(t *testing.T) {
	if _, err := parse.NewGrammar(ext.All()...); err != nil {
		t.Fatalf("built-in extensions conflict: %v", err)
	}
	for _, exts := range [][]parse.Extension{
		{ext.For, ext.For},
		{ext.While, fakeExtension{parse.Expression, "while"}},
		{fakeExtension{parse.Statement, "if"}},
		{fakeExtension{parse.Terminated, "return"}},
	} {
		_, err := parse.NewGrammar(exts...)
		if err == nil || !strings.Contains(err.Error(), "conflicts") {
			t.Errorf("NewGrammar(%v) -> %v, want a conflict", exts, err)
		}
	}
}
