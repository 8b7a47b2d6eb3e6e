package eval_test

import (
	"math"
	"testing"

	"src.xs.sh/pkg/eval"
	. "src.xs.sh/pkg/eval/evaltest"
)

func TestArithmetic(t *testing.T) {
	Test(t,
		That("1 + 2 * 3").Puts(7),
		That("(1 + 2) * 3").Puts(9),
		That("7 / 2").Puts(3),
		That("-7 / 2").Puts(-3),
		That("-7 % 3").Puts(-1),
		That("7.0 / 2").Puts(3.5),
		That("5.5 % 2").Puts(1.5),
		That("2147483647 + 1").Puts(-2147483648),
		That("2147483647L + 1").Puts(int64(2147483648)),
		That("1 << 33").Puts(2),
		That("1L << 33").Puts(int64(8589934592)),
		That("-8 >> 1").Puts(-4),
		That("6 & 3").Puts(2),
		That("6 | 3").Puts(7),
		That("6 ^ 3").Puts(5),
		That("~5").Puts(-6),
		That("-(3)").Puts(-3),
		That("'a' + 1").Puts(98),
		That("1.5f * 2").Puts(float32(3)),
		That("1 + 2L").Puts(int64(3)),
		That("1 / 0").Throws(ExceptionOfType("System.DivideByZeroException")),
		That("1L % 0L").Throws(ExceptionOfType("System.DivideByZeroException")),
		That("1.0 / 0").Puts(math.Inf(1)),
		That("Math.Sqrt(2.0)").Puts(Approximately(math.Sqrt2)),
		That("Math.Max(1, 2.5)").Puts(2.5),
	)
}

func TestStrings(t *testing.T) {
	Test(t,
		That(`"a" + 1 + 'b'`).Puts("a1b"),
		That(`1 + 2 + "a"`).Puts("3a"),
		That(`"x" + true`).Puts("xTrue"),
		That(`"x" + null`).Puts("x"),
		That(`"x" + 1.5`).Puts("x1.5"),
		That(`"héllo"[1]`).Puts('é'),
		That(`"abc".Length`).Puts(3),
		That(`"hello".Substring(1, 3)`).Puts("ell"),
		That(`"abc"[3]`).Throws(ExceptionOfType("System.IndexOutOfRangeException")),
		That(`"a" == "a"`).Puts(true),
		That(`"a" != "b"`).Puts(true),
	)
}

func TestLogic(t *testing.T) {
	Test(t,
		That("1 < 2 && 2 < 3").Puts(true),
		That("1 > 2 || 2 >= 3").Puts(false),
		That("!(1 <= 1)").Puts(false),
		That("1 == 1L").Puts(true),
		That("'a' == 97").Puts(true),
		That("0.1 + 0.2 == 0.3").Puts(false),
		That("true ^ true").Puts(false),
		That("true & false").Puts(false),
		That("var n = 0; false && (n++ > 0); n").Puts(0),
		That("var n = 0; true || (n++ > 0); n").Puts(0),
		That("var n = 0; false & (n++ > 0); n").Puts(1),
		That(`null ?? "x"`).Puts("x"),
		That(`var s = "a"; s ?? "b"`).Puts("a"),
		That(`var s: string = null; s ?? "b"`).Puts("b"),
	)
}

func TestVariables(t *testing.T) {
	Test(t,
		That("var x = 0; loop { x++; if (x == 10) { break; } } x;").Puts(10),
		That("var x = 5; x += 3; x *= 2; x").Puts(16),
		That("var x = 5; x += 3; x").Puts(8),
		That("var x = 17; x -= 2; x /= 4; x %= 2; x").Puts(1),
		That("var d = 1.5; d += 1; d").Puts(2.5),
		That("var x = 1; if (true) { var x = 2; } x").Puts(1),
		That("var x = 1; if (true) { var y = x + 1; x = y; } x").Puts(2),
		That("var x: long = 1; x").Puts(int64(1)),
		That("var x: double; x").Puts(0.0),
		That("var s: string; s").Puts(nil),
		That("var i = 0; i++").Puts(0),
		That("var i = 0; ++i").Puts(1),
		That("var i = 0; i++; i++; i--; i").Puts(1),
		That("var c = 'a'; c++; c").Puts('b'),
		That("var x = 1; x = x + 1").Puts(2),
		That("var a = 1; var b = 2; a = b = 3; a + b").Puts(6),
	)
}

func TestConditionals(t *testing.T) {
	Test(t,
		That(`if (1 < 2) { "yes"; } else { "no"; }`).Puts("yes"),
		That(`if (1 > 2) { "yes"; } else if (2 > 1) { "elif"; } else { "no"; }`).Puts("elif"),
		That("var x = if (true) { 1; } else { 2.5; }; x").Puts(1.0),
		That("if (false) { 1; }").Puts(nil),
	)
}

func TestLambdas(t *testing.T) {
	Test(t,
		That("var f = (int x) => x * 2; f(21)").Puts(42),
		That("var add = (int a, long b) => a + b; add(1, 2)").Puts(int64(3)),
		That("var n = 0; var inc = () => { n++; }; inc(); inc(); n").Puts(2),
		That("var abs = (int x) => { if (x < 0) { return -x; } return x; }; abs(-5)").Puts(5),
		That("var half = (int x) => { if (x == 0) { return 0; } return x / 2.0; }; half(0)").Puts(0.0),
		That(
			"var mk = () => { var c = 0; return () => { c++; return c; }; };",
			"var a = mk(); var b = mk(); a(); a(); b(); a()").Puts(3),
		That(
			"var fact: (int) => int = null;",
			"fact = (int n) => { if (n <= 1) { return 1; } return n * fact(n - 1); };",
			"fact(5)").Puts(120),
		That("var f: () => int = null; f()").Throws(ExceptionOfType("System.NullReferenceException")),
		That("var f: () => int = null; f = () => { return f(); }; f()").Throws(eval.ErrStackOverflow),
		That(
			"var f: () => int = null; f = () => { return f(); };",
			"try { f(); } catch { 0; }").Throws(eval.ErrStackOverflow),
	)
}

func TestReturn(t *testing.T) {
	Test(t,
		That("return 5;").Puts(5),
		That("var x = 1; if (x == 1) { return 2; } 3").Puts(2),
	)
}

func TestArrays(t *testing.T) {
	Test(t,
		That("var a = new int[3]; a[1] = 5; a[1] + a.Length").Puts(8),
		That("var a = new long[] { 1, 2 }; a[0]").Puts(int64(1)),
		That("var a = new int[] { 1, 2 }; a[0] += 10; a[0]").Puts(11),
		That("var a = new int[] { 1, 2 }; a[1]++; a[1]").Puts(3),
		That("var a = new string[2]; a[0]").Puts(nil),
		That("var a = new int[][] { new int[] { 1 }, new int[] { 2, 3 } }; a[1][1]").Puts(3),
		That("new int[] { 1, 2 }").Puts([]any{1, 2}),
		That("var a = new int[] { 1, 2 }; a[2]").Throws(ExceptionOfType("System.IndexOutOfRangeException")),
		That("var a = new int[] { 1, 2 }; a[-1]").Throws(ExceptionOfType("System.IndexOutOfRangeException")),
		That("new int[-1]").Throws(ExceptionOfType("System.OverflowException")),
		That("var a: int[] = null; a[0]").Throws(ExceptionOfType("System.NullReferenceException")),
		That("default(int)").Puts(0),
		That("default(string)").Puts(nil),
	)
}

func TestSwitch(t *testing.T) {
	Test(t,
		That(
			`var r = "";`,
			`switch (2) { case 1: r = "one"; break; case 2: case 3: r = "two or three"; break; default: r = "other"; }`,
			`r`).Puts("two or three"),
		That(
			`var r = "";`,
			`switch ("z") { case "a": r = "a"; break; default: r = "default"; }`,
			`r`).Puts("default"),
		That(
			`var r = 0;`,
			`switch (5L) { case 5: r = 1; break; }`,
			`r`).Puts(1),
		That(
			"var n = 0;",
			"loop { switch (n) { case 3: break; default: n++; continue; } break; }",
			"n").Puts(3),
	)
}

func TestGoto(t *testing.T) {
	Test(t,
		That("var i = 0; top: i++; if (i < 5) { goto top; } i").Puts(5),
		That("var i = 0; goto end; i = 1; end: i").Puts(0),
		That("var i = 0; loop { i++; if (i == 3) { goto done; } } done: i").Puts(3),
	)
}

func TestExceptions(t *testing.T) {
	Test(t,
		That(`try { throw new Exception("boom"); } catch (Exception e) { e.Message; }`).Puts("boom"),
		That(`try { 1 / 0; } catch (DivideByZeroException) { "div"; }`).Puts("div"),
		That(`try { 1 / 0; } catch (Exception e) { e.Message; }`).Puts("Attempted to divide by zero."),
		That(`try { 1 / 0; } catch (FormatException) { "f"; }`).
			Throws(ExceptionOfType("System.DivideByZeroException")),
		That(`try { 1 / 0; } catch (FormatException) { "f"; } catch { "any"; }`).Puts("any"),
		That(`var log = ""; try { log += "a"; } finally { log += "b"; } log`).Puts("ab"),
		That(
			`var log = "";`,
			`try { try { throw new Exception("x"); } finally { log += "f"; } } catch { log += "c"; }`,
			`log`).Puts("fc"),
		That(
			`var log = "";`,
			`loop { try { break; } finally { log += "f"; } }`,
			`log`).Puts("f"),
		That(`throw new InvalidOperationException("bad");`).
			Throws(ErrorWithMessage("System.InvalidOperationException: bad")),
		That(`var e: Exception = null; throw e;`).
			Throws(ExceptionOfType("System.NullReferenceException")),
		That(`var s: string = null; s.Length`).
			Throws(ExceptionOfType("System.NullReferenceException")),
		That(`var s: string = null; s.ToUpper()`).
			Throws(ExceptionOfType("System.NullReferenceException")),
		That(`Convert.ToInt32("x")`).Throws(ExceptionOfType("System.FormatException")),
		That(`try { Convert.ToInt32("x"); } catch (FormatException e) { 1; }`).Puts(1),
		That(`new List<int>().get_Item(0)`).Throws(ExceptionOfType("System.ArgumentException")),
	)
}

func TestHost(t *testing.T) {
	Test(t,
		That(`Console.WriteLine("hi"); Console.Write(1 + 1);`).Prints("hi\n2"),
		That(`Console.WriteLine(true);`).Prints("True\n"),
		That(`Console.ReadLine()`).WithInput("abc\r\ndef\n").Puts("abc"),
		That(`Console.ReadLine()`).Puts(nil),
		That(`Math.PI`).Puts(math.Pi),
		That(`var l = new List<int>(); l.Add(1); l.Add(2); l[1] = 5; l[0] + l[1] + l.Count`).Puts(8),
		That(`var l = new List<string>(); l.Add("a"); l`).Puts(ReprOf("[a]")),
		That(`#r "XS.Text, ^1.0"`, `var sb = new StringBuilder(); sb.Append("a"); sb.Append(1); sb.ToString()`).
			Puts("a1"),
		That(`var n = 0; Task.Run(() => { n++; return; }).Wait(); n`).Puts(1),
		That(`Task.Run(() => { throw new Exception("t"); }).IsFaulted`).Puts(true),
		That(`Task.Run(() => { throw new Exception("t"); }).Wait();`).
			Throws(ExceptionOfType("System.Exception")),
		That(`Task.Delay(1).IsCompleted`).Puts(true),
	)
}

func TestSubmissions(t *testing.T) {
	Test(t,
		That("var x = 1;").Then("x + 1").Puts(2),
		That("var x = 1;").Then("var x = x + 1;").Then("x").Puts(2),
		That("var x = 1;").Then("var y = ;").Then("x").Puts(1).DoesNotParse("parse error"),
		That("var x = 1; 1 / 0;").Then("x").Puts(1).
			Throws(ExceptionOfType("System.DivideByZeroException")),
		That("a: 1;").Then("a: 2;").Puts(2),
		That("var f = () => 1;").Then("f() + 1").Puts(2),
		That("var x = 1;").Then(`var x = "s";`).Then("x").Puts("s"),
		That("var x = 1;").Then("var f = () => x;").Then("var x = 2;").Then("f() + x").Puts(3),
		That("var x = 1;").Then(`var x = "s"; var y = ;`).Then("x + 1").Puts(2).DoesNotParse("parse error"),
		That("var x = 1;").Then("var x = 2; var x = 3;").Then("x").Puts(1).
			DoesNotParse("variable already declared in this scope"),
	)
}
