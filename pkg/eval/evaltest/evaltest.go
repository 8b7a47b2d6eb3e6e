// Package evaltest provides a framework for testing XS code.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("1 + 2").Puts(3),
//	    That(`Console.WriteLine("x");`).Prints("x\n"))
//
// Every case runs in a new Evaler with the built-in extensions.
package evaltest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/ext"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/tt"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes  []string
	input  string
	setup  func(ev *eval.Evaler)
	verify func(t *testing.T, ev *eval.Evaler)
	want   result
}

type result struct {
	Value    any
	HasValue bool
	Output   string

	ParseError error
	Exception  error
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// executed separately, use the Then method to append code pieces.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "1 + 2" evaluates to 3 reads:
//
//	That("1 + 2").Puts(3)
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that executes the given code in addition, as a
// separate submission to the same Evaler. Multiple arguments are joined with
// newlines.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithInput returns a new Case whose console reads from the given text.
func (c Case) WithInput(s string) Case {
	c.input = s
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// Passes returns an altered Case that runs an additional verification
// function after the code has run.
func (c Case) Passes(f func(t *testing.T, ev *eval.Evaler)) Case {
	c.verify = f
	return c
}

// Puts returns an altered Case that requires the last piece of code to
// evaluate to v. The value can be a ValueMatcher.
func (c Case) Puts(v any) Case {
	c.want.Value, c.want.HasValue = v, true
	return c
}

// Prints returns an altered Case that requires the code to write the given
// text to the console.
func (c Case) Prints(s string) Case {
	c.want.Output = s
	return c
}

// Throws returns an altered Case that requires the code to throw an exception
// whose reason matches the given error. The reason supports matchers
// constructed by functions like ExceptionOfType and ErrorWithMessage.
func (c Case) Throws(reason error) Case {
	c.want.Exception = exc{reason}
	return c
}

// DoesNotParse returns an altered Case that requires the code to fail to
// parse with an error message containing the given text.
func (c Case) DoesNotParse(msg string) Case {
	c.want.ParseError = parseError{msg}
	return c
}

// Test runs test cases. For each test case, a new Evaler is created.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			var out bytes.Buffer
			ev, err := eval.NewEvaler(host.New(&out, strings.NewReader(tc.input)), ext.All()...)
			if err != nil {
				t.Fatalf("NewEvaler: %v", err)
			}
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			r := evalAndCollect(ev, tc.codes)
			r.Output = out.String()

			if tc.verify != nil {
				tc.verify(t, ev)
			}
			if tc.want.HasValue && !match(r.Value, tc.want.Value) {
				t.Errorf("got value (-want +got):\n%s",
					cmp.Diff(tc.want.Value, r.Value, tt.CommonCmpOpt))
			}
			if r.Output != tc.want.Output {
				t.Errorf("got output %q, want %q", r.Output, tc.want.Output)
			}
			if !matchErr(tc.want.ParseError, r.ParseError) {
				t.Errorf("got parse error %v, want %v", r.ParseError, tc.want.ParseError)
			}
			if !matchErr(tc.want.Exception, r.Exception) {
				t.Errorf("unexpected exception")
				if exc, ok := r.Exception.(*eval.Exception); ok {
					// For an eval.Exception report the type of the underlying error.
					t.Logf("got: %T: %v", exc.Reason, exc)
				} else {
					t.Logf("got: %T: %v", r.Exception, r.Exception)
				}
				t.Errorf("want: %v", tc.want.Exception)
			}
		})
	}
}

func evalAndCollect(ev *eval.Evaler, texts []string) result {
	var r result
	for _, text := range texts {
		v, err := ev.Eval(parse.Source{Name: "[test]", Code: text}, eval.EvalCfg{})
		r.Value = v
		switch {
		case err == nil:
		case isParseError(err):
			// NOTE: If multiple code pieces fail, only the last error is
			// saved.
			r.ParseError = err
		default:
			r.Exception = err
		}
	}
	return r
}

func isParseError(err error) bool {
	_, isException := err.(*eval.Exception)
	return !isException
}

func match(got, want any) bool {
	if m, ok := want.(ValueMatcher); ok {
		return m.matchValue(got)
	}
	switch got := got.(type) {
	case float64:
		// Special-case float64 to correctly handle NaN and infinities.
		if want, ok := want.(float64); ok {
			return matchFloat64(got, want, 0)
		}
	case []any:
		want, ok := want.([]any)
		if !ok || len(want) != len(got) {
			return false
		}
		for i := range got {
			if !match(got[i], want[i]) {
				return false
			}
		}
		return true
	}
	return vals.Equal(got, want)
}
