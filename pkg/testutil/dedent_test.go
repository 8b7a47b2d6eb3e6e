package testutil

import "testing"

var dedentTests = []struct {
	name string
	in   string
	want string
}{
	{"no indentation", "a\nb\n", "a\nb\n"},
	{"common indentation", "  a\n  b\n", "a\nb\n"},
	{"leading newline dropped", "\n\tvar x = 1;\n\tx;\n", "var x = 1;\nx;\n"},
	{"deeper lines keep extra indent", "  loop {\n    break;\n  }\n", "loop {\n  break;\n}\n"},
	{"whitespace-only lines ignored", "  a\n \n  b", "a\n\nb"},
}

func TestDedent(t *testing.T) {
	for _, test := range dedentTests {
		t.Run(test.name, func(t *testing.T) {
			if got := Dedent(test.in); got != test.want {
				t.Errorf("Dedent(%q) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}
