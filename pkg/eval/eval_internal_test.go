package eval

import (
	"testing"

	"src.xs.sh/pkg/parse"
)

func TestEval_SubmissionsShareOneFrame(t *testing.T) {
	ev, err := NewEvaler(nil)
	if err != nil {
		t.Fatal(err)
	}
	depth := ev.scope.Depth()
	for i := 0; i < 50; i++ {
		if _, err := ev.Eval(parse.Source{Name: "[test]", Code: "var x = 1;"}, EvalCfg{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ev.Eval(parse.Source{Name: "[test]", Code: "var y = ;"}, EvalCfg{}); err == nil {
		t.Fatal("want parse error")
	}
	if _, err := ev.Check(parse.Source{Name: "[test]", Code: "var z = x;"}, EvalCfg{}); err != nil {
		t.Fatal(err)
	}
	if got := ev.scope.Depth(); got != depth {
		t.Errorf("scope depth grew from %d to %d", depth, got)
	}
	if got := ev.Names(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Names() = %v, want [x]", got)
	}
}
