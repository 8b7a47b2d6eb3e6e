package debug

import (
	"testing"

	. "src.xs.sh/pkg/tt"
)

func TestParseBreakpoint(t *testing.T) {
	Test(t, ParseBreakpoint,
		Args("12").Rets(Breakpoint{Line: 12}, nil),
		Args("3:4-9").Rets(Breakpoint{Line: 3, Columns: &ColumnRange{4, 9}}, nil),
		Args("3:4").Rets(Breakpoint{Line: 3, Columns: &ColumnRange{4, 4}}, nil),
		Args("x").Rets(Breakpoint{}, ErrorWithMessage(`invalid breakpoint line in "x"`)),
		Args("3:9-4").Rets(Breakpoint{}, ErrorWithMessage(`invalid breakpoint columns in "3:9-4"`)),
	)
}

func TestParseMode(t *testing.T) {
	Test(t, ParseMode,
		Args("none").Rets(None, nil),
		Args("Call").Rets(Call, nil),
		Args("statements").Rets(Statements, nil),
		Args("all").Rets(None, ErrorWithMessage(`unknown debug mode "all"`)),
	)
}

func TestShouldFire(t *testing.T) {
	handler := func(Capture) {}
	var nilDebugger *Debugger
	if nilDebugger.ShouldFire(1, 1, true) {
		t.Errorf("nil debugger fires")
	}

	call := &Debugger{Mode: Call, Handler: handler}
	if call.ShouldFire(1, 1, false) || !call.ShouldFire(1, 1, true) {
		t.Errorf("call mode should only fire explicit points")
	}

	stmts := &Debugger{Mode: Statements, Handler: handler,
		Breakpoints: []Breakpoint{{Line: 2}, {Line: 5, Columns: &ColumnRange{3, 4}}}}
	tests := []struct {
		line, col int
		want      bool
	}{
		{1, 1, false},
		{2, 1, true},
		{2, 80, true},
		{5, 2, false},
		{5, 3, true},
		{5, 4, true},
	}
	for _, test := range tests {
		if got := stmts.ShouldFire(test.line, test.col, false); got != test.want {
			t.Errorf("ShouldFire(%d, %d) = %v, want %v", test.line, test.col, got, test.want)
		}
	}

	noHandler := &Debugger{Mode: Statements}
	if noHandler.Enabled() {
		t.Errorf("debugger without handler is enabled")
	}
}

func TestFire(t *testing.T) {
	var got []Capture
	d := &Debugger{Mode: Statements, Handler: func(c Capture) { got = append(got, c) }}
	d.Fire(Capture{Line: 1, Column: 1})
	d.Fire(Capture{Line: 2, Column: 1})
	if len(got) != 2 || got[1].Line != 2 {
		t.Errorf("got captures %v", got)
	}
}
