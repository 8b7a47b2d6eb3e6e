// Package debug defines the debugger hook of XS.
//
// The parser weaves debug points into the program when a Debugger is
// configured; the evaluator fires the handler when execution reaches a point
// that passes the breakpoint filter. Nothing in this package runs at parse
// time.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode controls which statements get debug points.
type Mode uint8

// Possible values of Mode.
const (
	// None disables the debugger.
	None Mode = iota
	// Call fires only at explicit debug() statements.
	Call
	// Statements fires before every statement.
	Statements
)

var modeNames = [...]string{None: "none", Call: "call", Statements: "statements"}

func (m Mode) String() string { return modeNames[m] }

// ParseMode parses the name of a mode, as used in configuration files and
// command-line flags.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return None, fmt.Errorf("unknown debug mode %q", s)
}

// ColumnRange is an inclusive range of columns.
type ColumnRange struct {
	From, To int
}

// Breakpoint filters debug points by position. A nil Columns matches the
// whole line.
type Breakpoint struct {
	Line    int
	Columns *ColumnRange
}

// Matches reports whether the breakpoint covers the given position.
func (b Breakpoint) Matches(line, col int) bool {
	if line != b.Line {
		return false
	}
	return b.Columns == nil || (b.Columns.From <= col && col <= b.Columns.To)
}

// ParseBreakpoint parses a breakpoint written as "line" or "line:from-to".
func ParseBreakpoint(s string) (Breakpoint, error) {
	lineText, colText, hasCols := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineText)
	if err != nil || line <= 0 {
		return Breakpoint{}, fmt.Errorf("invalid breakpoint line in %q", s)
	}
	if !hasCols {
		return Breakpoint{Line: line}, nil
	}
	fromText, toText, isRange := strings.Cut(colText, "-")
	if !isRange {
		toText = fromText
	}
	from, err1 := strconv.Atoi(fromText)
	to, err2 := strconv.Atoi(toText)
	if err1 != nil || err2 != nil || from <= 0 || to < from {
		return Breakpoint{}, fmt.Errorf("invalid breakpoint columns in %q", s)
	}
	return Breakpoint{Line: line, Columns: &ColumnRange{from, to}}, nil
}

func (b Breakpoint) String() string {
	if b.Columns == nil {
		return strconv.Itoa(b.Line)
	}
	return fmt.Sprintf("%d:%d-%d", b.Line, b.Columns.From, b.Columns.To)
}

// Capture is the state of the program at a debug point.
type Capture struct {
	Line, Column int
	// Text of the source line.
	Text string
	// Live variables, by name.
	Vars map[string]any
	// Whether the point is an explicit debug() statement.
	Explicit bool
}

// Debugger configures the debugger hook.
type Debugger struct {
	Mode Mode
	// If non-empty, only points matching one of the breakpoints fire.
	Breakpoints []Breakpoint
	Handler     func(Capture)
}

// Enabled reports whether the debugger can fire at all.
func (d *Debugger) Enabled() bool {
	return d != nil && d.Mode != None && d.Handler != nil
}

// WeavesStatements reports whether the parser should insert a debug point
// before every statement.
func (d *Debugger) WeavesStatements() bool {
	return d.Enabled() && d.Mode == Statements
}

// ShouldFire reports whether a point at the given position fires. Implicit
// points only fire in the Statements mode.
func (d *Debugger) ShouldFire(line, col int, explicit bool) bool {
	if !d.Enabled() || (!explicit && d.Mode != Statements) {
		return false
	}
	if len(d.Breakpoints) == 0 {
		return true
	}
	for _, b := range d.Breakpoints {
		if b.Matches(line, col) {
			return true
		}
	}
	return false
}

// Fire calls the handler if the capture passes the filter.
func (d *Debugger) Fire(c Capture) {
	if d.ShouldFire(c.Line, c.Column, c.Explicit) {
		d.Handler(c)
	}
}
