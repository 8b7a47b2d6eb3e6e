package eval

import (
	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/diag"
)

// An env holds the values of the variables of one activation of a block,
// lambda or catch clause. Variables are boxed so that closures share them
// with the env they were created in.
type env struct {
	slots map[*ast.Variable]*any
	up    *env
}

func newEnv(up *env) *env {
	return &env{slots: map[*ast.Variable]*any{}, up: up}
}

func (e *env) declare(v *ast.Variable, value any) {
	e.slots[v] = &value
}

func (e *env) lookup(v *ast.Variable) (*any, bool) {
	for ; e != nil; e = e.up {
		if p, ok := e.slots[v]; ok {
			return p, true
		}
	}
	return nil, false
}

// Frame is the state of the running function: the variables it can see and
// the call sites that led to it.
type Frame struct {
	srcName, srcCode string

	env      *env
	debugger *debug.Debugger
	intCh    <-chan struct{}

	traceback *StackTrace
	depth     int
}

// Returns a copy of fm that runs in the given env.
func (fm *Frame) fork(e *env) *Frame {
	newFm := *fm
	newFm.env = e
	return &newFm
}

// Interrupts returns a channel that is closed when an interrupt signal comes.
func (fm *Frame) Interrupts() <-chan struct{} {
	return fm.intCh
}

// IsInterrupted reports whether there has been an interrupt.
func (fm *Frame) IsInterrupted() bool {
	select {
	case <-fm.Interrupts():
		return true
	default:
		return false
	}
}

// Makes an Exception with the given reason, pointing at r. Errors that are
// already exceptions and flows are returned unchanged.
func (fm *Frame) errorp(r diag.Ranger, err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *Exception, *flow:
		return err
	}
	return &Exception{err, fm.addTraceback(r)}
}

func (fm *Frame) addTraceback(r diag.Ranger) *StackTrace {
	return &StackTrace{
		Head: diag.NewContext(fm.srcName, fm.srcCode, r),
		Next: fm.traceback,
	}
}
