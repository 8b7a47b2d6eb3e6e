package eval

import (
	"errors"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/types"
)

// Calls nest at most this deep. Deeper recursion raises ErrStackOverflow,
// which cannot be caught.
const maxCallDepth = 10000

// Closure is a lambda value: the compiled body together with the env it was
// created in.
type Closure struct {
	Type     *types.Type
	params   []*ast.Variable
	body     op
	captured *Frame
}

// Kind returns "lambda".
func (c *Closure) Kind() string { return "lambda" }

// Repr returns the type of the closure in angle brackets.
func (c *Closure) Repr() string { return "<lambda " + c.Type.String() + ">" }

// Call calls the closure from host code, like Task.Run. It implements
// host.Callable.
func (c *Closure) Call(args []any) (any, error) {
	return c.call(c.captured, c.captured.traceback, args)
}

// Calls the closure from fm, with tb as the traceback of the call site.
func (c *Closure) call(fm *Frame, tb *StackTrace, args []any) (any, error) {
	if fm.depth >= maxCallDepth {
		return nil, &Exception{ErrStackOverflow, tb}
	}
	e := newEnv(c.captured.env)
	for i, p := range c.params {
		e.declare(p, args[i])
	}
	callee := &Frame{
		srcName: c.captured.srcName, srcCode: c.captured.srcCode,
		env: e, debugger: fm.debugger, intCh: fm.intCh,
		traceback: tb, depth: fm.depth + 1,
	}
	v, err := c.body.exec(callee)
	if err != nil {
		f, ok := err.(*flow)
		if !ok {
			return nil, err
		}
		if f.kind != returnFlow {
			return nil, callee.errorp(f.at, errors.New(f.Error()))
		}
		v = f.value
	}
	return coerce(v, c.Type.Ret), nil
}
