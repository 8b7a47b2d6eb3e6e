package eval

import (
	"strings"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/types"
)

func (cp *compiler) declareOp(n *ast.Declare) op {
	v := n.Var
	var init op
	if n.Init != nil {
		init = cp.valueOp(n.Init, v.Type)
	}
	return opFunc(func(fm *Frame) (any, error) {
		value := zero(v.Type)
		if init != nil {
			var err error
			value, err = init.exec(fm)
			if err != nil {
				return nil, err
			}
		}
		fm.env.declare(v, value)
		return value, nil
	})
}

func (cp *compiler) returnOp(n *ast.Return) op {
	var ret *types.Type
	if len(cp.rets) > 0 {
		ret = cp.rets[len(cp.rets)-1]
	}
	var value op
	if n.Value != nil {
		value = cp.nodeOp(n.Value)
	}
	return opFunc(func(fm *Frame) (any, error) {
		var v any
		if value != nil {
			var err error
			v, err = value.exec(fm)
			if err != nil {
				return nil, err
			}
			if ret != nil {
				v = coerce(v, ret)
			}
		}
		return nil, &flow{kind: returnFlow, value: v, at: n.Span}
	})
}

func (cp *compiler) throwOp(n *ast.Throw) op {
	value := cp.nodeOp(n.Value)
	return opFunc(func(fm *Frame) (any, error) {
		v, err := value.exec(fm)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case *host.Exception:
			return nil, fm.errorp(n, v)
		case nil:
			return nil, fm.errorp(n, errNullReference)
		default:
			return nil, fm.errorp(n, host.NewException(host.InvalidCastType,
				"Cannot throw a value of kind %s.", vals.Kind(v)))
		}
	})
}

func jumpOp(kind flowKind, label *ast.Label, sp ast.Span) op {
	return opFunc(func(*Frame) (any, error) {
		return nil, &flow{kind: kind, label: label, at: sp}
	})
}

func (cp *compiler) gotoOp(n *ast.Goto) op {
	label := n.Label
	return opFunc(func(fm *Frame) (any, error) {
		// A backward goto can loop forever, so it is an interruption point.
		if fm.IsInterrupted() {
			return nil, fm.errorp(n, ErrInterrupted)
		}
		return nil, &flow{kind: gotoFlow, label: label, at: n.Span}
	})
}

func (cp *compiler) loopOp(n *ast.Loop) op {
	var test, stepOp op
	if n.Test != nil {
		test = cp.nodeOp(n.Test)
	}
	if n.Step != nil {
		stepOp = cp.nodeOp(n.Step)
	}
	body := cp.blockOp(n.Body)
	return opFunc(func(fm *Frame) (any, error) {
		for {
			if fm.IsInterrupted() {
				return nil, fm.errorp(n, ErrInterrupted)
			}
			if test != nil {
				t, err := test.exec(fm)
				if err != nil {
					return nil, err
				}
				if !t.(bool) {
					return nil, nil
				}
			}
			if _, err := body.exec(fm); err != nil {
				if isFlow(err, breakFlow, n.Break) {
					return nil, nil
				}
				if !isFlow(err, continueFlow, n.Continue) {
					return nil, err
				}
			}
			if stepOp != nil {
				if _, err := stepOp.exec(fm); err != nil {
					return nil, err
				}
			}
		}
	})
}

type caseOp struct {
	values []op
	body   *seqOp
}

func (cp *compiler) switchOp(n *ast.Switch) op {
	value := cp.nodeOp(n.Value)
	vt := n.Value.Type()
	cases := make([]caseOp, len(n.Cases))
	equals := make([][]func(a, b any) bool, len(n.Cases))
	for i, c := range n.Cases {
		cases[i] = caseOp{body: cp.seqOp(c.Body)}
		for _, v := range c.Values {
			cases[i].values = append(cases[i].values, cp.nodeOp(v))
			equals[i] = append(equals[i], equality(vt, v.Type()))
		}
	}
	var dflt *seqOp
	if n.Default != nil {
		dflt = cp.seqOp(n.Default)
	}
	return opFunc(func(fm *Frame) (any, error) {
		v, err := value.exec(fm)
		if err != nil {
			return nil, err
		}
		body, err := func() (*seqOp, error) {
			for i, c := range cases {
				for j, cv := range c.values {
					w, err := cv.exec(fm)
					if err != nil {
						return nil, err
					}
					if equals[i][j](v, w) {
						return c.body, nil
					}
				}
			}
			return dflt, nil
		}()
		if err != nil || body == nil {
			return nil, err
		}
		if _, err := body.exec(fm.fork(newEnv(fm.env))); err != nil && !isFlow(err, breakFlow, n.Break) {
			return nil, err
		}
		return nil, nil
	})
}

// Returns the == operator for values of the given types.
func equality(x, y *types.Type) func(a, b any) bool {
	if x.IsNumeric() && y.IsNumeric() {
		k := types.Promote(x, y).Kind
		return func(a, b any) bool { return compareNumbers(ast.Eq, k, a, b) }
	}
	return vals.Equal
}

type catchOp struct {
	excType *types.Type
	v       *ast.Variable
	body    op
}

func (cp *compiler) tryOp(n *ast.Try) op {
	body := cp.blockOp(n.Body)
	t := n.Type()
	catches := make([]catchOp, len(n.Catches))
	for i, c := range n.Catches {
		catches[i] = catchOp{c.ExcType, c.Var, cp.valueOp(c.Body, t)}
	}
	var finally op
	if n.Finally != nil {
		finally = cp.blockOp(n.Finally)
	}
	return opFunc(func(fm *Frame) (v any, err error) {
		if finally != nil {
			defer func() {
				// An error from finally replaces the error being propagated,
				// as does a jump out of it.
				if _, ferr := finally.exec(fm); ferr != nil {
					v, err = nil, ferr
				}
			}()
		}
		v, err = body.exec(fm)
		exc, ok := err.(*Exception)
		if !ok {
			return v, err
		}
		reason, ok := exc.Reason.(*host.Exception)
		if !ok {
			// Interrupts and stack overflows cannot be caught.
			return v, err
		}
		for _, c := range catches {
			if c.excType == nil || reason.Type.DerivesFrom(c.excType) {
				e := newEnv(fm.env)
				if c.v != nil {
					e.declare(c.v, reason)
				}
				return c.body.exec(fm.fork(e))
			}
		}
		return v, err
	})
}

func (cp *compiler) debugPointOp(n *ast.DebugPoint) op {
	var cond op
	if n.Cond != nil {
		cond = cp.nodeOp(n.Cond)
	}
	return opFunc(func(fm *Frame) (any, error) {
		d := fm.debugger
		if !d.ShouldFire(n.Line, n.Column, n.Explicit) {
			return nil, nil
		}
		if cond != nil {
			c, err := cond.exec(fm)
			if err != nil {
				return nil, err
			}
			if !c.(bool) {
				return nil, nil
			}
		}
		captured := make(map[string]any, len(n.Vars))
		for _, v := range n.Vars {
			if strings.HasPrefix(v.Name, "$") {
				// Hidden variables of desugared statements.
				continue
			}
			if p, ok := fm.env.lookup(v); ok {
				captured[v.Name] = *p
			}
		}
		d.Handler(debug.Capture{Line: n.Line, Column: n.Column, Text: n.Text,
			Vars: captured, Explicit: n.Explicit})
		return nil, nil
	})
}
