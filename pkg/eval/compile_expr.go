package eval

import (
	"math"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/types"
)

func (cp *compiler) unaryOp(n *ast.Unary) op {
	k := n.Typ.Kind
	if n.Op.IsIncDec() {
		lv := cp.lvalueOp(n.X)
		delta := int64(1)
		if n.Op == ast.PreDecrement || n.Op == ast.PostDecrement {
			delta = -1
		}
		postfix := n.Op.IsPostfix()
		return opFunc(func(fm *Frame) (any, error) {
			r, err := lv(fm)
			if err != nil {
				return nil, err
			}
			old, err := r.get()
			if err != nil {
				return nil, err
			}
			if r.set == nil {
				return nil, fm.errorp(n, errReadOnly)
			}
			v := step(old, k, delta)
			if err := r.set(v); err != nil {
				return nil, err
			}
			if postfix {
				return old, nil
			}
			return v, nil
		})
	}

	x := cp.valueOp(n.X, n.Typ)
	var f func(v any) any
	switch n.Op {
	case ast.Not:
		f = func(v any) any { return !v.(bool) }
	case ast.Negate:
		f = func(v any) any {
			switch v := v.(type) {
			case float32:
				return -v
			case float64:
				return -v
			}
			return fromInt64(-toInt64(v), k)
		}
	case ast.Complement:
		f = func(v any) any { return fromInt64(^toInt64(v), k) }
	default:
		cp.errorpf(n, "unknown operator %s", n.Op)
	}
	return opFunc(func(fm *Frame) (any, error) {
		v, err := x.exec(fm)
		if err != nil {
			return nil, err
		}
		return f(v), nil
	})
}

func (cp *compiler) binaryOp(n *ast.Binary) op {
	xt, yt := n.X.Type(), n.Y.Type()
	x, y := cp.nodeOp(n.X), cp.nodeOp(n.Y)

	switch n.Op {
	case ast.AndAlso, ast.OrElse:
		// The right operand is only evaluated when the left one does not
		// decide the result.
		decisive := n.Op == ast.OrElse
		return opFunc(func(fm *Frame) (any, error) {
			a, err := x.exec(fm)
			if err != nil || a.(bool) == decisive {
				return a, err
			}
			return y.exec(fm)
		})
	case ast.Coalesce:
		return opFunc(func(fm *Frame) (any, error) {
			a, err := x.exec(fm)
			if err != nil || a != nil {
				return a, err
			}
			return y.exec(fm)
		})
	}

	var f func(a, b any) (any, error)
	switch {
	case n.Op == ast.Add && n.Typ.Kind == types.StringKind:
		f = func(a, b any) (any, error) { return vals.ToString(a) + vals.ToString(b), nil }
	case n.Op.IsComparison() && xt.IsNumeric() && yt.IsNumeric():
		k := types.Promote(xt, yt).Kind
		op := n.Op
		f = func(a, b any) (any, error) { return compareNumbers(op, k, a, b), nil }
	case n.Op == ast.Eq:
		f = func(a, b any) (any, error) { return vals.Equal(a, b), nil }
	case n.Op == ast.Ne:
		f = func(a, b any) (any, error) { return !vals.Equal(a, b), nil }
	case n.Typ.Kind == types.BoolKind:
		op := n.Op
		f = func(a, b any) (any, error) {
			p, q := a.(bool), b.(bool)
			switch op {
			case ast.And:
				return p && q, nil
			case ast.Or:
				return p || q, nil
			default:
				return p != q, nil
			}
		}
	case n.Typ.IsNumeric():
		op, k := n.Op, n.Typ.Kind
		f = func(a, b any) (any, error) { return numericOp(op, k, a, b) }
	default:
		cp.errorpf(n, "operator %s is not defined for %s and %s", n.Op, xt, yt)
	}
	return opFunc(func(fm *Frame) (any, error) {
		a, err := x.exec(fm)
		if err != nil {
			return nil, err
		}
		b, err := y.exec(fm)
		if err != nil {
			return nil, err
		}
		v, err := f(a, b)
		if err != nil {
			return nil, fm.errorp(n, err)
		}
		return v, nil
	})
}

func (cp *compiler) conditionalOp(n *ast.Conditional) op {
	test := cp.nodeOp(n.Test)
	then := cp.valueOp(n.Then, n.Typ)
	var els op
	if n.Else != nil {
		els = cp.valueOp(n.Else, n.Typ)
	}
	void := n.Typ.IsVoid()
	return opFunc(func(fm *Frame) (any, error) {
		t, err := test.exec(fm)
		if err != nil {
			return nil, err
		}
		var v any
		if t.(bool) {
			v, err = then.exec(fm)
		} else if els != nil {
			v, err = els.exec(fm)
		}
		if err != nil || void {
			return nil, err
		}
		return v, nil
	})
}

func (cp *compiler) lambdaOp(n *ast.Lambda) op {
	cp.rets = append(cp.rets, n.Typ.Ret)
	body := cp.blockOp(n.Body)
	cp.rets = cp.rets[:len(cp.rets)-1]
	return opFunc(func(fm *Frame) (any, error) {
		return &Closure{Type: n.Typ, params: n.Params, body: body, captured: fm}, nil
	})
}

func (cp *compiler) invokeOp(n *ast.Invoke) op {
	fn := cp.nodeOp(n.Fn)
	params := n.Fn.Type().Params
	args := cp.valueOps(n.Args, func(i int) *types.Type { return params[i] })
	return opFunc(func(fm *Frame) (any, error) {
		f, err := fn.exec(fm)
		if err != nil {
			return nil, err
		}
		values, err := execAll(fm, args)
		if err != nil {
			return nil, err
		}
		c, ok := f.(*Closure)
		if !ok {
			return nil, fm.errorp(n, errNullReference)
		}
		return c.call(fm, fm.addTraceback(n), values)
	})
}

func (cp *compiler) callOp(n *ast.Call) op {
	m := n.Method
	if m.Fn == nil {
		cp.errorpf(n, "method %s.%s has no implementation", n.Owner, m.Name)
	}
	var recvOp op
	if n.Recv != nil {
		recvOp = cp.nodeOp(n.Recv)
	}
	args := cp.valueOps(n.Args, m.ParamType)
	return opFunc(func(fm *Frame) (any, error) {
		var recv any
		if recvOp != nil {
			var err error
			recv, err = recvOp.exec(fm)
			if err != nil {
				return nil, err
			}
		}
		values, err := execAll(fm, args)
		if err != nil {
			return nil, err
		}
		if recvOp != nil && recv == nil {
			return nil, fm.errorp(n, errNullReference)
		}
		v, err := m.Fn(recv, packVariadic(m, values))
		if err != nil {
			return nil, fm.errorp(n, hostError(err))
		}
		return v, nil
	})
}

// Packs the arguments for the variadic parameter of m into an array.
func packVariadic(m *types.Method, args []any) []any {
	if !m.Variadic {
		return args
	}
	n := len(m.Params) - 1
	packed := append([]any(nil), args[:n]...)
	return append(packed, append([]any{}, args[n:]...))
}

func (cp *compiler) newOp(n *ast.New) op {
	ctor := n.Ctor
	if ctor.Fn == nil {
		cp.errorpf(n, "constructor of %s has no implementation", n.Typ)
	}
	args := cp.valueOps(n.Args, ctor.ParamType)
	return opFunc(func(fm *Frame) (any, error) {
		values, err := execAll(fm, args)
		if err != nil {
			return nil, err
		}
		v, err := ctor.Fn(nil, packVariadic(ctor, values))
		if err != nil {
			return nil, fm.errorp(n, hostError(err))
		}
		return v, nil
	})
}

var errNegativeLength = host.NewException(host.OverflowType,
	"Arithmetic operation resulted in an overflow.")

func (cp *compiler) newArrayOp(n *ast.NewArray) op {
	elem := n.Elem
	if n.Len == nil {
		elems := cp.valueOps(n.Elems, func(int) *types.Type { return elem })
		return opFunc(func(fm *Frame) (any, error) {
			values, err := execAll(fm, elems)
			if err != nil {
				return nil, err
			}
			return values, nil
		})
	}
	length := cp.valueOp(n.Len, types.Int)
	return opFunc(func(fm *Frame) (any, error) {
		l, err := length.exec(fm)
		if err != nil {
			return nil, err
		}
		size := l.(int)
		if size < 0 {
			return nil, fm.errorp(n, errNegativeLength)
		}
		if size > math.MaxInt32/2 {
			return nil, fm.errorp(n, host.NewException(host.OverflowType,
				"Array dimensions exceeded supported range."))
		}
		arr := make([]any, size)
		z := zero(elem)
		for i := range arr {
			arr[i] = z
		}
		return arr, nil
	})
}
