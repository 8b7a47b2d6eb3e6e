package eval

import (
	"fmt"
	"unicode/utf8"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/types"
)

// A ref is a storage location whose receiver and index have been evaluated.
type ref struct {
	get func() (any, error)
	set func(any) error
}

// An lvalueOp evaluates the receiver and index of an assignable node.
type lvalueOp func(fm *Frame) (ref, error)

func rvalueOp(lv lvalueOp) op {
	return opFunc(func(fm *Frame) (any, error) {
		r, err := lv(fm)
		if err != nil {
			return nil, err
		}
		return r.get()
	})
}

var (
	errNullReference = host.NewException(host.NullReferenceType,
		"Object reference not set to an instance of an object.")
	errIndexOutOfRange = host.NewException(host.IndexOutOfRangeType,
		"Index was outside the bounds of the array.")
)

func (cp *compiler) lvalueOp(n ast.Node) lvalueOp {
	switch n := n.(type) {
	case *ast.VarRef:
		return cp.varLValue(n)
	case *ast.Member:
		return cp.memberLValue(n)
	case *ast.Index:
		return cp.indexLValue(n)
	}
	cp.errorpf(n, "cannot assign to %T", n)
	return nil
}

func (cp *compiler) varRefOp(n *ast.VarRef) op {
	return rvalueOp(cp.varLValue(n))
}

func (cp *compiler) varLValue(n *ast.VarRef) lvalueOp {
	v := n.Var
	return func(fm *Frame) (ref, error) {
		p, ok := fm.env.lookup(v)
		if !ok {
			return ref{}, fm.errorp(n, fmt.Errorf("variable %s is not initialized", v.Name))
		}
		return ref{
			get: func() (any, error) { return *p, nil },
			set: func(x any) error { *p = x; return nil },
		}, nil
	}
}

func (cp *compiler) memberLValue(n *ast.Member) lvalueOp {
	m := n.Member
	if m.Get == nil {
		cp.errorpf(n, "member %s.%s has no implementation", n.Owner, m.Name)
	}
	var recvOp op
	if n.Recv != nil {
		recvOp = cp.nodeOp(n.Recv)
	}
	return func(fm *Frame) (ref, error) {
		var recv any
		if recvOp != nil {
			var err error
			recv, err = recvOp.exec(fm)
			if err != nil {
				return ref{}, err
			}
			if recv == nil {
				return ref{}, fm.errorp(n, errNullReference)
			}
		}
		r := ref{get: func() (any, error) {
			v, err := m.Get(recv)
			if err != nil {
				return nil, fm.errorp(n, hostError(err))
			}
			return v, nil
		}}
		if m.Set != nil {
			r.set = func(v any) error {
				return fm.errorp(n, hostError(m.Set(recv, v)))
			}
		}
		return r, nil
	}
}

func (cp *compiler) indexOp(n *ast.Index) op {
	return rvalueOp(cp.indexLValue(n))
}

func (cp *compiler) indexLValue(n *ast.Index) lvalueOp {
	xOp := cp.nodeOp(n.X)
	xKind := n.X.Type().Kind
	var indexOp op
	if n.Get != nil {
		indexOp = cp.valueOp(n.Index, n.Get.Params[0])
	} else {
		indexOp = cp.valueOp(n.Index, types.Int)
	}
	get, set := n.Get, n.Set
	if xKind == types.HostKind && get.Fn == nil {
		cp.errorpf(n, "indexer of %s has no implementation", n.X.Type())
	}
	return func(fm *Frame) (ref, error) {
		x, err := xOp.exec(fm)
		if err != nil {
			return ref{}, err
		}
		index, err := indexOp.exec(fm)
		if err != nil {
			return ref{}, err
		}
		if x == nil {
			return ref{}, fm.errorp(n, errNullReference)
		}
		switch xKind {
		case types.ArrayKind:
			arr := x.([]any)
			i := index.(int)
			if i < 0 || i >= len(arr) {
				return ref{}, fm.errorp(n, errIndexOutOfRange)
			}
			return ref{
				get: func() (any, error) { return arr[i], nil },
				set: func(v any) error { arr[i] = v; return nil },
			}, nil
		case types.StringKind:
			r, ok := runeAt(x.(string), index.(int))
			if !ok {
				return ref{}, fm.errorp(n, errIndexOutOfRange)
			}
			return ref{get: func() (any, error) { return r, nil }}, nil
		}
		r := ref{get: func() (any, error) {
			v, err := get.Fn(x, []any{index})
			if err != nil {
				return nil, fm.errorp(n, hostError(err))
			}
			return v, nil
		}}
		if set != nil && set.Fn != nil {
			r.set = func(v any) error {
				_, err := set.Fn(x, []any{index, v})
				return fm.errorp(n, hostError(err))
			}
		}
		return r, nil
	}
}

// Returns the i-th rune of s.
func runeAt(s string, i int) (rune, bool) {
	if i < 0 {
		return 0, false
	}
	for _, r := range s {
		if i == 0 {
			return r, true
		}
		i--
	}
	return utf8.RuneError, false
}

func (cp *compiler) assignOp(n *ast.Assign) op {
	lv := cp.lvalueOp(n.Target)
	valueOp := cp.valueOp(n.Value, n.Target.Type())
	return opFunc(func(fm *Frame) (any, error) {
		r, err := lv(fm)
		if err != nil {
			return nil, err
		}
		v, err := valueOp.exec(fm)
		if err != nil {
			return nil, err
		}
		if r.set == nil {
			return nil, fm.errorp(n, errReadOnly)
		}
		if err := r.set(v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

var errReadOnly = host.NewException(host.InvalidOperationType, "The target is read-only.")
