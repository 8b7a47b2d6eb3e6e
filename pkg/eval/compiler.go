package eval

import (
	"errors"
	"fmt"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/types"
)

// An op is a compiled node. Executing it produces the value of the node, or
// an error, which is either an *Exception or a flow.
type op interface {
	exec(fm *Frame) (any, error)
}

type opFunc func(fm *Frame) (any, error)

func (f opFunc) exec(fm *Frame) (any, error) { return f(fm) }

// CompilationError is an error found while compiling a parsed program. The
// parser catches almost every problem, so this mostly reports host methods
// that have no implementation.
type CompilationError = diag.Error[CompilationErrorTag]

// CompilationErrorTag parameterizes [diag.Error] to define [CompilationError].
type CompilationErrorTag struct{}

func (CompilationErrorTag) ErrorTag() string { return "compilation error" }

// compiler maintains the set of states needed when compiling a single
// program.
type compiler struct {
	name, code string
	// Return types of the lambdas being compiled, innermost last.
	rets []*types.Type
}

func compile(prog *ast.Program) (o op, err error) {
	cp := &compiler{name: prog.Name, code: prog.Source}
	defer func() {
		r := recover()
		if r == nil {
			return
		} else if e, ok := r.(*CompilationError); ok {
			// Save the compilation error and stop the panic.
			err = e
		} else {
			// Resume the panic; it is not supposed to be handled here.
			panic(r)
		}
	}()
	return cp.programOp(prog.Body), nil
}

func (cp *compiler) errorpf(r diag.Ranger, format string, args ...any) {
	// The panic is caught by the recover in compile above.
	panic(&CompilationError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(cp.name, cp.code, r)})
}

// The program block runs in the persistent global env, so that variables
// declared by one submission are visible to the next.
func (cp *compiler) programOp(b *ast.Block) op {
	body := cp.seqOp(b.Body)
	vars := b.Vars
	return opFunc(func(fm *Frame) (any, error) {
		for _, v := range vars {
			if _, ok := fm.env.slots[v]; !ok {
				fm.env.declare(v, zero(v.Type))
			}
		}
		v, err := body.exec(fm)
		if f, ok := err.(*flow); ok {
			if f.kind == returnFlow {
				return f.value, nil
			}
			return nil, fm.errorp(f.at, errors.New(f.Error()))
		}
		return v, err
	})
}

// seqOp runs a list of statements. It is also the target of goto: a goto flow
// to one of its labels resumes execution after the label.
type seqOp struct {
	ops    []op
	labels map[*ast.Label]int
}

func (cp *compiler) seqOp(ns []ast.Node) *seqOp {
	s := &seqOp{}
	for _, n := range ns {
		if l, ok := n.(*ast.LabelStmt); ok {
			if s.labels == nil {
				s.labels = map[*ast.Label]int{}
			}
			s.labels[l.Label] = len(s.ops)
			continue
		}
		s.ops = append(s.ops, cp.nodeOp(n))
	}
	return s
}

func (s *seqOp) exec(fm *Frame) (any, error) {
	var v any
	for i := 0; i < len(s.ops); i++ {
		var err error
		v, err = s.ops[i].exec(fm)
		if err != nil {
			if f, ok := err.(*flow); ok && f.kind == gotoFlow {
				if j, ok := s.labels[f.label]; ok {
					i, v = j-1, nil
					continue
				}
			}
			return nil, err
		}
	}
	return v, nil
}

// Returns an op for a block, which runs in a new env holding the variables
// declared in it.
func (cp *compiler) blockOp(b *ast.Block) op {
	body := cp.seqOp(b.Body)
	vars := b.Vars
	return opFunc(func(fm *Frame) (any, error) {
		e := newEnv(fm.env)
		for _, v := range vars {
			e.declare(v, zero(v.Type))
		}
		return body.exec(fm.fork(e))
	})
}

// Returns an op for n whose value is converted to the numeric type to when
// needed.
func (cp *compiler) valueOp(n ast.Node, to *types.Type) op {
	o := cp.nodeOp(n)
	if !needsConversion(n.Type(), to) {
		return o
	}
	k := to.Kind
	return opFunc(func(fm *Frame) (any, error) {
		v, err := o.exec(fm)
		if err != nil {
			return nil, err
		}
		return convertNumber(v, k), nil
	})
}

func (cp *compiler) valueOps(ns []ast.Node, typeOf func(i int) *types.Type) []op {
	ops := make([]op, len(ns))
	for i, n := range ns {
		ops[i] = cp.valueOp(n, typeOf(i))
	}
	return ops
}

func execAll(fm *Frame, ops []op) ([]any, error) {
	values := make([]any, len(ops))
	for i, o := range ops {
		v, err := o.exec(fm)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Converts a value of unknown numeric kind to be stored as type t.
func coerce(v any, t *types.Type) any {
	switch {
	case t.IsVoid():
		return nil
	case t.IsNumeric() && v != nil:
		return convertNumber(v, t.Kind)
	}
	return v
}

func (cp *compiler) nodeOp(n ast.Node) op {
	switch n := n.(type) {
	case *ast.Literal:
		v := n.Value
		return opFunc(func(*Frame) (any, error) { return v, nil })
	case *ast.VarRef:
		return cp.varRefOp(n)
	case *ast.Unary:
		return cp.unaryOp(n)
	case *ast.Binary:
		return cp.binaryOp(n)
	case *ast.Assign:
		return cp.assignOp(n)
	case *ast.Conditional:
		return cp.conditionalOp(n)
	case *ast.Lambda:
		return cp.lambdaOp(n)
	case *ast.Invoke:
		return cp.invokeOp(n)
	case *ast.Call:
		return cp.callOp(n)
	case *ast.Member:
		lv := cp.memberLValue(n)
		return rvalueOp(lv)
	case *ast.Index:
		return cp.indexOp(n)
	case *ast.New:
		return cp.newOp(n)
	case *ast.NewArray:
		return cp.newArrayOp(n)
	case *ast.Default:
		t := n.Typ
		return opFunc(func(*Frame) (any, error) { return zero(t), nil })
	case *ast.Block:
		return cp.blockOp(n)
	case *ast.Declare:
		return cp.declareOp(n)
	case *ast.Return:
		return cp.returnOp(n)
	case *ast.Throw:
		return cp.throwOp(n)
	case *ast.Break:
		return jumpOp(breakFlow, n.Label, n.Span)
	case *ast.Continue:
		return jumpOp(continueFlow, n.Label, n.Span)
	case *ast.Goto:
		return cp.gotoOp(n)
	case *ast.LabelStmt, *ast.Directive:
		// Labels are handled by seqOp; directives take effect when parsing.
		return opFunc(func(*Frame) (any, error) { return nil, nil })
	case *ast.Loop:
		return cp.loopOp(n)
	case *ast.Switch:
		return cp.switchOp(n)
	case *ast.Try:
		return cp.tryOp(n)
	case *ast.DebugPoint:
		return cp.debugPointOp(n)
	}
	cp.errorpf(n, "cannot compile %T", n)
	return nil
}
