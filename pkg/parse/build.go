package parse

import (
	"fmt"
	"strings"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/types"
)

// The functions in this file build typed nodes. They are used by the grammar
// and by extensions, and report type errors as semantic errors.

// UnaryType returns the type of applying op to an operand of type x.
func UnaryType(op ast.UnaryOp, x *types.Type) (*types.Type, error) {
	switch {
	case x.IsVoid():
		return nil, fmt.Errorf("operator %s cannot be applied to void", op)
	case op == ast.Not && x.Kind == types.BoolKind:
		return types.Bool, nil
	case op == ast.Negate && x.IsNumeric():
		return types.Promote(x, x), nil
	case op == ast.Complement && x.IsIntegral():
		return types.Promote(x, x), nil
	case op.IsIncDec() && x.IsNumeric():
		return x, nil
	}
	return nil, fmt.Errorf("operator %s is not defined for %s", op, x)
}

// BinaryType returns the type of applying op to operands of types x and y.
func BinaryType(op ast.BinaryOp, x, y *types.Type) (*types.Type, error) {
	if x.IsVoid() || y.IsVoid() {
		return nil, fmt.Errorf("operator %s cannot be applied to void", op)
	}
	bothBool := x.Kind == types.BoolKind && y.Kind == types.BoolKind
	switch op {
	case ast.Add:
		if x.Kind == types.StringKind || y.Kind == types.StringKind {
			return types.String, nil
		}
		if t := types.Promote(x, y); t != nil {
			return t, nil
		}
	case ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if t := types.Promote(x, y); t != nil {
			return t, nil
		}
	case ast.Shl, ast.Shr:
		if x.IsIntegral() && (y.Kind == types.IntKind || y.Kind == types.CharKind) {
			return types.Promote(x, x), nil
		}
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		if x.IsNumeric() && y.IsNumeric() {
			return types.Bool, nil
		}
	case ast.Eq, ast.Ne:
		if (x.IsNumeric() && y.IsNumeric()) || types.AssignableTo(x, y) || types.AssignableTo(y, x) {
			return types.Bool, nil
		}
	case ast.And, ast.Or, ast.Xor:
		if bothBool {
			return types.Bool, nil
		}
		if x.IsIntegral() && y.IsIntegral() {
			return types.Promote(x, y), nil
		}
	case ast.AndAlso, ast.OrElse:
		if bothBool {
			return types.Bool, nil
		}
	case ast.Coalesce:
		if x.Kind == types.NullKind {
			return y, nil
		}
		if x.IsReference() && types.AssignableTo(y, x) {
			return x, nil
		}
	}
	return nil, fmt.Errorf("operator %s is not defined for %s and %s", op, x, y)
}

// IsAssignable reports whether n can be the target of an assignment.
func IsAssignable(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.VarRef:
		return true
	case *ast.Member:
		return n.Member.Set != nil
	case *ast.Index:
		return n.X.Type().Kind == types.ArrayKind || n.Set != nil
	}
	return false
}

// NewUnary builds a unary expression.
func (ctx *Context) NewUnary(op ast.UnaryOp, x ast.Node, sp ast.Span) *ast.Unary {
	if op.IsIncDec() && !IsAssignable(x) {
		ctx.SemanticErrorf(sp, "operand of %s must be a variable, member or element", op)
	}
	t, err := UnaryType(op, x.Type())
	if err != nil {
		ctx.SemanticErrorf(sp, "%s", err)
	}
	return &ast.Unary{Span: sp, Op: op, X: x, Typ: t}
}

// NewBinary builds a binary expression.
func (ctx *Context) NewBinary(op ast.BinaryOp, x, y ast.Node, sp ast.Span) *ast.Binary {
	t, err := BinaryType(op, x.Type(), y.Type())
	if err != nil {
		ctx.SemanticErrorf(sp, "%s", err)
	}
	return &ast.Binary{Span: sp, Op: op, X: x, Y: y, Typ: t}
}

// NewAssign builds an assignment. For a compound operator, value is the
// right-hand side as written and the stored value is the desugared binary
// expression.
func (ctx *Context) NewAssign(op ast.AssignOp, target, value ast.Node, sp ast.Span) *ast.Assign {
	if !IsAssignable(target) {
		ctx.SemanticErrorf(sp, "cannot assign to this expression")
	}
	tt := target.Type()
	if bop, ok := op.Binary(); ok {
		b := ctx.NewBinary(bop, ast.Clone(target), value, sp)
		// Like in C#, x op= y is allowed when y converts to the type of x
		// even if x op y has a wider type.
		if !types.AssignableTo(b.Typ, tt) &&
			!(tt.IsNumeric() && b.Typ.IsNumeric() && types.AssignableTo(value.Type(), tt)) {
			ctx.SemanticErrorf(sp, "cannot assign %s to %s", b.Typ, tt)
		}
		return &ast.Assign{Span: sp, Op: op, Target: target, Value: b}
	}
	if !types.AssignableTo(value.Type(), tt) {
		ctx.SemanticErrorf(sp, "cannot assign %s to %s", value.Type(), tt)
	}
	return &ast.Assign{Span: sp, Op: op, Target: target, Value: value}
}

// MemberAccess builds an access of the named member of recv. If recv is nil,
// the member is a static member of owner.
func (ctx *Context) MemberAccess(recv ast.Node, owner *types.Type, name string, sp ast.Span) *ast.Member {
	if recv != nil {
		owner = recv.Type()
	}
	m, ok := ctx.Resolver.ResolveMember(owner, name)
	if !ok || m.Static != (recv == nil) {
		ctx.SemanticErrorf(sp, "%s member not found: %s.%s", staticText(recv), owner, name)
	}
	return &ast.Member{Span: sp, Recv: recv, Owner: owner, Member: m}
}

// MethodCall builds a call of the named method of recv. If recv is nil, the
// method is a static method of owner.
func (ctx *Context) MethodCall(recv ast.Node, owner *types.Type, name string, args []ast.Node, sp ast.Span) *ast.Call {
	if recv != nil {
		owner = recv.Type()
	}
	argTypes := typesOf(args)
	m, ok := ctx.Resolver.ResolveMethod(owner, name, argTypes)
	if !ok || m.Static != (recv == nil) {
		ctx.SemanticErrorf(sp, "%s method not found: %s.%s(%s)",
			staticText(recv), owner, name, typeList(argTypes))
	}
	return &ast.Call{Span: sp, Recv: recv, Owner: owner, Method: m, Args: args}
}

// IndexAccess builds an element access.
func (ctx *Context) IndexAccess(x, index ast.Node, sp ast.Span) *ast.Index {
	xt, it := x.Type(), index.Type()
	switch xt.Kind {
	case types.ArrayKind, types.StringKind:
		if !types.AssignableTo(it, types.Int) {
			ctx.SemanticErrorf(sp, "index must be int, got %s", it)
		}
		elem := types.Char
		if xt.Kind == types.ArrayKind {
			elem = xt.Elem
		}
		return &ast.Index{Span: sp, X: x, Index: index, Typ: elem}
	case types.HostKind:
		get, ok := ctx.Resolver.ResolveMethod(xt, "get_Item", []*types.Type{it})
		if !ok || get.Static {
			break
		}
		set, ok := ctx.Resolver.ResolveMethod(xt, "set_Item", []*types.Type{it, get.Ret})
		if !ok || set.Static {
			set = nil
		}
		return &ast.Index{Span: sp, X: x, Index: index, Typ: get.Ret, Get: get, Set: set}
	}
	ctx.SemanticErrorf(sp, "cannot index %s with %s", xt, it)
	return nil
}

// NewInvoke builds a call of a lambda value.
func (ctx *Context) NewInvoke(fn ast.Node, args []ast.Node, sp ast.Span) *ast.Invoke {
	ft := fn.Type()
	if ft.Kind != types.LambdaKind {
		ctx.SemanticErrorf(sp, "cannot call a value of type %s", ft)
	}
	if len(args) != len(ft.Params) {
		ctx.SemanticErrorf(sp, "wrong number of arguments: want %d, got %d", len(ft.Params), len(args))
	}
	for i, a := range args {
		if !types.AssignableTo(a.Type(), ft.Params[i]) {
			ctx.SemanticErrorf(a.Range(), "argument %d: cannot use %s as %s", i+1, a.Type(), ft.Params[i])
		}
	}
	return &ast.Invoke{Span: sp, Fn: fn, Args: args}
}

// NewObject builds a constructor call.
func (ctx *Context) NewObject(t *types.Type, args []ast.Node, sp ast.Span) *ast.New {
	argTypes := typesOf(args)
	ctor, ok := types.SelectOverload(t.Ctors, argTypes)
	if !ok {
		ctx.SemanticErrorf(sp, "constructor not found: %s(%s)", t, typeList(argTypes))
	}
	return &ast.New{Span: sp, Typ: t, Ctor: ctor, Args: args}
}

func staticText(recv ast.Node) string {
	if recv == nil {
		return "static"
	}
	return "instance"
}

func typesOf(ns []ast.Node) []*types.Type {
	ts := make([]*types.Type, len(ns))
	for i, n := range ns {
		ts[i] = n.Type()
	}
	return ts
}

func typeList(ts []*types.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
