package ext

import (
	"strings"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/types"
)

// nameof(x) is the name of a variable, member or type as a string constant.
func nameofParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("nameof", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		var name string
		pos := ctx.Scanner.Pos()
		// A type name alone is not an expression, so types are tried first.
		if t, ok := b.Type.Parse(ctx); ok && closes(ctx) {
			name = shortName(t)
		} else {
			ctx.Scanner.Reset(pos)
			operandStart := ctx.Pos()
			operand := expect(ctx, b.Expr)
			switch n := operand.(type) {
			case *ast.VarRef:
				name = n.Var.Name
			case *ast.Member:
				name = n.Member.Name
			case *ast.Call:
				name = n.Method.Name
			default:
				ctx.SemanticErrorf(ctx.Span(operandStart), "expression has no name")
			}
		}
		rparen.Parse(ctx)
		return &ast.Literal{Span: ctx.Span(start), Value: name, Typ: types.String}, true
	})
}

// Reports whether the input continues with ')', without consuming it.
func closes(ctx *parse.Context) bool {
	pos := ctx.Scanner.Pos()
	defer ctx.Scanner.Reset(pos)
	_, ok := parse.Char(')').Parse(ctx)
	return ok
}

func shortName(t *types.Type) string {
	if t.Kind != types.HostKind {
		return t.String()
	}
	return t.Name[strings.LastIndexByte(t.Name, '.')+1:]
}

// Names of the builtin types in the host runtime.
var runtimeNames = map[types.Kind]string{
	types.BoolKind:   "System.Boolean",
	types.IntKind:    "System.Int32",
	types.LongKind:   "System.Int64",
	types.FloatKind:  "System.Single",
	types.DoubleKind: "System.Double",
	types.CharKind:   "System.Char",
	types.StringKind: "System.String",
	types.ObjectKind: "System.Object",
	types.VoidKind:   "System.Void",
}

// typeof(T) is the full runtime name of T as a string constant, like
// "System.Int32" for int.
func typeofParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("typeof", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		t := expect(ctx, b.Type)
		rparen.Parse(ctx)
		return &ast.Literal{Span: ctx.Span(start), Value: runtimeName(t), Typ: types.String}, true
	})
}

func runtimeName(t *types.Type) string {
	switch t.Kind {
	case types.ArrayKind:
		return runtimeName(t.Elem) + "[]"
	case types.LambdaKind, types.HostKind:
		return t.String()
	}
	return runtimeNames[t.Kind]
}
