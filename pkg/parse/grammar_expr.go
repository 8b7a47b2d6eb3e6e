package parse

import (
	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/must"
	"src.xs.sh/pkg/scope"
	"src.xs.sh/pkg/types"
)

var binaryOps = func() map[string]ast.BinaryOp {
	m := make(map[string]ast.BinaryOp)
	for op := ast.Add; op <= ast.Coalesce; op++ {
		m[op.String()] = op
	}
	return m
}()

var (
	binaryOperator = Then(OperatorIn("operator", keys(binaryOps)...),
		func(s string) ast.BinaryOp { return binaryOps[s] })
	prefixOperator = Then(OperatorIn("operator", "!", "-", "~", "++", "--"),
		func(s string) ast.UnaryOp {
			switch s {
			case "!":
				return ast.Not
			case "-":
				return ast.Negate
			case "~":
				return ast.Complement
			case "++":
				return ast.PreIncrement
			default:
				return ast.PreDecrement
			}
		})
	postfixOperator = Then(OperatorIn("operator", "++", "--"),
		func(s string) ast.UnaryOp {
			if s == "++" {
				return ast.PostIncrement
			}
			return ast.PostDecrement
		})
	assignOperator = Then(OperatorIn("assignment operator", "=", "+=", "-=", "*=", "/=", "%="),
		func(s string) ast.AssignOp {
			for op := ast.PlainAssign; op <= ast.ModAssign; op++ {
				if op.String() == s {
					return op
				}
			}
			return ast.PlainAssign
		})
)

func keys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func (g *Grammar) initExpressions() {
	g.args = Between(lparen, Separated(Parser[ast.Node](g.expr), comma), rparen)

	exprTable := g.tables[Expression]
	must.OK(exprTable.Add("new", g.newParser()))
	must.OK(exprTable.Add("default", keywordParser("default", func(ctx *Context, start int) (ast.Node, bool) {
		require(ctx, lparen)
		t := requireType(ctx, g.typ)
		require(ctx, rparen)
		return &ast.Default{Span: ctx.Span(start), Typ: t}, true
	})))

	primary := OneOf(
		g.literalParser(),
		Lookup("expression", exprTable),
		g.lambdaParser(),
		Between(lparen, Parser[ast.Node](g.expr), rparen),
		g.identifierParser(),
	)
	postfix := nodeParser("expression", func(ctx *Context, start int) (ast.Node, bool) {
		n, ok := primary.Parse(ctx)
		if !ok {
			return nil, false
		}
		for {
			next, ok := g.suffix(ctx, n, start)
			if !ok {
				return n, true
			}
			n = next
		}
	})

	negativeNumber := nodeParser("number", func(ctx *Context, start int) (ast.Node, bool) {
		if _, ok := Operator("-").Parse(ctx); !ok {
			return nil, false
		}
		num, ok := Number.Parse(ctx)
		if !ok || startsSuffix(ctx) {
			return nil, false
		}
		return numberLiteral(ctx, num, true, start), true
	})

	g.unary.Set(nodeParser("expression", func(ctx *Context, start int) (ast.Node, bool) {
		if lit, ok := negativeNumber.Parse(ctx); ok {
			return lit, true
		}
		if op, ok := prefixOperator.Parse(ctx); ok {
			x := require(ctx, Parser[ast.Node](g.unary))
			return ctx.NewUnary(op, x, ctx.Span(start)), true
		}
		return postfix.Parse(ctx)
	}))

	assignment := nodeParser("expression", func(ctx *Context, start int) (ast.Node, bool) {
		target, ok := g.unary.Parse(ctx)
		if !ok {
			return nil, false
		}
		if IsAssignable(target) {
			if op, ok := assignOperator.Parse(ctx); ok {
				value := require(ctx, Parser[ast.Node](g.expr))
				return ctx.NewAssign(op, target, value, ctx.Span(start)), true
			}
		}
		return g.climb(ctx, target, 0), true
	})

	g.complex = Lookup("statement", g.tables[Statement])
	g.expr.Set(OneOf(g.complex, assignment))
}

// climb parses binary operators following left, using precedence climbing.
// Operators of the same precedence associate to the left.
func (g *Grammar) climb(ctx *Context, left ast.Node, minPrec int) ast.Node {
	for {
		pos := ctx.Scanner.Pos()
		op, ok := binaryOperator.Parse(ctx)
		if !ok || op.Precedence() < minPrec {
			ctx.Scanner.Reset(pos)
			return left
		}
		right := require(ctx, Parser[ast.Node](g.unary))
		for {
			pos := ctx.Scanner.Pos()
			next, ok := binaryOperator.Parse(ctx)
			ctx.Scanner.Reset(pos)
			if !ok || next.Precedence() <= op.Precedence() {
				break
			}
			right = g.climb(ctx, right, op.Precedence()+1)
		}
		left = ctx.NewBinary(op, left, right, ctx.SpanOf(left.Pos().Offset, ctx.Scanner.Pos()))
	}
}

// Reports whether the input continues with a postfix suffix. A negative
// number followed by one is not folded into a literal, so that -1.ToString()
// means -(1.ToString()).
func startsSuffix(ctx *Context) bool {
	pos := ctx.Scanner.Pos()
	defer ctx.Scanner.Reset(pos)
	ctx.Scanner.SkipWhitespace()
	switch ctx.Scanner.Peek() {
	case '.', '[', '(':
		return true
	}
	_, ok := postfixOperator.Parse(ctx)
	return ok
}

// suffix parses one postfix suffix applied to n.
func (g *Grammar) suffix(ctx *Context, n ast.Node, start int) (ast.Node, bool) {
	pos := ctx.Scanner.Pos()
	if _, ok := dot.Parse(ctx); ok {
		name := require(ctx, memberName)
		if args, ok := g.args.Parse(ctx); ok {
			return ctx.MethodCall(n, nil, name, args, ctx.Span(start)), true
		}
		return ctx.MemberAccess(n, nil, name, ctx.Span(start)), true
	}
	if _, ok := lbracket.Parse(ctx); ok {
		index := require(ctx, Parser[ast.Node](g.expr))
		require(ctx, rbracket)
		return ctx.IndexAccess(n, index, ctx.Span(start)), true
	}
	if n.Type().Kind == types.LambdaKind {
		if args, ok := g.args.Parse(ctx); ok {
			return ctx.NewInvoke(n, args, ctx.Span(start)), true
		}
	}
	if IsAssignable(n) {
		if op, ok := postfixOperator.Parse(ctx); ok {
			return ctx.NewUnary(op, n, ctx.Span(start)), true
		}
	}
	ctx.Scanner.Reset(pos)
	return nil, false
}

func (g *Grammar) identifierParser() Parser[ast.Node] {
	return nodeParser("identifier", func(ctx *Context, start int) (ast.Node, bool) {
		name, ok := Identifier.Parse(ctx)
		if !ok {
			return nil, false
		}
		if v, ok := ctx.Scope.Lookup(name); ok {
			return &ast.VarRef{Span: ctx.Span(start), Var: v}, true
		}
		ctx.Scanner.Reset(start)
		if t, ok := g.namedType.Parse(ctx); ok {
			require(ctx, dot)
			member := require(ctx, memberName)
			if args, ok := g.args.Parse(ctx); ok {
				return ctx.MethodCall(nil, t, member, args, ctx.Span(start)), true
			}
			return ctx.MemberAccess(nil, t, member, ctx.Span(start)), true
		}
		ctx.SemanticErrorf(ctx.SpanOf(start, start+len(name)),
			"variable not found: %s%s", name, didYouMean(name, ctx.Scope.Names()))
		return nil, false
	})
}

func (g *Grammar) lambdaParser() Parser[ast.Node] {
	param := And(Parser[*types.Type](g.typ), Identifier)
	params := Separated(param, comma)
	return nodeParser("lambda", func(ctx *Context, start int) (ast.Node, bool) {
		if _, ok := lparen.Parse(ctx); !ok {
			return nil, false
		}
		ps, _ := params.Parse(ctx)
		if _, ok := rparen.Parse(ctx); !ok {
			return nil, false
		}
		if _, ok := arrow.Parse(ctx); !ok {
			return nil, false
		}

		defer ctx.Scope.Enter(scope.Lambda)()
		f := ctx.pushFunc()
		defer ctx.popFunc()

		vars := make([]*ast.Variable, len(ps))
		paramTypes := make([]*types.Type, len(ps))
		for i, p := range ps {
			v, err := ctx.Scope.Declare(p.Second, p.First)
			if err != nil {
				ctx.SemanticErrorf(ctx.Span(start), "duplicate parameter %s", p.Second)
			}
			vars[i], paramTypes[i] = v, p.First
		}
		body, ok := g.block.Parse(ctx)
		if !ok {
			bodyStart := ctx.Pos()
			e := require(ctx, Parser[ast.Node](g.expr))
			body = &ast.Block{Span: ctx.Span(bodyStart), Body: []ast.Node{e}}
		}
		g.checkLabels(ctx)
		ret := body.Type()
		if f.returns {
			ret = f.ret
		}
		return &ast.Lambda{Span: ctx.Span(start), Params: vars, Body: body,
			Typ: types.LambdaOf(paramTypes, ret)}, true
	})
}

func (g *Grammar) newParser() Parser[ast.Node] {
	elems := Between(lbrace, Separated(Parser[ast.Node](g.expr), comma), rbrace)
	return keywordParser("new", func(ctx *Context, start int) (ast.Node, bool) {
		t := requireType(ctx, g.baseType)
		if args, ok := g.args.Parse(ctx); ok {
			return ctx.NewObject(t, args, ctx.Span(start)), true
		}
		if _, ok := lbracket.Parse(ctx); !ok {
			ctx.unexpected("'('", "'['")
		}
		if _, ok := rbracket.Parse(ctx); ok {
			elem := t
			for {
				if _, ok := emptyBrackets.Parse(ctx); !ok {
					break
				}
				elem = types.ArrayOf(elem)
			}
			es := require(ctx, elems)
			for _, e := range es {
				if !types.AssignableTo(e.Type(), elem) {
					ctx.SemanticErrorf(e.Pos(), "cannot use %s as array element of type %s", e.Type(), elem)
				}
			}
			return &ast.NewArray{Span: ctx.Span(start), Elem: elem, Elems: es}, true
		}
		length := require(ctx, Parser[ast.Node](g.expr))
		require(ctx, rbracket)
		if !types.AssignableTo(length.Type(), types.Int) {
			ctx.SemanticErrorf(length.Pos(), "array length must be int, got %s", length.Type())
		}
		elem := t
		for {
			if _, ok := emptyBrackets.Parse(ctx); !ok {
				break
			}
			elem = types.ArrayOf(elem)
		}
		return &ast.NewArray{Span: ctx.Span(start), Elem: elem, Len: length}, true
	})
}
