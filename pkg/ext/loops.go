package ext

import (
	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/scope"
	"src.xs.sh/pkg/types"
)

// for (init; test; step) { body } becomes a block holding init and a loop.
func forParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("for", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		defer ctx.Scope.Enter(scope.Block)()

		// The statement parser consumes the semicolon after init, and
		// succeeds with nil on a lone semicolon.
		init := expect(ctx, b.Statement)
		var test ast.Node
		if t, ok := b.Expr.Parse(ctx); ok {
			checkBool(ctx, t, "for")
			test = t
		}
		semicolon.Parse(ctx)
		step, _ := b.Expr.Parse(ctx)
		rparen.Parse(ctx)

		lc := ctx.Scope.PushLoop()
		defer ctx.Scope.PopLoop()
		body := expect(ctx, b.Block)

		sp := ctx.Span(start)
		loop := &ast.Loop{Span: sp, Test: test, Body: body, Step: step,
			Break: lc.Break, Continue: lc.Continue}
		var stmts []ast.Node
		if init != nil {
			stmts = append(stmts, init)
		}
		stmts = append(stmts, loop)
		return &ast.Block{Span: sp, Vars: ctx.Scope.Locals(), Body: stmts}, true
	})
}

func whileParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("while", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		test := expect(ctx, b.Expr)
		checkBool(ctx, test, "while")
		rparen.Parse(ctx)

		lc := ctx.Scope.PushLoop()
		defer ctx.Scope.PopLoop()
		body := expect(ctx, b.Block)
		return &ast.Loop{Span: ctx.Span(start), Test: test, Body: body,
			Break: lc.Break, Continue: lc.Continue}, true
	})
}

func checkBool(ctx *parse.Context, test ast.Node, keyword string) {
	if test.Type().Kind != types.BoolKind {
		ctx.SemanticErrorf(test, "%s condition must be bool, got %s", keyword, test.Type())
	}
}

var (
	varKeyword = parse.Keyword("var")
	inKeyword  = parse.Keyword("in")
)

// foreach (var x in xs) { body } iterates over arrays, strings and host
// collections with a Count and an indexer. It becomes
//
//	{
//		var $collection = xs;
//		var $index = 0;
//		while ($index < $collection.Length) {
//			var x = $collection[$index];
//			{ body }
//		} step $index++
//	}
//
// The hidden variables cannot clash with user variables, as identifiers
// cannot start with a '$'.
func foreachParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("foreach", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		var declared *types.Type
		if _, ok := varKeyword.Parse(ctx); !ok {
			declared = expect(ctx, b.Type)
		}
		nameStart := ctx.Pos()
		name := expect(ctx, parse.Identifier)
		nameSpan := ctx.Span(nameStart)
		expect(ctx, inKeyword)
		coll := expect(ctx, b.Expr)
		rparen.Parse(ctx)
		sp := ctx.Span(start)

		defer ctx.Scope.Enter(scope.Block)()
		ct := coll.Type()
		collVar, _ := ctx.Scope.Declare("$collection", ct)
		indexVar, _ := ctx.Scope.Declare("$index", types.Int)
		ref := func(v *ast.Variable) ast.Node { return &ast.VarRef{Span: sp, Var: v} }

		var length ast.Node
		switch ct.Kind {
		case types.ArrayKind, types.StringKind:
			length = ctx.MemberAccess(ref(collVar), nil, "Length", sp)
		case types.HostKind:
			length = ctx.MemberAccess(ref(collVar), nil, "Count", sp)
		default:
			ctx.SemanticErrorf(coll, "cannot iterate over %s", ct)
		}
		elem := ctx.IndexAccess(ref(collVar), ref(indexVar), sp)
		et := elem.Type()
		if declared == nil {
			declared = et
		} else if !types.AssignableTo(et, declared) {
			ctx.SemanticErrorf(nameSpan, "cannot use %s as %s", et, declared)
		}

		lc := ctx.Scope.PushLoop()
		defer ctx.Scope.PopLoop()
		// The element variable lives in a frame of its own, which is exited
		// before the outer frame's variables are collected. Exiting twice
		// is harmless.
		exitElem := ctx.Scope.Enter(scope.Block)
		defer exitElem()
		elemVar, err := ctx.Scope.Declare(name, declared)
		if err != nil {
			ctx.SemanticErrorf(nameSpan, "%s", err.Error())
		}
		body := expect(ctx, b.Block)
		loopBody := &ast.Block{Span: body.Span, Vars: ctx.Scope.Locals(),
			Body: []ast.Node{&ast.Declare{Span: nameSpan, Var: elemVar, Init: elem}, body}}
		exitElem()

		loop := &ast.Loop{Span: sp,
			Test:     ctx.NewBinary(ast.Lt, ref(indexVar), length, sp),
			Body:     loopBody,
			Step:     ctx.NewUnary(ast.PostIncrement, ref(indexVar), sp),
			Break:    lc.Break,
			Continue: lc.Continue,
		}
		return &ast.Block{Span: sp, Vars: ctx.Scope.Locals(), Body: []ast.Node{
			&ast.Declare{Span: sp, Var: collVar, Init: coll},
			&ast.Declare{Span: sp, Var: indexVar, Init: &ast.Literal{Span: sp, Value: 0, Typ: types.Int}},
			loop,
		}}, true
	})
}
