package parse

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/must"
	"src.xs.sh/pkg/scope"
	"src.xs.sh/pkg/types"
)

func (g *Grammar) initStatements() {
	stmts := g.tables[Statement]
	must.OK(stmts.Add("if", keywordParser("if", g.parseIf)))
	must.OK(stmts.Add("loop", keywordParser("loop", func(ctx *Context, start int) (ast.Node, bool) {
		lc := ctx.Scope.PushLoop()
		defer ctx.Scope.PopLoop()
		body := require(ctx, Parser[*ast.Block](g.block))
		return &ast.Loop{Span: ctx.Span(start), Body: body,
			Break: lc.Break, Continue: lc.Continue}, true
	})))
	must.OK(stmts.Add("try", g.tryParser()))

	simple := g.tables[Terminated]
	must.OK(simple.Add("var", g.varParser()))
	must.OK(simple.Add("break", keywordParser("break", func(ctx *Context, start int) (ast.Node, bool) {
		lc, ok := ctx.Scope.CurrentLoop()
		if !ok {
			ctx.SemanticErrorf(ctx.Span(start), "break outside of loop")
		}
		return &ast.Break{Span: ctx.Span(start), Label: lc.Break}, true
	})))
	must.OK(simple.Add("continue", keywordParser("continue", func(ctx *Context, start int) (ast.Node, bool) {
		lc, ok := ctx.Scope.CurrentLoop()
		if !ok || lc.Continue == nil {
			ctx.SemanticErrorf(ctx.Span(start), "continue outside of loop")
		}
		return &ast.Continue{Span: ctx.Span(start), Label: lc.Continue}, true
	})))
	must.OK(simple.Add("return", keywordParser("return", func(ctx *Context, start int) (ast.Node, bool) {
		value, _ := g.expr.Parse(ctx)
		t := types.Void
		if value != nil {
			t = value.Type()
		}
		f := ctx.currentFunc()
		if !f.returns {
			f.ret, f.returns = t, true
		} else if u, ok := types.Unify(f.ret, t); ok {
			f.ret = u
		} else {
			ctx.SemanticErrorf(ctx.Span(start), "mismatched return types: %s and %s", f.ret, t)
		}
		return &ast.Return{Span: ctx.Span(start), Value: value}, true
	})))
	must.OK(simple.Add("throw", keywordParser("throw", func(ctx *Context, start int) (ast.Node, bool) {
		value := require(ctx, Parser[ast.Node](g.expr))
		if value.Type().Kind != types.HostKind {
			ctx.SemanticErrorf(value, "cannot throw %s", value.Type())
		}
		return &ast.Throw{Span: ctx.Span(start), Value: value}, true
	})))
	must.OK(simple.Add("goto", keywordParser("goto", func(ctx *Context, start int) (ast.Node, bool) {
		name := require(ctx, Identifier)
		return &ast.Goto{Span: ctx.Span(start), Label: ctx.Scope.Label(name)}, true
	})))

	label := nodeParser("label", func(ctx *Context, start int) (ast.Node, bool) {
		name, ok := Identifier.Parse(ctx)
		if !ok {
			return nil, false
		}
		if _, ok := colon.Parse(ctx); !ok {
			return nil, false
		}
		l, ok := ctx.Scope.DefineLabel(name)
		if !ok {
			ctx.SemanticErrorf(ctx.Span(start), "label %s already defined", name)
		}
		return &ast.LabelStmt{Span: ctx.Span(start), Label: l}, true
	})

	directive := nodeParser("directive", func(ctx *Context, start int) (ast.Node, bool) {
		if _, ok := Char('#').Parse(ctx); !ok {
			return nil, false
		}
		name := require(ctx, memberName)
		arg := require(ctx, StringLit)
		semicolon.Parse(ctx)
		d := &ast.Directive{Span: ctx.Span(start), Name: name, Arg: arg}
		applyDirective(ctx, d)
		return d, true
	})

	terminated := Lookup("statement", simple)
	g.statement.Set(New("statement", func(ctx *Context) (ast.Node, bool) {
		pos := ctx.Scanner.Pos()
		if _, ok := semicolon.Parse(ctx); ok {
			return nil, true
		}
		for _, p := range []Parser[ast.Node]{directive, label, g.complex} {
			if n, ok := p.Parse(ctx); ok {
				return n, true
			}
		}
		for _, p := range []Parser[ast.Node]{terminated, g.expr} {
			if n, ok := p.Parse(ctx); ok {
				terminate(ctx)
				return n, true
			}
		}
		ctx.Scanner.Reset(pos)
		return nil, false
	}))

	g.woven = New("statement", func(ctx *Context) ([]ast.Node, bool) {
		pos := ctx.Scanner.Pos()
		start := ctx.Pos()
		var vars []*ast.Variable
		weave := ctx.Debugger.WeavesStatements()
		if weave {
			vars = ctx.Scope.Variables()
		}
		n, ok := g.statement.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
			return nil, false
		}
		if n == nil {
			return nil, true
		}
		if !weave || !isWeavable(n) {
			return []ast.Node{n}, true
		}
		sp := ctx.SpanOf(start, start)
		point := &ast.DebugPoint{Span: sp, Line: sp.Line, Column: sp.Column,
			Text: diag.LineText(ctx.src.Code, sp.Line), Vars: vars}
		return []ast.Node{point, n}, true
	})
	statements := Then(ZeroOrMany(g.woven), flatten)

	g.block.Set(nodeParser("block", func(ctx *Context, start int) (*ast.Block, bool) {
		if _, ok := lbrace.Parse(ctx); !ok {
			return nil, false
		}
		defer ctx.Scope.Enter(scope.Block)()
		body, _ := statements.Parse(ctx)
		require(ctx, rbrace)
		return &ast.Block{Span: ctx.Span(start), Vars: ctx.Scope.Locals(), Body: body}, true
	}))
	g.statements = statements
	// Case bodies are woven statements, so switch is registered last.
	must.OK(stmts.Add("switch", g.switchParser()))
}

func flatten(nss [][]ast.Node) []ast.Node {
	var all []ast.Node
	for _, ns := range nss {
		all = append(all, ns...)
	}
	return all
}

// Reports whether a debug point may be inserted before n.
func isWeavable(n ast.Node) bool {
	switch n.(type) {
	case *ast.LabelStmt, *ast.Directive, *ast.DebugPoint:
		return false
	}
	return true
}

// terminate requires the semicolon ending a simple statement. The last
// statement of the source may omit it unless RequireTermination is set.
func terminate(ctx *Context) {
	if _, ok := semicolon.Parse(ctx); ok {
		return
	}
	if !ctx.RequireTermination {
		pos := ctx.Scanner.Pos()
		ctx.Scanner.SkipWhitespace()
		atEOF := ctx.Scanner.EOF()
		ctx.Scanner.Reset(pos)
		if atEOF {
			return
		}
	}
	ctx.unexpected("';'")
}

func (g *Grammar) parseIf(ctx *Context, start int) (ast.Node, bool) {
	require(ctx, lparen)
	test := require(ctx, Parser[ast.Node](g.expr))
	require(ctx, rparen)
	if test.Type().Kind != types.BoolKind {
		ctx.SemanticErrorf(test, "if condition must be bool, got %s", test.Type())
	}
	then := require(ctx, Parser[*ast.Block](g.block))
	var els ast.Node
	if _, ok := Keyword("else").Parse(ctx); ok {
		if _, ok := Keyword("if").Parse(ctx); ok {
			elseStart := ctx.Scanner.Pos() - len("if")
			els, _ = g.parseIf(ctx, elseStart)
		} else {
			els = require(ctx, Parser[*ast.Block](g.block))
		}
	}
	t := types.Void
	if els != nil {
		u, ok := types.Unify(then.Type(), els.Type())
		if !ok {
			ctx.SemanticErrorf(ctx.Span(start),
				"mismatched types in conditional: %s and %s", then.Type(), els.Type())
		}
		t = u
	}
	return &ast.Conditional{Span: ctx.Span(start), Test: test, Then: then, Else: els, Typ: t}, true
}

func (g *Grammar) varParser() Parser[ast.Node] {
	return keywordParser("var", func(ctx *Context, start int) (ast.Node, bool) {
		nameStart := ctx.Pos()
		name := require(ctx, Identifier)
		nameSpan := ctx.Span(nameStart)
		var declared *types.Type
		if _, ok := colon.Parse(ctx); ok {
			declared = requireType(ctx, g.typ)
		}
		var init ast.Node
		if _, ok := Operator("=").Parse(ctx); ok {
			init = require(ctx, Parser[ast.Node](g.expr))
		}
		t := declared
		switch {
		case init == nil && declared == nil:
			ctx.SemanticErrorf(nameSpan, "variable %s needs a type or an initializer", name)
		case init != nil && init.Type().IsVoid():
			ctx.SemanticErrorf(init, "cannot initialize %s with void", name)
		case init != nil && declared == nil:
			if init.Type().Kind == types.NullKind {
				ctx.SemanticErrorf(init, "cannot infer the type of %s from null", name)
			}
			t = init.Type()
		case init != nil && !types.AssignableTo(init.Type(), declared):
			ctx.SemanticErrorf(init, "cannot use %s as %s", init.Type(), declared)
		}
		if t.IsVoid() {
			ctx.SemanticErrorf(nameSpan, "variable %s cannot be void", name)
		}
		v, err := ctx.Scope.Declare(name, t)
		if err != nil {
			ctx.SemanticErrorf(nameSpan, "%s", err.Error())
		}
		return &ast.Declare{Span: ctx.Span(start), Var: v, Init: init}, true
	})
}

func (g *Grammar) switchParser() Parser[ast.Node] {
	caseKeyword := Keyword("case")
	defaultLabel := Atomic(And(Keyword("default"), colon))
	caseStop := OneOf(
		Then(caseKeyword, discard[string]),
		Then(defaultLabel, discard[Pair[string, rune]]),
		Then(rbrace, discard[rune]))
	caseValue := SkipAnd(caseKeyword, AndSkip(Parser[ast.Node](g.expr), Expect(colon)))
	caseValues := ZeroOrMany(caseValue)
	body := Then(ZeroOrMany(StopBefore(g.woven, caseStop)), flatten)

	return keywordParser("switch", func(ctx *Context, start int) (ast.Node, bool) {
		require(ctx, lparen)
		value := require(ctx, Parser[ast.Node](g.expr))
		require(ctx, rparen)
		require(ctx, lbrace)

		lc := ctx.Scope.PushSwitch()
		defer ctx.Scope.PopLoop()
		defer ctx.Scope.Enter(scope.Block)()

		sw := &ast.Switch{Value: value, Typ: types.Void, Break: lc.Break}
		hasDefault := false
		for {
			if values, _ := caseValues.Parse(ctx); len(values) > 0 {
				for _, v := range values {
					if _, err := BinaryType(ast.Eq, value.Type(), v.Type()); err != nil {
						ctx.SemanticErrorf(v, "case value of type %s does not match %s", v.Type(), value.Type())
					}
				}
				stmts, _ := body.Parse(ctx)
				sw.Cases = append(sw.Cases, &ast.Case{Values: values, Body: stmts})
				continue
			}
			defaultStart := ctx.Pos()
			if _, ok := defaultLabel.Parse(ctx); ok {
				if hasDefault {
					ctx.SemanticErrorf(ctx.Span(defaultStart), "multiple defaults in switch")
				}
				hasDefault = true
				sw.Default, _ = body.Parse(ctx)
				continue
			}
			break
		}
		require(ctx, rbrace)
		sw.Span = ctx.Span(start)
		return sw, true
	})
}

func (g *Grammar) tryParser() Parser[ast.Node] {
	catchKeyword := Keyword("catch")
	return keywordParser("try", func(ctx *Context, start int) (ast.Node, bool) {
		try := &ast.Try{Body: require(ctx, Parser[*ast.Block](g.block))}
		for {
			if _, ok := catchKeyword.Parse(ctx); !ok {
				break
			}
			try.Catches = append(try.Catches, g.parseCatch(ctx))
		}
		if _, ok := Keyword("finally").Parse(ctx); ok {
			try.Finally = require(ctx, Parser[*ast.Block](g.block))
		}
		if len(try.Catches) == 0 && try.Finally == nil {
			ctx.SemanticErrorf(ctx.Span(start), "try needs a catch or finally clause")
		}
		try.Span = ctx.Span(start)
		return try, true
	})
}

func (g *Grammar) parseCatch(ctx *Context) *ast.Catch {
	defer ctx.Scope.Enter(scope.Block)()
	c := &ast.Catch{}
	if _, ok := lparen.Parse(ctx); ok {
		typeStart := ctx.Pos()
		c.ExcType = requireType(ctx, g.typ)
		if c.ExcType.Kind != types.HostKind {
			ctx.SemanticErrorf(ctx.Span(typeStart), "cannot catch %s", c.ExcType)
		}
		if name, ok := Identifier.Parse(ctx); ok {
			v, err := ctx.Scope.Declare(name, c.ExcType)
			if err != nil {
				ctx.SemanticErrorf(ctx.Span(typeStart), "%s", err.Error())
			}
			c.Var = v
		}
		require(ctx, rparen)
	}
	c.Body = require(ctx, Parser[*ast.Block](g.block))
	return c
}

// ParseReference parses the argument of a #r directive, like
// "nuget: XS.Text, ^1.2". The version constraint is nil if absent.
func ParseReference(arg string) (string, *semver.Constraints, error) {
	arg = strings.TrimSpace(arg)
	arg = strings.TrimSpace(strings.TrimPrefix(arg, "nuget:"))
	name, version, hasVersion := strings.Cut(arg, ",")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", nil, fmt.Errorf("invalid reference %q", arg)
	}
	if !hasVersion {
		return name, nil, nil
	}
	c, err := semver.NewConstraint(strings.TrimSpace(version))
	if err != nil {
		return "", nil, fmt.Errorf("invalid version in reference %q: %w", arg, err)
	}
	return name, c, nil
}

func applyDirective(ctx *Context, d *ast.Directive) {
	switch d.Name {
	case "r":
		name, c, err := ParseReference(d.Arg)
		if err != nil {
			ctx.SemanticErrorf(d, "%s", err.Error())
		}
		loader, ok := ctx.Resolver.(ReferenceLoader)
		if !ok {
			ctx.SemanticErrorf(d, "cannot load reference %s", name)
		}
		if err := loader.AddReference(name, c); err != nil {
			ctx.SemanticErrorf(d, "%s", err.Error())
		}
	default:
		ctx.SemanticErrorf(d, "unknown directive #%s", d.Name)
	}
}
