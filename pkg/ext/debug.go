package ext

import (
	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/types"
)

// debug(); and debug(cond); are explicit debug points. They fire in both the
// Call and the Statements modes of the debugger; the conditional form only
// fires when cond is true.
func debugParser(b *parse.Binder) parse.Parser[ast.Node] {
	return parse.New("debug", func(ctx *parse.Context) (ast.Node, bool) {
		start := ctx.KeywordStart()
		lparen.Parse(ctx)
		cond, _ := b.Expr.Parse(ctx)
		if cond != nil && cond.Type().Kind != types.BoolKind {
			ctx.SemanticErrorf(cond, "debug condition must be bool, got %s", cond.Type())
		}
		rparen.Parse(ctx)
		sp := ctx.Span(start)
		return &ast.DebugPoint{Span: sp, Line: sp.Line, Column: sp.Column,
			Text: diag.LineText(ctx.Source().Code, sp.Line),
			Vars: ctx.Scope.Variables(), Explicit: true, Cond: cond}, true
	})
}
