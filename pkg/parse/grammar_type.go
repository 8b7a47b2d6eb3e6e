package parse

import (
	"strings"

	"src.xs.sh/pkg/types"
)

func (g *Grammar) initTypes() {
	genericArg := Atomic(Between(Char('<'), Parser[*types.Type](g.typ), Char('>')))

	g.namedType = New("type", func(ctx *Context) (*types.Type, bool) {
		start := ctx.Pos()
		t, ok := resolveTypeName(ctx)
		if !ok {
			return nil, false
		}
		if ctx.Scanner.Peek() != '<' {
			return t, true
		}
		arg, ok := genericArg.Parse(ctx)
		if !ok {
			return t, true
		}
		if gr, ok := ctx.Resolver.(GenericResolver); ok {
			if inst, ok := gr.Instantiate(t, arg); ok {
				return inst, true
			}
		}
		ctx.SemanticErrorf(ctx.SpanOf(start, ctx.Scanner.Pos()), "%s is not a generic type", t)
		return nil, false
	})

	paramTypes := Separated(Parser[*types.Type](g.typ), comma)
	lambdaType := Atomic(New("lambda type", func(ctx *Context) (*types.Type, bool) {
		if _, ok := lparen.Parse(ctx); !ok {
			return nil, false
		}
		params, _ := paramTypes.Parse(ctx)
		if _, ok := rparen.Parse(ctx); !ok {
			return nil, false
		}
		if _, ok := arrow.Parse(ctx); !ok {
			return nil, false
		}
		ret, ok := g.typ.Parse(ctx)
		if !ok {
			return nil, false
		}
		return types.LambdaOf(params, ret), true
	}))

	g.baseType = New("type", func(ctx *Context) (*types.Type, bool) {
		pos := ctx.Scanner.Pos()
		ctx.Scanner.SkipWhitespace()
		start := ctx.Scanner.Pos()
		if name, ok := ctx.Scanner.ReadIdentifier(); ok {
			if t, ok := types.Builtin[name]; ok {
				return t, true
			}
		}
		ctx.Scanner.Reset(pos)
		if t, ok := lambdaType.Parse(ctx); ok {
			return t, true
		}
		if t, ok := g.namedType.Parse(ctx); ok {
			return t, true
		}
		ctx.expect(start, "type")
		ctx.Scanner.Reset(pos)
		return nil, false
	})

	g.typ.Set(New("type", func(ctx *Context) (*types.Type, bool) {
		t, ok := g.baseType.Parse(ctx)
		if !ok {
			return nil, false
		}
		for {
			if _, ok := emptyBrackets.Parse(ctx); !ok {
				return t, true
			}
			t = types.ArrayOf(t)
		}
	}))
}

// requireType parses a type with p. If p fails on a name, the name is
// reported as an unknown type; otherwise the failure is a syntax error.
func requireType(ctx *Context, p Parser[*types.Type]) *types.Type {
	if t, ok := p.Parse(ctx); ok {
		return t
	}
	pos := ctx.Scanner.Pos()
	start := ctx.Pos()
	if first, ok := Identifier.Parse(ctx); ok {
		names := []string{first}
		for {
			dotPos := ctx.Scanner.Pos()
			if !ctx.Scanner.ReadChar('.') {
				break
			}
			name, ok := ctx.Scanner.ReadIdentifier()
			if !ok {
				ctx.Scanner.Reset(dotPos)
				break
			}
			names = append(names, name)
		}
		ctx.SemanticErrorf(ctx.Span(start), "type not found: %s", strings.Join(names, "."))
	}
	ctx.Scanner.Reset(pos)
	ctx.unexpected(p.Name())
	return nil
}
