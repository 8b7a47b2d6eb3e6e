package parse

import (
	"errors"
	"math"
	"strconv"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/must"
	"src.xs.sh/pkg/scan"
	"src.xs.sh/pkg/types"
)

// NumberValue returns the value and type of a numeric literal. If neg is
// true, the literal is negated, which allows the smallest integers to be
// written.
//
// Integers without a suffix are int if they fit in 32 bits and long
// otherwise. Numbers with a fraction or an exponent are double unless they
// have a suffix.
func NumberValue(num scan.Number, neg bool) (any, *types.Type, error) {
	text := num.Text
	if neg {
		text = "-" + text
	}
	switch num.Suffix {
	case 'm':
		return nil, nil, errors.New("decimal literals are not supported")
	case 'f':
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, nil, errors.New("float literal out of range")
		}
		return float32(f), types.Float, nil
	case 'd':
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, nil, errors.New("double literal out of range")
		}
		return f, types.Double, nil
	case 'l':
		if num.HasPoint {
			return nil, nil, errors.New("long literal cannot have a fraction or exponent")
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, nil, errors.New("long literal out of range")
		}
		return i, types.Long, nil
	}
	if num.HasPoint {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, nil, errors.New("double literal out of range")
		}
		return f, types.Double, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, nil, errors.New("integer literal out of range")
	}
	if math.MinInt32 <= i && i <= math.MaxInt32 {
		return int(i), types.Int, nil
	}
	return i, types.Long, nil
}

func numberLiteral(ctx *Context, num scan.Number, neg bool, start int) *ast.Literal {
	sp := ctx.Span(start)
	v, t, err := NumberValue(num, neg)
	if err != nil {
		ctx.Errorf(sp, "%s", err)
	}
	return &ast.Literal{Span: sp, Value: v, Typ: t}
}

func (g *Grammar) literalParser() Parser[ast.Node] {
	number := nodeParser("number", func(ctx *Context, start int) (ast.Node, bool) {
		num, ok := Number.Parse(ctx)
		if !ok {
			return nil, false
		}
		return numberLiteral(ctx, num, false, start), true
	})
	str := nodeParser("string", func(ctx *Context, start int) (ast.Node, bool) {
		s, ok := StringLit.Parse(ctx)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Span: ctx.Span(start), Value: s, Typ: types.String}, true
	})
	char := nodeParser("character", func(ctx *Context, start int) (ast.Node, bool) {
		r, ok := CharLit.Parse(ctx)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Span: ctx.Span(start), Value: r, Typ: types.Char}, true
	})

	constant := func(v any, t *types.Type) Parser[ast.Node] {
		return keywordParser("literal", func(ctx *Context, start int) (ast.Node, bool) {
			return &ast.Literal{Span: ctx.Span(start), Value: v, Typ: t}, true
		})
	}
	table := g.tables[Literal]
	must.OK(table.Add("true", constant(true, types.Bool)))
	must.OK(table.Add("false", constant(false, types.Bool)))
	must.OK(table.Add("null", constant(nil, types.Null)))

	return OneOf(number, str, char, Lookup("literal", table))
}
