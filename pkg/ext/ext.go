// Package ext implements the built-in extensions of the XS grammar: the for,
// foreach and while loops, the debug statement, and the nameof and typeof
// operators.
//
// Extensions desugar into the nodes of the core grammar, so the evaluator and
// the printer need no knowledge of them.
package ext

import (
	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/parse"
)

type extension struct {
	typ    parse.ExtensionType
	key    string
	create func(b *parse.Binder) parse.Parser[ast.Node]
}

func (e extension) Type() parse.ExtensionType { return e.typ }
func (e extension) Key() string               { return e.key }

func (e extension) CreateParser(b *parse.Binder) parse.Parser[ast.Node] {
	return e.create(b)
}

// All returns all the built-in extensions.
func All() []parse.Extension {
	return []parse.Extension{For, Foreach, While, Debug, NameOf, TypeOf}
}

// Built-in extensions.
var (
	For     parse.Extension = extension{parse.Statement, "for", forParser}
	Foreach parse.Extension = extension{parse.Statement, "foreach", foreachParser}
	While   parse.Extension = extension{parse.Statement, "while", whileParser}
	Debug   parse.Extension = extension{parse.Terminated, "debug", debugParser}
	NameOf  parse.Extension = extension{parse.Expression, "nameof", nameofParser}
	TypeOf  parse.Extension = extension{parse.Expression, "typeof", typeofParser}
)

// Commonly used terminals. Failing to parse them is a syntax error.
var (
	lparen    = parse.Expect(parse.Char('('))
	rparen    = parse.Expect(parse.Char(')'))
	semicolon = parse.Expect(parse.Char(';'))
)

func expect[T any](ctx *parse.Context, p parse.Parser[T]) T {
	v, _ := parse.Expect(p).Parse(ctx)
	return v
}
