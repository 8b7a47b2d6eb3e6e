package parse

import (
	"sort"
	"strings"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/scan"
	"src.xs.sh/pkg/types"
)

// Grammar is an assembled XS grammar. It holds no parsing state, so a single
// Grammar can be used for any number of Parse calls.
type Grammar struct {
	expr      *Deferred[ast.Node]
	unary     *Deferred[ast.Node]
	statement *Deferred[ast.Node]
	block     *Deferred[*ast.Block]
	typ       *Deferred[*types.Type]

	baseType  Parser[*types.Type]
	namedType Parser[*types.Type]
	args      Parser[[]ast.Node]
	complex   Parser[ast.Node]
	woven     Parser[[]ast.Node]
	// Statements until the first one that fails.
	statements Parser[[]ast.Node]

	tables   keywordTables
	reserved map[string]bool
}

// Words that are reserved without being in any keyword table.
var reservedWords = []string{"else", "case", "catch", "finally"}

// NewGrammar assembles the grammar with the given extensions. It fails if an
// extension conflicts with a keyword.
func NewGrammar(exts ...Extension) (*Grammar, error) {
	g := &Grammar{
		expr:      NewDeferred[ast.Node]("expression"),
		unary:     NewDeferred[ast.Node]("expression"),
		statement: NewDeferred[ast.Node]("statement"),
		block:     NewDeferred[*ast.Block]("block"),
		typ:       NewDeferred[*types.Type]("type"),
		reserved:  map[string]bool{},
	}
	for i := range g.tables {
		g.tables[i] = NewKeywordTable[ast.Node]()
	}
	for _, w := range reservedWords {
		g.reserved[w] = true
	}
	for name := range types.Builtin {
		g.reserved[name] = true
	}

	g.initTypes()
	g.initExpressions()
	g.initStatements()

	for _, table := range g.tables {
		for _, key := range table.Keys() {
			g.reserved[key] = true
		}
	}
	b := &Binder{Expr: g.expr, Statement: g.statement, Block: g.block, Type: g.typ}
	if err := addExtensions(&g.tables, g.reserved, exts, b); err != nil {
		return nil, err
	}
	return g, nil
}

// Keywords returns all reserved words, sorted.
func (g *Grammar) Keywords() []string {
	words := make([]string, 0, len(g.reserved))
	for w := range g.reserved {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// nodeParser returns a parser whose function receives the start of what it
// parses, after any whitespace. The cursor is restored if fn fails.
func nodeParser[T any](name string, fn func(ctx *Context, start int) (T, bool)) Parser[T] {
	return New(name, func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		start := ctx.Pos()
		v, ok := fn(ctx, start)
		if !ok {
			ctx.Scanner.Reset(pos)
		}
		return v, ok
	})
}

// keywordParser returns a parser to be registered in a keyword table. Its
// function receives the start of the keyword.
func keywordParser[T any](name string, fn func(ctx *Context, start int) (T, bool)) Parser[T] {
	return New(name, func(ctx *Context) (T, bool) {
		return fn(ctx, ctx.KeywordStart())
	})
}

func discard[T any](T) struct{} { return struct{}{} }

func toNode[N ast.Node](n N) ast.Node { return n }

// Commonly used terminals.
var (
	lparen    = Char('(')
	rparen    = Char(')')
	lbrace    = Char('{')
	rbrace    = Char('}')
	lbracket  = Char('[')
	rbracket  = Char(']')
	comma     = Char(',')
	colon     = Char(':')
	semicolon = Char(';')
	dot       = Char('.')
	arrow     = Operator("=>")

	emptyBrackets = Atomic(And(lbracket, rbracket))
	memberName    = terminal("member name", (*scan.Scanner).ReadIdentifier)
)

func (g *Grammar) checkLabels(ctx *Context) {
	if names := ctx.Scope.UndefinedLabels(); len(names) > 0 {
		ctx.SemanticErrorf(ctx.SpanOf(ctx.Scanner.Pos(), ctx.Scanner.Pos()),
			"label not defined: %s", strings.Join(names, ", "))
	}
}
