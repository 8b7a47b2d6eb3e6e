package parse

import (
	"sort"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/scan"
	"src.xs.sh/pkg/scope"
	"src.xs.sh/pkg/types"
)

// Context carries the state of a single Parse call.
type Context struct {
	Scanner  *scan.Scanner
	Scope    *scope.Scope
	Resolver Resolver
	Debugger *debug.Debugger
	// Whether the last statement of the source must be terminated with a
	// semicolon.
	RequireTermination bool

	src        Source
	lineStarts []int
	stack      []string
	reserved   map[string]bool
	funcs      []*funcInfo
	// Start of the keyword most recently dispatched by Lookup.
	keywordStart int

	// The furthest position a terminal failed at, and what was expected
	// there. Used to build error messages.
	furthest int
	expected map[string]bool
}

// Information about the function (the program or a lambda) being parsed.
type funcInfo struct {
	ret     *types.Type
	returns bool
}

// The call stack is limited so that deeply nested input fails with an error
// instead of exhausting the goroutine stack.
const maxStackDepth = 4096

func newContext(src Source, cfg Config) *Context {
	ctx := &Context{
		Scanner:            scan.New(src.Code),
		Scope:              cfg.Scope,
		Resolver:           cfg.Resolver,
		Debugger:           cfg.Debugger,
		RequireTermination: cfg.RequireTermination,
		src:                src,
		lineStarts:         []int{0},
		reserved:           map[string]bool{},
		expected:           map[string]bool{},
	}
	if ctx.Scope == nil {
		ctx.Scope = scope.New()
	}
	if ctx.Resolver == nil {
		ctx.Resolver = nopResolver{}
	}
	for i := 0; i < len(src.Code); i++ {
		if src.Code[i] == '\n' {
			ctx.lineStarts = append(ctx.lineStarts, i+1)
		}
	}
	return ctx
}

// Source returns the source being parsed.
func (ctx *Context) Source() Source { return ctx.src }

// Enter pushes the name of a parser onto the call stack.
func (ctx *Context) Enter(name string) {
	if len(ctx.stack) >= maxStackDepth {
		ctx.errorAtCursor("nesting too deep")
	}
	ctx.stack = append(ctx.stack, name)
}

// Exit pops the call stack.
func (ctx *Context) Exit() {
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
}

// Stack returns a copy of the call stack, outermost first.
func (ctx *Context) Stack() []string {
	return append([]string(nil), ctx.stack...)
}

// IsReserved reports whether name is a keyword and cannot be used as an
// identifier.
func (ctx *Context) IsReserved(name string) bool {
	return ctx.reserved[name]
}

// KeywordStart returns the position of the keyword that caused the current
// parser to be dispatched by a keyword table. Parsers registered in keyword
// tables use it as the start of the node they build; they must call it
// before parsing anything else.
func (ctx *Context) KeywordStart() int { return ctx.keywordStart }

// Pos skips whitespace and returns the current position. It is used to find
// the start of a node.
func (ctx *Context) Pos() int {
	ctx.Scanner.SkipWhitespace()
	return ctx.Scanner.Pos()
}

// Span returns the span from the given position to the current position.
func (ctx *Context) Span(from int) ast.Span {
	return ctx.SpanOf(from, ctx.Scanner.Pos())
}

// SpanOf returns the span between two positions.
func (ctx *Context) SpanOf(from, to int) ast.Span {
	line := sort.Search(len(ctx.lineStarts), func(i int) bool {
		return ctx.lineStarts[i] > from
	})
	col := 1 + len([]rune(ctx.src.Code[ctx.lineStarts[line-1]:from]))
	return ast.Span{Offset: from, Length: to - from, Line: line, Column: col}
}

// Records that a terminal expected something at pos.
func (ctx *Context) expect(pos int, what string) {
	switch {
	case pos > ctx.furthest:
		ctx.furthest = pos
		ctx.expected = map[string]bool{what: true}
	case pos == ctx.furthest:
		ctx.expected[what] = true
	}
}

func (ctx *Context) pushFunc() *funcInfo {
	f := &funcInfo{}
	ctx.funcs = append(ctx.funcs, f)
	return f
}

func (ctx *Context) popFunc() {
	ctx.funcs = ctx.funcs[:len(ctx.funcs)-1]
}

func (ctx *Context) currentFunc() *funcInfo {
	return ctx.funcs[len(ctx.funcs)-1]
}
