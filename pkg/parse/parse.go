// Package parse implements the XS parser.
//
// The parser is built from parser combinators (see [Parser]). Parsing and
// type checking happen in a single pass: names are resolved against a
// [scope.Scope] and a [Resolver] as they are read, and every node is typed
// when it is built. The result is a tree of [ast] nodes ready to be compiled.
//
// Grammar rules fail softly to allow alternatives to be tried. Errors abort
// the whole parse; a Parse call returns at most one error.
package parse

import (
	"fmt"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/scope"
)

var logger = logutil.GetLogger("[parse] ")

// Config keeps configuration options for Parse.
type Config struct {
	// Scope to parse in. If nil, a fresh scope is used. A persistent scope
	// lets variables declared in one Parse call be used in the next, which
	// is how the REPL works.
	Scope *scope.Scope
	// Resolver of host types. If nil, no host types are available.
	Resolver Resolver
	// Debugger hook. Debug points are woven into the tree if it is enabled.
	Debugger *debug.Debugger
	// Whether the last statement must be terminated with a semicolon.
	RequireTermination bool
	// Extensions to add to the grammar.
	Extensions []Extension
}

// Parse parses the given source. The returned error is either an *Error or a
// *SemanticError.
func Parse(src Source, cfg Config) (*ast.Program, error) {
	g, err := NewGrammar(cfg.Extensions...)
	if err != nil {
		return nil, err
	}
	return g.Parse(src, cfg)
}

// Parse parses the source using g. The Extensions field of cfg is ignored.
func (g *Grammar) Parse(src Source, cfg Config) (prog *ast.Program, err error) {
	ctx := newContext(src, cfg)
	ctx.reserved = g.reserved
	depth, loops := ctx.Scope.Depth(), ctx.Scope.LoopDepth()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		a, ok := r.(abort)
		if !ok {
			panic(r)
		}
		logger.Printf("parse %s failed, stack %v: %v", src.Name, ctx.Stack(), a.err)
		if ctx.Scope.Depth() != depth || ctx.Scope.LoopDepth() != loops {
			// Frames are popped with defer, so this is always a bug.
			panic(fmt.Sprintf("scope not restored after error: depth %d -> %d, loops %d -> %d",
				depth, ctx.Scope.Depth(), loops, ctx.Scope.LoopDepth()))
		}
		prog, err = nil, a.err
	}()
	return g.program(ctx), nil
}

func (g *Grammar) program(ctx *Context) *ast.Program {
	ctx.pushFunc()
	defer ctx.popFunc()
	start := ctx.Scanner.Pos()
	body, _ := g.statements.Parse(ctx)
	if _, ok := EOF.Parse(ctx); !ok {
		ctx.unexpected()
	}
	g.checkLabels(ctx)
	block := &ast.Block{Span: ctx.Span(start), Vars: ctx.Scope.Locals(), Body: body}
	return &ast.Program{Body: block, Source: ctx.src.Code, Name: ctx.src.Name}
}
