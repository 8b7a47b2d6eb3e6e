package parse

import (
	"fmt"
	"strings"
)

// Parser parses a value of type T.
//
// Parse either succeeds, returning the value and true, or fails, returning
// false. Failure is the ordinary way to signal that the input does not match;
// genuine errors abort parsing with a panic that is recovered by [Parse].
//
// With the exception of the sequencing combinators documented below, a
// parser that fails leaves the cursor where it was.
type Parser[T any] interface {
	Parse(ctx *Context) (T, bool)
	Name() string
}

// Func is a Parser backed by a function.
type Func[T any] struct {
	name string
	fn   func(ctx *Context) (T, bool)
}

// New returns a Parser with the given name, backed by fn. The function is
// responsible for restoring the cursor on failure.
func New[T any](name string, fn func(ctx *Context) (T, bool)) *Func[T] {
	return &Func[T]{name, fn}
}

func (p *Func[T]) Name() string { return p.name }

func (p *Func[T]) Parse(ctx *Context) (T, bool) {
	ctx.Enter(p.name)
	defer ctx.Exit()
	return p.fn(ctx)
}

// Pair holds the results of two parsers.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Opt is a value that may be absent.
type Opt[T any] struct {
	Value T
	OK    bool
}

// And parses a and then b.
//
// And has first-match-commits semantics: if a fails, the cursor is restored,
// but if a succeeds and b fails, the input consumed by a is not given back.
// Wrap the result in [Atomic] when full backtracking is needed.
func And[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return New(a.Name()+" "+b.Name(), func(ctx *Context) (Pair[A, B], bool) {
		va, ok := a.Parse(ctx)
		if !ok {
			return Pair[A, B]{}, false
		}
		vb, ok := b.Parse(ctx)
		if !ok {
			return Pair[A, B]{}, false
		}
		return Pair[A, B]{va, vb}, true
	})
}

// AndSkip parses a and then b, and keeps the result of a. It commits like
// [And].
func AndSkip[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Then(And(a, b), func(p Pair[A, B]) A { return p.First })
}

// SkipAnd parses a and then b, and keeps the result of b. It commits like
// [And].
func SkipAnd[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Then(And(a, b), func(p Pair[A, B]) B { return p.Second })
}

// Atomic restores the cursor when p fails, even if p consumed input before
// failing.
func Atomic[T any](p Parser[T]) Parser[T] {
	return New(p.Name(), func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		v, ok := p.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
		}
		return v, ok
	})
}

// Then transforms the result of p.
func Then[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return New(p.Name(), func(ctx *Context) (U, bool) {
		v, ok := p.Parse(ctx)
		if !ok {
			var zero U
			return zero, false
		}
		return f(v), true
	})
}

// ThenErr transforms the result of p with a function that may fail. A
// failure is reported as a semantic error covering the input p consumed.
func ThenErr[T, U any](p Parser[T], f func(T) (U, error)) Parser[U] {
	return New(p.Name(), func(ctx *Context) (U, bool) {
		from := ctx.Pos()
		v, ok := p.Parse(ctx)
		if !ok {
			var zero U
			return zero, false
		}
		u, err := f(v)
		if err != nil {
			ctx.SemanticErrorf(ctx.Span(from), "%s", err.Error())
		}
		return u, true
	})
}

// Named gives p a name, which is used in the call stack and in error
// messages.
func Named[T any](name string, p Parser[T]) Parser[T] {
	return New(name, p.Parse)
}

// ElseError turns a failure of p into a syntax error with the given message.
func ElseError[T any](p Parser[T], msg string) Parser[T] {
	return New(p.Name(), func(ctx *Context) (T, bool) {
		v, ok := p.Parse(ctx)
		if !ok {
			ctx.errorAtCursor(msg)
		}
		return v, true
	})
}

// Expect turns a failure of p into a syntax error saying that p was
// expected.
func Expect[T any](p Parser[T]) Parser[T] {
	return New(p.Name(), func(ctx *Context) (T, bool) {
		return require(ctx, p), true
	})
}

// require parses p and aborts with a syntax error if it fails.
func require[T any](ctx *Context, p Parser[T]) T {
	v, ok := p.Parse(ctx)
	if !ok {
		ctx.unexpected(p.Name())
	}
	return v
}

// ZeroOrOne makes p optional. It always succeeds.
func ZeroOrOne[T any](p Parser[T]) Parser[Opt[T]] {
	return New("["+p.Name()+"]", func(ctx *Context) (Opt[T], bool) {
		pos := ctx.Scanner.Pos()
		v, ok := p.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
		}
		return Opt[T]{v, ok}, true
	})
}

// OneOf tries each parser in order and returns the result of the first one
// that succeeds. The cursor is restored before each attempt.
func OneOf[T any](ps ...Parser[T]) Parser[T] {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return New(strings.Join(names, " | "), func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		for _, p := range ps {
			if v, ok := p.Parse(ctx); ok {
				return v, true
			}
			ctx.Scanner.Reset(pos)
		}
		var zero T
		return zero, false
	})
}

// ZeroOrMany parses p repeatedly until it fails. It always succeeds. An
// attempt that fails after consuming input is rolled back.
func ZeroOrMany[T any](p Parser[T]) Parser[[]T] {
	return New("{"+p.Name()+"}", func(ctx *Context) ([]T, bool) {
		var vs []T
		for {
			pos := ctx.Scanner.Pos()
			v, ok := p.Parse(ctx)
			if !ok {
				ctx.Scanner.Reset(pos)
				return vs, true
			}
			vs = append(vs, v)
			if ctx.Scanner.Pos() == pos {
				// p succeeded without consuming anything; parsing it
				// again would not terminate.
				return vs, true
			}
		}
	})
}

// OneOrMany is like [ZeroOrMany], but fails if p does not match at least
// once.
func OneOrMany[T any](p Parser[T]) Parser[[]T] {
	many := ZeroOrMany(p)
	return New(p.Name()+" {"+p.Name()+"}", func(ctx *Context) ([]T, bool) {
		vs, _ := many.Parse(ctx)
		return vs, len(vs) > 0
	})
}

// Separated parses zero or more occurrences of p separated by sep. A
// trailing separator is not consumed.
func Separated[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	rest := ZeroOrMany(Atomic(SkipAnd(sep, p)))
	return New(p.Name()+" {"+sep.Name()+" "+p.Name()+"}", func(ctx *Context) ([]T, bool) {
		pos := ctx.Scanner.Pos()
		first, ok := p.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
			return nil, true
		}
		more, _ := rest.Parse(ctx)
		return append([]T{first}, more...), true
	})
}

// Between parses open, inner and close, and keeps the result of inner.
// Once open has matched, a failure of close is a syntax error.
func Between[O, T, C any](open Parser[O], inner Parser[T], close Parser[C]) Parser[T] {
	return New(open.Name()+" "+inner.Name()+" "+close.Name(), func(ctx *Context) (T, bool) {
		var zero T
		pos := ctx.Scanner.Pos()
		if _, ok := open.Parse(ctx); !ok {
			return zero, false
		}
		v, ok := inner.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
			return zero, false
		}
		require(ctx, close)
		return v, true
	})
}

// StopBefore fails without consuming input if stop matches at the cursor;
// otherwise it parses inner. It is used to end repetitions at closing tokens
// without the repeated parser knowing about them.
func StopBefore[T, S any](inner Parser[T], stop Parser[S]) Parser[T] {
	return New(inner.Name(), func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		_, stopped := stop.Parse(ctx)
		ctx.Scanner.Reset(pos)
		if stopped {
			var zero T
			return zero, false
		}
		return inner.Parse(ctx)
	})
}

// Lookahead parses p and restores the cursor whether it succeeds or not.
func Lookahead[T any](p Parser[T]) Parser[T] {
	return New(p.Name(), func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		v, ok := p.Parse(ctx)
		ctx.Scanner.Reset(pos)
		return v, ok
	})
}

// Dependent parses parent and then the parser child builds from its result.
// Only a failure of parent is a failure of the whole; if child returns nil or
// its parser fails, the result has no second value and the cursor is left
// after parent.
func Dependent[P, C any](parent Parser[P], child func(P) Parser[C]) Parser[Pair[P, Opt[C]]] {
	return New(parent.Name(), func(ctx *Context) (Pair[P, Opt[C]], bool) {
		vp, ok := parent.Parse(ctx)
		if !ok {
			return Pair[P, Opt[C]]{}, false
		}
		result := Pair[P, Opt[C]]{First: vp}
		if cp := child(vp); cp != nil {
			pos := ctx.Scanner.Pos()
			if vc, ok := cp.Parse(ctx); ok {
				result.Second = Opt[C]{vc, true}
			} else {
				ctx.Scanner.Reset(pos)
			}
		}
		return result, true
	})
}

// Return succeeds with v without consuming input.
func Return[T any](v T) Parser[T] {
	return New("", func(*Context) (T, bool) { return v, true })
}

// Deferred is a parser that is declared before it is defined, allowing
// recursive grammar rules.
type Deferred[T any] struct {
	name string
	p    Parser[T]
}

// NewDeferred returns a Deferred parser that must be defined with Set before
// it is used.
func NewDeferred[T any](name string) *Deferred[T] {
	return &Deferred[T]{name: name}
}

// Set defines the parser. It panics if the parser is already defined.
func (d *Deferred[T]) Set(p Parser[T]) {
	if d.p != nil {
		panic(fmt.Sprintf("parser %s defined twice", d.name))
	}
	d.p = p
}

func (d *Deferred[T]) Name() string { return d.name }

// Parse delegates to the defined parser. It panics if the parser has not
// been defined, which is always a bug in the grammar.
func (d *Deferred[T]) Parse(ctx *Context) (T, bool) {
	if d.p == nil {
		panic(fmt.Sprintf("parser %s used before definition", d.name))
	}
	return d.p.Parse(ctx)
}

// KeywordTable maps keywords to the parsers of what follows them.
type KeywordTable[T any] struct {
	keys    []string
	parsers map[string]Parser[T]
}

// NewKeywordTable returns an empty table.
func NewKeywordTable[T any]() *KeywordTable[T] {
	return &KeywordTable[T]{parsers: map[string]Parser[T]{}}
}

// Add registers the parser for a keyword. It fails if the keyword is already
// registered.
func (t *KeywordTable[T]) Add(key string, p Parser[T]) error {
	if _, ok := t.parsers[key]; ok {
		return fmt.Errorf("keyword %s registered twice", key)
	}
	t.keys = append(t.keys, key)
	t.parsers[key] = p
	return nil
}

// Has reports whether the keyword is registered.
func (t *KeywordTable[T]) Has(key string) bool {
	_, ok := t.parsers[key]
	return ok
}

// Keys returns the keywords in registration order.
func (t *KeywordTable[T]) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Lookup reads an identifier and dispatches to the parser registered for it.
// It fails, restoring the cursor, if the identifier is not registered or the
// dispatched parser fails.
func Lookup[T any](name string, t *KeywordTable[T]) Parser[T] {
	return New(name, func(ctx *Context) (T, bool) {
		var zero T
		pos := ctx.Scanner.Pos()
		ctx.Scanner.SkipWhitespace()
		start := ctx.Scanner.Pos()
		word, ok := ctx.Scanner.ReadIdentifier()
		if !ok {
			ctx.expect(start, name)
			ctx.Scanner.Reset(pos)
			return zero, false
		}
		p, ok := t.parsers[word]
		if !ok {
			ctx.expect(start, name)
			ctx.Scanner.Reset(pos)
			return zero, false
		}
		ctx.keywordStart = start
		v, ok := p.Parse(ctx)
		if !ok {
			ctx.Scanner.Reset(pos)
		}
		return v, ok
	})
}
