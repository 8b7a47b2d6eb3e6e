package parse

import (
	"strconv"
	"strings"

	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/scan"
)

// Terminals skip whitespace before reading. On failure they restore the
// cursor to before the whitespace and record what they expected, for error
// messages.

func terminal[T any](name string, read func(s *scan.Scanner) (T, bool)) Parser[T] {
	return New(name, func(ctx *Context) (T, bool) {
		pos := ctx.Scanner.Pos()
		ctx.Scanner.SkipWhitespace()
		start := ctx.Scanner.Pos()
		v, ok := read(ctx.Scanner)
		if !ok {
			ctx.expect(start, name)
			ctx.Scanner.Reset(pos)
		}
		return v, ok
	})
}

// Char parses a single character.
func Char(r rune) Parser[rune] {
	return terminal(strconv.QuoteRune(r), func(s *scan.Scanner) (rune, bool) {
		return r, s.ReadChar(r)
	})
}

// Text parses the given text.
func Text(text string) Parser[string] {
	return terminal("'"+text+"'", func(s *scan.Scanner) (string, bool) {
		return text, s.ReadText(text)
	})
}

// Keyword parses a keyword, which must not be immediately followed by a
// character that could continue an identifier.
func Keyword(kw string) Parser[string] {
	return terminal(kw, func(s *scan.Scanner) (string, bool) {
		return kw, s.ReadKeyword(kw)
	})
}

// Identifier parses an identifier that is not a reserved keyword.
var Identifier Parser[string] = New("identifier", func(ctx *Context) (string, bool) {
	pos := ctx.Scanner.Pos()
	ctx.Scanner.SkipWhitespace()
	start := ctx.Scanner.Pos()
	name, ok := ctx.Scanner.ReadIdentifier()
	if !ok || ctx.IsReserved(name) {
		ctx.expect(start, "identifier")
		ctx.Scanner.Reset(pos)
		return "", false
	}
	return name, true
})

// Number parses the lexical form of a number.
var Number = terminal("number", (*scan.Scanner).ReadNumber)

// StringLit parses a double-quoted string. A string that starts but is
// malformed is a syntax error.
var StringLit Parser[string] = New("string", func(ctx *Context) (string, bool) {
	pos := ctx.Scanner.Pos()
	ctx.Scanner.SkipWhitespace()
	start := ctx.Scanner.Pos()
	s, ok, err := ctx.Scanner.ReadString()
	if err != nil {
		ctx.Errorf(diag.Ranging{From: start, To: ctx.Scanner.Pos()}, "%s", err.Error())
	}
	if !ok {
		ctx.expect(start, "string")
		ctx.Scanner.Reset(pos)
	}
	return s, ok
})

// CharLit parses a single-quoted character. A character literal that starts
// but is malformed is a syntax error.
var CharLit Parser[rune] = New("character", func(ctx *Context) (rune, bool) {
	pos := ctx.Scanner.Pos()
	ctx.Scanner.SkipWhitespace()
	start := ctx.Scanner.Pos()
	r, ok, err := ctx.Scanner.ReadCharLit()
	if err != nil {
		ctx.Errorf(diag.Ranging{From: start, To: ctx.Scanner.Pos()}, "%s", err.Error())
	}
	if !ok {
		ctx.expect(start, "character")
		ctx.Scanner.Reset(pos)
	}
	return r, ok
})

// EOF succeeds at the end of the input.
var EOF = terminal("end of input", func(s *scan.Scanner) (struct{}, bool) {
	return struct{}{}, s.EOF()
})

// All operators, longest first within each shared prefix. Reading an
// operator takes the longest one that matches, so that "<=" is never read as
// "<" followed by "=".
var operators = []string{
	"<<=", ">>=", "??",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"++", "--", "+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^",
}

func readOperator(s *scan.Scanner) (string, bool) {
	rest := s.Rest()
	best := ""
	for _, op := range operators {
		if len(op) > len(best) && strings.HasPrefix(rest, op) {
			best = op
		}
	}
	if best == "" {
		return "", false
	}
	s.Reset(s.Pos() + len(best))
	return best, true
}

// Operator parses the given operator, using maximal munch: Operator("<")
// does not match the input "<=".
func Operator(op string) Parser[string] {
	return terminal("'"+op+"'", func(s *scan.Scanner) (string, bool) {
		pos := s.Pos()
		got, ok := readOperator(s)
		if !ok || got != op {
			s.Reset(pos)
			return "", false
		}
		return op, true
	})
}

// OperatorIn parses any of the given operators, using maximal munch.
func OperatorIn(name string, ops ...string) Parser[string] {
	set := map[string]bool{}
	for _, op := range ops {
		set[op] = true
	}
	return terminal(name, func(s *scan.Scanner) (string, bool) {
		pos := s.Pos()
		got, ok := readOperator(s)
		if !ok || !set[got] {
			s.Reset(pos)
			return "", false
		}
		return got, true
	})
}
