package parse

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"src.xs.sh/pkg/diag"
)

// Error is a syntax error.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

func (ErrorTag) ErrorTag() string { return "parse error" }

// SemanticError is an error found while resolving and typing the program:
// unknown identifiers, misplaced break and continue, type mismatches.
type SemanticError = diag.Error[SemanticTag]

// SemanticTag parameterizes [diag.Error] to define [SemanticError].
type SemanticTag struct{}

func (SemanticTag) ErrorTag() string { return "semantic error" }

// UnpackErrors returns the constituent syntax errors if the given error
// contains one or more of them. Otherwise it returns nil.
func UnpackErrors(e error) []*Error {
	if errs := diag.UnpackErrors[ErrorTag](e); len(errs) > 0 {
		return errs
	}
	return nil
}

// IsPartial reports whether err is a syntax error that may be fixed by
// appending more input.
func IsPartial(err error) bool {
	errs := UnpackErrors(err)
	return len(errs) == 1 && errs[0].Partial
}

func shouldBe(text string, options ...string) string {
	if len(options) == 0 {
		return text
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + options[0])
	for i, opt := range options[1:] {
		if i == len(options)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return buf.String()
}

// A panic value used to abort parsing. Only values of this type are
// recovered at the Parse boundary.
type abort struct{ err error }

// Errorf aborts parsing with a syntax error at r.
func (ctx *Context) Errorf(r diag.Ranger, format string, args ...any) {
	rg := r.Range()
	panic(abort{&Error{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ctx.src.Name, ctx.src.Code, rg),
		Partial: rg.From >= len(ctx.src.Code),
	}})
}

// SemanticErrorf aborts parsing with a semantic error at r.
func (ctx *Context) SemanticErrorf(r diag.Ranger, format string, args ...any) {
	panic(abort{&SemanticError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ctx.src.Name, ctx.src.Code, r.Range()),
	}})
}

// errorAtCursor aborts parsing with a syntax error at the current position.
func (ctx *Context) errorAtCursor(msg string) {
	ctx.Scanner.SkipWhitespace()
	pos := ctx.Scanner.Pos()
	end := pos
	if end < len(ctx.src.Code) {
		end++
	}
	ctx.Errorf(diag.Ranging{From: pos, To: end}, "%s", msg)
}

// unexpected aborts parsing with a syntax error describing what was found
// and what was expected. Without options, the error is placed at the
// furthest position any terminal failed at, and lists what was expected
// there.
func (ctx *Context) unexpected(options ...string) {
	ctx.Scanner.SkipWhitespace()
	pos := ctx.Scanner.Pos()
	if len(options) == 0 {
		if ctx.furthest > pos {
			pos = ctx.furthest
		}
		if pos == ctx.furthest && len(ctx.expected) <= maxExpected {
			for name := range ctx.expected {
				options = append(options, name)
			}
			sort.Strings(options)
		}
	}
	found := "end of input"
	end := pos
	if pos < len(ctx.src.Code) {
		r, size := utf8.DecodeRuneInString(ctx.src.Code[pos:])
		found = strconv.QuoteRune(r)
		end += size
	}
	ctx.Errorf(diag.Ranging{From: pos, To: end}, "%s", shouldBe("unexpected "+found, options...))
}

const maxExpected = 4

// didYouMean returns a suggestion suffix for an unknown name, or "".
func didYouMean(name string, candidates []string) string {
	matches := fuzzy.RankFindFold(name, candidates)
	if len(matches) == 0 {
		// Also try the other direction, so that typos shorter than the
		// intended name are found.
		for _, c := range candidates {
			if fuzzy.LevenshteinDistance(name, c) <= 2 {
				return fmt.Sprintf(" (did you mean %s?)", c)
			}
		}
		return ""
	}
	sort.Sort(matches)
	return fmt.Sprintf(" (did you mean %s?)", matches[0].Target)
}
