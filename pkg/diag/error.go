package diag

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Error represents an error with context that can be shown. The type
// parameter distinguishes different kinds of errors, such as parse errors and
// semantic errors, so that callers can tell them apart with errors.As.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error may be caused by partial input. More input
	// can only possibly fix the error when it occurs at the end of the input.
	Partial bool
}

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return errorTag[T]() + ": " + e.Context.describeStart() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Position returns the line and column where the error starts.
func (e *Error[T]) Position() Position {
	return e.Context.Position()
}

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	return fmt.Sprintf("%s: %s%s%s\n%s%s",
		tagTitle(errorTag[T]()), messageStart, e.Message, messageEnd,
		indent+"  ", e.Context.ShowCompact(indent+"  "))
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

// Capitalizes a tag like "parse error" for the start of a shown error.
func tagTitle(tag string) string {
	r, size := utf8.DecodeRuneInString(tag)
	if size == 0 {
		return tag
	}
	return string(unicode.ToTitle(r)) + tag[size:]
}

// UnpackErrors returns the constituent Error values of the given type if err
// is an Error of that type or a multi-error made up of them. Otherwise it
// returns nil.
func UnpackErrors[T ErrorTag](err error) []*Error[T] {
	switch err := err.(type) {
	case *Error[T]:
		return []*Error[T]{err}
	case multiError:
		var errs []*Error[T]
		for _, e := range err.Unwrap() {
			if e, ok := e.(*Error[T]); ok {
				errs = append(errs, e)
			} else {
				return nil
			}
		}
		return errs
	default:
		var e *Error[T]
		if errors.As(err, &e) {
			return []*Error[T]{e}
		}
		return nil
	}
}

type multiError interface {
	Unwrap() []error
}
