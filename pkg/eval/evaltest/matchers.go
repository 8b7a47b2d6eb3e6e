package evaltest

import (
	"fmt"
	"math"
	"strings"

	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/host"
)

// ValueMatcher is a value that can be passed to [Case.Puts] and has its own
// matching semantics.
type ValueMatcher interface{ matchValue(any) bool }

// Anything matches anything. It is useful when the value contains information
// that is useful when the test fails.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) matchValue(any) bool { return true }

// ApproximatelyThreshold defines the threshold for matching float64 values
// when using [Approximately].
const ApproximatelyThreshold = 1e-12

// Approximately matches a float64 within the threshold defined by
// [ApproximatelyThreshold].
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) matchValue(value any) bool {
	if value, ok := value.(float64); ok {
		return matchFloat64(a.value, value, ApproximatelyThreshold)
	}
	return false
}

func matchFloat64(a, b, threshold float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 0) && math.IsInf(b, 0) &&
		math.Signbit(a) == math.Signbit(b) {
		return true
	}
	return math.Abs(a-b) <= threshold
}

// ReprOf matches any value whose ToString rendering is s. It is useful for
// host objects.
func ReprOf(s string) ValueMatcher { return reprOf{s} }

type reprOf struct{ s string }

func (r reprOf) matchValue(v any) bool { return vals.ToString(v) == r.s }

type errorMatcher interface{ matchError(error) bool }

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return want == got
}

// An errorMatcher for exceptions.
type exc struct {
	reason error
}

func (e exc) Error() string { return fmt.Sprintf("exception with reason %v", e.reason) }

func (e exc) matchError(e2 error) bool {
	if e2, ok := e2.(*eval.Exception); ok {
		return matchErr(e.reason, e2.Reason)
	}
	return false
}

// An errorMatcher for parse and semantic errors.
type parseError struct{ msg string }

func (e parseError) Error() string { return "parse error containing " + e.msg }

func (e parseError) matchError(e2 error) bool {
	if e2 == nil {
		return false
	}
	_, isException := e2.(*eval.Exception)
	return !isException && strings.Contains(e2.Error(), e.msg)
}

// ExceptionOfType returns an error that can be passed to Case.Throws to match
// a host exception of the named type, like "System.DivideByZeroException".
func ExceptionOfType(name string) error { return excOfType{name} }

type excOfType struct{ name string }

func (e excOfType) Error() string { return "exception of type " + e.name }

func (e excOfType) matchError(e2 error) bool {
	he, ok := e2.(*host.Exception)
	return ok && he.Type.Name == e.name
}

// ErrorWithMessage returns an error that can be passed to Case.Throws to match
// any error with the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

// An errorMatcher for any error with the given message.
type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message " + e.msg }

func (e errWithMessage) matchError(e2 error) bool {
	return e2 != nil && e.msg == e2.Error()
}
