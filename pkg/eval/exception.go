package eval

import (
	"bytes"
	"errors"
	"fmt"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/host"
)

// Exception is an error raised while running XS code, together with where it
// was raised. The reason of exceptions thrown by XS code and by host methods
// is a *host.Exception; other reasons, like ErrInterrupted, cannot be caught.
type Exception struct {
	Reason     error
	StackTrace *StackTrace
}

// StackTrace is a stack trace as a linked list of diag.Context. The head is
// the innermost frame.
type StackTrace struct {
	Head *diag.Context
	Next *StackTrace
}

// Error returns the message of the reason of the exception.
func (exc *Exception) Error() string { return exc.Reason.Error() }

// Unwrap returns the reason.
func (exc *Exception) Unwrap() error { return exc.Reason }

// Show shows the exception.
func (exc *Exception) Show(indent string) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Exception: \033[31;1m%s\033[m", exc.Reason.Error())
	if exc.StackTrace != nil {
		buf.WriteString("\n")
		if exc.StackTrace.Next == nil {
			buf.WriteString(indent + "  " + exc.StackTrace.Head.ShowCompact(indent+"  "))
		} else {
			buf.WriteString(indent + "Traceback:")
			for tb := exc.StackTrace; tb != nil; tb = tb.Next {
				buf.WriteString("\n" + indent + "  ")
				buf.WriteString(tb.Head.Show(indent + "    "))
			}
		}
	}
	return buf.String()
}

// Kind returns "exception".
func (exc *Exception) Kind() string { return "exception" }

// HostException returns the host exception err carries, if any.
func HostException(err error) (*host.Exception, bool) {
	var e *host.Exception
	ok := errors.As(err, &e)
	return e, ok
}

// ErrInterrupted is thrown when the execution is interrupted.
var ErrInterrupted = errors.New("interrupted")

// ErrStackOverflow is thrown when lambdas nest too deeply.
var ErrStackOverflow = errors.New("stack overflow")

type flowKind uint8

const (
	breakFlow flowKind = iota
	continueFlow
	gotoFlow
	returnFlow
)

// A flow is a jump. Flows travel up the ops as errors until the op that
// owns their label handles them; they are never wrapped or caught.
type flow struct {
	kind  flowKind
	label *ast.Label
	value any
	// Where the jump was made.
	at ast.Span
}

func (f *flow) Error() string {
	switch f.kind {
	case breakFlow:
		return "break outside of loop"
	case continueFlow:
		return "continue outside of loop"
	case gotoFlow:
		return fmt.Sprintf("label %s is not reachable", f.label.Name)
	default:
		return "return outside of function"
	}
}

// Returns whether err is a flow of the given kind with the given label.
func isFlow(err error, kind flowKind, label *ast.Label) bool {
	f, ok := err.(*flow)
	return ok && f.kind == kind && f.label == label
}

// Converts an error returned by a host method to the reason of an exception.
// Exceptions raised by lambdas the host method called back are kept.
func hostError(err error) error {
	if err == nil {
		return nil
	}
	var exc *Exception
	if errors.As(err, &exc) {
		return exc
	}
	return host.AsException(err)
}
