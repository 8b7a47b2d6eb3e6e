package host

import (
	"errors"
	"fmt"

	"src.xs.sh/pkg/types"
)

// Exception is the value of an exception object, created by a constructor of
// an exception type or raised by the runtime.
type Exception struct {
	Type    *types.Type
	Message string
}

// Exception types.
var (
	ExceptionType        = types.NewHost("System.Exception")
	DivideByZeroType     = newExceptionType("DivideByZeroException")
	IndexOutOfRangeType  = newExceptionType("IndexOutOfRangeException")
	NullReferenceType    = newExceptionType("NullReferenceException")
	InvalidOperationType = newExceptionType("InvalidOperationException")
	ArgumentType         = newExceptionType("ArgumentException")
	FormatType           = newExceptionType("FormatException")
	OverflowType         = newExceptionType("OverflowException")
	InvalidCastType      = newExceptionType("InvalidCastException")
)

var exceptionTypes = []*types.Type{
	ExceptionType, DivideByZeroType, IndexOutOfRangeType, NullReferenceType,
	InvalidOperationType, ArgumentType, FormatType, OverflowType, InvalidCastType,
}

func init() {
	addExceptionCtors(ExceptionType)
	addProperty(ExceptionType, "Message", types.String, func(recv any) (any, error) {
		return recv.(*Exception).Message, nil
	})
}

func newExceptionType(name string) *types.Type {
	t := types.NewHost("System." + name)
	t.Base = ExceptionType
	addExceptionCtors(t)
	return t
}

func addExceptionCtors(t *types.Type) {
	addCtor(t, nil, func(_ any, _ []any) (any, error) {
		return NewException(t, "Exception of type '%s' was thrown.", t.Name), nil
	})
	addCtor(t, params(types.String), func(_ any, args []any) (any, error) {
		msg, _ := args[0].(string)
		return &Exception{Type: t, Message: msg}, nil
	})
}

// NewException creates an exception of the given type.
func NewException(t *types.Type, format string, args ...any) *Exception {
	return &Exception{Type: t, Message: fmt.Sprintf(format, args...)}
}

// AsException returns err if it is or wraps an *Exception. Otherwise it
// returns a System.Exception with the message of err.
func AsException(err error) *Exception {
	var e *Exception
	if errors.As(err, &e) {
		return e
	}
	return &Exception{Type: ExceptionType, Message: err.Error()}
}

func (e *Exception) Error() string { return e.Type.Name + ": " + e.Message }

// Kind returns "exception".
func (e *Exception) Kind() string { return "exception" }

// String returns the same as Error, which is what ToString() returns.
func (e *Exception) String() string { return e.Error() }

// Repr returns a representation of the exception.
func (e *Exception) Repr() string { return "<exception " + e.Error() + ">" }
