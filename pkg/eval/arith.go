package eval

import (
	"math"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/types"
)

// Numeric values are converted between kinds with the semantics of C#
// unchecked conversions: int arithmetic wraps around at 32 bits, and floating
// point values are truncated towards zero when converted to integers.

func toInt64(v any) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case rune:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case rune:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// Converts a numeric value to the representation of a numeric kind.
func convertNumber(v any, k types.Kind) any {
	switch k {
	case types.IntKind:
		return int(int32(toInt64(v)))
	case types.LongKind:
		return toInt64(v)
	case types.CharKind:
		return rune(toInt64(v))
	case types.FloatKind:
		if f, ok := v.(float32); ok {
			return f
		}
		return float32(toFloat64(v))
	case types.DoubleKind:
		return toFloat64(v)
	}
	return v
}

// Returns whether values of type from need converting to be stored as type
// to.
func needsConversion(from, to *types.Type) bool {
	return from.IsNumeric() && to.IsNumeric() && from.Kind != to.Kind
}

func fromInt64(v int64, k types.Kind) any {
	switch k {
	case types.IntKind:
		return int(int32(v))
	case types.CharKind:
		return rune(v)
	}
	return v
}

func fromFloat64(v float64, k types.Kind) any {
	if k == types.FloatKind {
		return float32(v)
	}
	return v
}

var errDivideByZero = host.NewException(host.DivideByZeroType, "Attempted to divide by zero.")

// Applies an arithmetic or bitwise operator to two integers. The result is
// truncated to 32 bits if bits is 32.
func intOp(op ast.BinaryOp, a, b int64, bits int) (int64, error) {
	var r int64
	switch op {
	case ast.Add:
		r = a + b
	case ast.Sub:
		r = a - b
	case ast.Mul:
		r = a * b
	case ast.Div:
		if b == 0 {
			return 0, errDivideByZero
		}
		r = a / b
	case ast.Mod:
		if b == 0 {
			return 0, errDivideByZero
		}
		r = a % b
	case ast.Shl:
		r = a << (uint(b) & uint(bits-1))
	case ast.Shr:
		r = a >> (uint(b) & uint(bits-1))
	case ast.And:
		r = a & b
	case ast.Or:
		r = a | b
	case ast.Xor:
		r = a ^ b
	}
	if bits == 32 {
		r = int64(int32(r))
	}
	return r, nil
}

func floatOp(op ast.BinaryOp, a, b float64) float64 {
	switch op {
	case ast.Add:
		return a + b
	case ast.Sub:
		return a - b
	case ast.Mul:
		return a * b
	case ast.Div:
		return a / b
	case ast.Mod:
		return math.Mod(a, b)
	}
	return 0
}

// Applies a binary operator to two numbers that have been converted to the
// numeric kind k.
func numericOp(op ast.BinaryOp, k types.Kind, x, y any) (any, error) {
	switch k {
	case types.IntKind, types.CharKind:
		r, err := intOp(op, toInt64(x), toInt64(y), 32)
		return fromInt64(r, types.IntKind), err
	case types.LongKind:
		return intOp(op, toInt64(x), toInt64(y), 64)
	default:
		return fromFloat64(floatOp(op, toFloat64(x), toFloat64(y)), k), nil
	}
}

// Compares two numbers that have been converted to the numeric kind k.
func compareNumbers(op ast.BinaryOp, k types.Kind, x, y any) bool {
	if k == types.FloatKind || k == types.DoubleKind {
		a, b := toFloat64(x), toFloat64(y)
		switch op {
		case ast.Lt:
			return a < b
		case ast.Gt:
			return a > b
		case ast.Le:
			return a <= b
		case ast.Ge:
			return a >= b
		case ast.Eq:
			return a == b
		default:
			return a != b
		}
	}
	a, b := toInt64(x), toInt64(y)
	switch op {
	case ast.Lt:
		return a < b
	case ast.Gt:
		return a > b
	case ast.Le:
		return a <= b
	case ast.Ge:
		return a >= b
	case ast.Eq:
		return a == b
	default:
		return a != b
	}
}

// Applies ++ or -- to a number of kind k.
func step(v any, k types.Kind, delta int64) any {
	switch k {
	case types.IntKind, types.LongKind, types.CharKind:
		return fromInt64(toInt64(v)+delta, k)
	default:
		return fromFloat64(toFloat64(v)+float64(delta), k)
	}
}

// Returns the zero value of a type.
func zero(t *types.Type) any {
	switch t.Kind {
	case types.BoolKind:
		return false
	case types.IntKind:
		return 0
	case types.LongKind:
		return int64(0)
	case types.FloatKind:
		return float32(0)
	case types.DoubleKind:
		return float64(0)
	case types.CharKind:
		return rune(0)
	}
	return nil
}
