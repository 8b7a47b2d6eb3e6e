package vals

import (
	"math"
	"strconv"
	"strings"
)

// Stringer wraps the String method.
type Stringer interface {
	// String converts the receiver to a string.
	String() string
}

// ToString converts a value to the string that ToString() and string
// concatenation produce. Booleans are "True" and "False" and null is the
// empty string, like in C#. Arrays are written as their elements in
// brackets. Values implementing Stringer use it; other values fall back to
// Repr.
func ToString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case rune:
		return string(v)
	case string:
		return v
	case []any:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ToString(e))
		}
		sb.WriteByte(']')
		return sb.String()
	case Stringer:
		return v.String()
	default:
		return Repr(v)
	}
}

// Fixed notation is used unless the number is very large or very small, so
// that 1234567.0 prints as 1234567 and not 1.234567e+06.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'f', -1, bits)
	digits := strings.TrimPrefix(s, "-")
	if (len(digits) > 15 && !strings.ContainsRune(digits, '.')) ||
		strings.HasPrefix(digits, "0.0000") {
		return strconv.FormatFloat(f, 'E', -1, bits)
	}
	return s
}
