package vals

import (
	"fmt"
	"strings"

	"src.xs.sh/pkg/ast"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents the value, preferably an XS
	// expression that evaluates to it.
	Repr() string
}

// Repr returns the representation of a value. Primitive values are written
// as literals, so strings are quoted and longs carry an L suffix. Arrays
// are written as their elements in brackets. Values implementing Reprer
// use it, then values implementing Stringer; anything else is written as
// "<kind>".
func Repr(v any) string {
	switch v := v.(type) {
	case nil, bool, int, int64, float32, float64, rune, string:
		return ast.LiteralText(v)
	case []any:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Repr(e))
		}
		sb.WriteByte(']')
		return sb.String()
	case Reprer:
		return v.Repr()
	case Stringer:
		return v.String()
	default:
		return fmt.Sprintf("<%s>", Kind(v))
	}
}
