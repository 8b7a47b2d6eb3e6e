// Package vals contains basic facilities for manipulating values at runtime.
//
// Values of the primitive XS types are represented by Go values: int is int,
// long is int64, float is float32, double is float64, char is rune, bool is
// bool, string is string and null is nil. Arrays are []any. Other values are
// host objects, closures and exceptions, which may implement the interfaces
// in this package to customize how they behave.
package vals

import "fmt"

// Kinder wraps the Kind method.
type Kinder interface {
	Kind() string
}

// Kind returns the name of the kind of a value. For the primitive types it
// is the keyword of the type; arrays have kind "array". Other values may
// implement Kinder; values that do not have kinds like "!!*foo.Bar".
func Kind(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int:
		return "int"
	case int64:
		return "long"
	case float32:
		return "float"
	case float64:
		return "double"
	case rune:
		return "char"
	case string:
		return "string"
	case []any:
		return "array"
	case Kinder:
		return v.Kind()
	default:
		return fmt.Sprintf("!!%T", v)
	}
}
