package vals

import "reflect"

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value.
	Equal(other any) bool
}

// Equal reports whether two values are equal. Primitive values are compared
// by value, arrays by identity. Values implementing Equaler use it; other
// values are equal if they are comparable and ==.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case []any:
		yy, ok := y.([]any)
		return ok && sameArray(x, yy)
	case Equaler:
		return x.Equal(y)
	}
	if y == nil {
		return false
	}
	tx := reflect.TypeOf(x)
	if tx != reflect.TypeOf(y) || !tx.Comparable() {
		return false
	}
	return x == y
}

func sameArray(x, y []any) bool {
	if len(x) != len(y) {
		return false
	}
	if len(x) == 0 {
		return reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
	}
	return &x[0] == &y[0]
}
