package types

// numericRank orders the numeric kinds for implicit widening.
var numericRank = map[Kind]int{
	CharKind:   0,
	IntKind:    1,
	LongKind:   2,
	FloatKind:  3,
	DoubleKind: 4,
}

// AssignableTo reports whether a value of type from can be stored in a slot
// of type to without an explicit conversion.
func AssignableTo(from, to *Type) bool {
	switch {
	case Identical(from, to):
		return true
	case to.Kind == ObjectKind:
		return !from.IsVoid()
	case from.Kind == NullKind:
		return to.IsReference()
	case from.IsNumeric() && to.IsNumeric():
		// Char only widens to other types; nothing narrows to it.
		return to.Kind != CharKind && numericRank[from.Kind] <= numericRank[to.Kind]
	case from.Kind == HostKind && to.Kind == HostKind:
		return from.DerivesFrom(to)
	case from.Kind == LambdaKind && to.Kind == LambdaKind:
		return Identical(from, to)
	}
	return false
}

// Promote returns the type that both operands of a binary arithmetic
// operator are converted to. It returns nil if either operand is not numeric.
func Promote(a, b *Type) *Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return nil
	}
	r := numericRank[a.Kind]
	if rb := numericRank[b.Kind]; rb > r {
		r = rb
	}
	switch r {
	case numericRank[DoubleKind]:
		return Double
	case numericRank[FloatKind]:
		return Float
	case numericRank[LongKind]:
		return Long
	default:
		// Char arithmetic is performed on int.
		return Int
	}
}

// Unify returns the type a conditional expression has when its branches have
// types a and b, and whether the two are compatible. The first non-void type
// wins; the other branch must be assignable to it.
func Unify(a, b *Type) (*Type, bool) {
	switch {
	case a.IsVoid() && b.IsVoid():
		return Void, true
	case a.IsVoid():
		return b, false
	case b.IsVoid():
		return a, false
	case AssignableTo(b, a):
		return a, true
	case AssignableTo(a, b):
		return b, true
	}
	return a, false
}

// CanConvert reports whether an explicit conversion from one type to another
// is allowed.
func CanConvert(from, to *Type) bool {
	if AssignableTo(from, to) {
		return true
	}
	if from.IsNumeric() && to.IsNumeric() {
		return true
	}
	if from.Kind == ObjectKind {
		return !to.IsVoid()
	}
	if from.Kind == HostKind && to.Kind == HostKind {
		return to.DerivesFrom(from)
	}
	return false
}
