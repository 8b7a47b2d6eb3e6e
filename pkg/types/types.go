// Package types implements the static types of XS.
//
// Types are computed eagerly while parsing: every expression node knows its
// type as soon as it is constructed. The type model is deliberately small:
// a handful of primitive kinds, arrays, lambdas, and opaque host types whose
// members are supplied by a resolver.
package types

import (
	"strings"
)

// Kind is the kind of a Type.
type Kind uint8

// Possible values for Kind.
const (
	Invalid Kind = iota
	VoidKind
	BoolKind
	IntKind
	LongKind
	FloatKind
	DoubleKind
	CharKind
	StringKind
	NullKind
	ObjectKind
	ArrayKind
	LambdaKind
	HostKind
)

// Type is a static type. Values of the primitive kinds are singletons, so
// they can be compared with ==; use Identical for composite types.
type Type struct {
	Kind Kind
	// Name is the full name of a host type, like "System.Math".
	Name string
	// Elem is the element type of an array, or of a generic host type like
	// List.
	Elem *Type
	// Params and Ret describe a lambda type.
	Params []*Type
	Ret    *Type

	// Members available on a host type. Populated by whoever creates the
	// type; nil for other kinds.
	Members map[string]*Member
	// Methods available on a host type, by name. Multiple entries are
	// overloads.
	Methods map[string][]*Method
	// Constructors of a host type.
	Ctors []*Method
	// Base is the parent of a host type, used for assignability and for
	// matching catch clauses.
	Base *Type
}

// Predefined types.
var (
	Void   = &Type{Kind: VoidKind}
	Bool   = &Type{Kind: BoolKind}
	Int    = &Type{Kind: IntKind}
	Long   = &Type{Kind: LongKind}
	Float  = &Type{Kind: FloatKind}
	Double = &Type{Kind: DoubleKind}
	Char   = &Type{Kind: CharKind}
	String = &Type{Kind: StringKind}
	Null   = &Type{Kind: NullKind}
	Object = &Type{Kind: ObjectKind}
)

// Builtin maps the keyword names of the predefined types to the types.
var Builtin = map[string]*Type{
	"void":   Void,
	"bool":   Bool,
	"int":    Int,
	"long":   Long,
	"float":  Float,
	"double": Double,
	"char":   Char,
	"string": String,
	"object": Object,
}

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: ArrayKind, Elem: elem}
}

// LambdaOf returns a lambda type.
func LambdaOf(params []*Type, ret *Type) *Type {
	return &Type{Kind: LambdaKind, Params: params, Ret: ret}
}

// NewHost returns a new host type with no members.
func NewHost(name string) *Type {
	return &Type{Kind: HostKind, Name: name,
		Members: map[string]*Member{}, Methods: map[string][]*Method{}}
}

// String returns the type as it would be written in XS source.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case VoidKind:
		return "void"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case LongKind:
		return "long"
	case FloatKind:
		return "float"
	case DoubleKind:
		return "double"
	case CharKind:
		return "char"
	case StringKind:
		return "string"
	case NullKind:
		return "null"
	case ObjectKind:
		return "object"
	case ArrayKind:
		return t.Elem.String() + "[]"
	case LambdaKind:
		var sb strings.Builder
		sb.WriteString("(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(") => ")
		sb.WriteString(t.Ret.String())
		return sb.String()
	case HostKind:
		if t.Elem != nil {
			return t.Name + "<" + t.Elem.String() + ">"
		}
		return t.Name
	default:
		return "invalid"
	}
}

// Identical reports whether two types are the same type.
func Identical(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArrayKind:
		return Identical(a.Elem, b.Elem)
	case LambdaKind:
		if len(a.Params) != len(b.Params) || !Identical(a.Ret, b.Ret) {
			return false
		}
		for i := range a.Params {
			if !Identical(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case HostKind:
		return a.Name == b.Name && (a.Elem == nil) == (b.Elem == nil) &&
			(a.Elem == nil || Identical(a.Elem, b.Elem))
	default:
		return true
	}
}

// IsVoid reports whether t is void. A nil type counts as void.
func (t *Type) IsVoid() bool { return t == nil || t.Kind == VoidKind }

// IsNumeric reports whether t is one of the numeric types. Char counts as
// numeric, as it does for arithmetic in C-like languages.
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case IntKind, LongKind, FloatKind, DoubleKind, CharKind:
		return true
	}
	return false
}

// IsIntegral reports whether t is an integral numeric type.
func (t *Type) IsIntegral() bool {
	switch t.Kind {
	case IntKind, LongKind, CharKind:
		return true
	}
	return false
}

// IsReference reports whether null can be assigned to a value of t.
func (t *Type) IsReference() bool {
	switch t.Kind {
	case StringKind, ObjectKind, ArrayKind, LambdaKind, HostKind, NullKind:
		return true
	}
	return false
}

// DerivesFrom reports whether the host type t is base or inherits from it.
func (t *Type) DerivesFrom(base *Type) bool {
	for c := t; c != nil; c = c.Base {
		if Identical(c, base) {
			return true
		}
	}
	return false
}
