package types

// Method is a method or constructor of a host type.
type Method struct {
	Name     string
	Static   bool
	Params   []*Type
	Variadic bool
	Ret      *Type
	// Fn implements the method. The receiver is nil for static methods and
	// constructors.
	Fn func(recv any, args []any) (any, error)
}

// Member is a field or property of a host type.
type Member struct {
	Name   string
	Static bool
	Type   *Type
	Get    func(recv any) (any, error)
	// Set is nil for read-only members.
	Set func(recv any, v any) error
}

// Accepts reports whether m can be called with arguments of the given types.
func (m *Method) Accepts(args []*Type) bool {
	n := len(m.Params)
	if m.Variadic {
		if len(args) < n-1 {
			return false
		}
	} else if len(args) != n {
		return false
	}
	for i, a := range args {
		if !AssignableTo(a, m.ParamType(i)) {
			return false
		}
	}
	return true
}

// ParamType returns the type of the i-th argument, taking variadic
// parameters into account.
func (m *Method) ParamType(i int) *Type {
	if m.Variadic && i >= len(m.Params)-1 {
		return m.Params[len(m.Params)-1].Elem
	}
	return m.Params[i]
}

// SelectOverload returns the first candidate that accepts the given argument
// types. Candidates whose parameter types are identical to the argument types
// are preferred over ones that need widening.
func SelectOverload(candidates []*Method, args []*Type) (*Method, bool) {
	var fallback *Method
	for _, m := range candidates {
		if !m.Accepts(args) {
			continue
		}
		if exactMatch(m, args) {
			return m, true
		}
		if fallback == nil {
			fallback = m
		}
	}
	return fallback, fallback != nil
}

func exactMatch(m *Method, args []*Type) bool {
	if m.Variadic || len(m.Params) != len(args) {
		return false
	}
	for i, a := range args {
		if !Identical(a, m.Params[i]) {
			return false
		}
	}
	return true
}
