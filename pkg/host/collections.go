package host

import (
	"strings"

	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/types"
)

var listGeneric = types.NewHost("System.Collections.Generic.List")

// List is the value of a List<T>.
type List struct {
	Elem  *types.Type
	Elems []any
}

// Kind returns "list".
func (l *List) Kind() string { return "list" }

// Repr returns the elements of the list in brackets, preceded by the type of
// the list.
func (l *List) Repr() string {
	var sb strings.Builder
	sb.WriteString("List<" + l.Elem.String() + ">")
	sb.WriteString(vals.Repr(l.Elems))
	return sb.String()
}

// String returns the elements in brackets.
func (l *List) String() string { return vals.ToString(l.Elems) }

func (l *List) check(i int) error {
	if i < 0 || i >= len(l.Elems) {
		return NewException(ArgumentType,
			"Index was out of range. Must be non-negative and less than the size of the collection.")
	}
	return nil
}

func instantiateList(_ *Registry, elem *types.Type) *types.Type {
	t := types.NewHost(listGeneric.Name)
	t.Elem = elem
	list := func(recv any) *List { return recv.(*List) }

	addCtor(t, nil, func(_ any, _ []any) (any, error) {
		return &List{Elem: elem}, nil
	})
	addCtor(t, params(types.ArrayOf(elem)), func(_ any, a []any) (any, error) {
		arr, ok := a[0].([]any)
		if !ok {
			return nil, NewException(ArgumentType, "Value cannot be null.")
		}
		return &List{Elem: elem, Elems: append([]any(nil), arr...)}, nil
	})
	addProperty(t, "Count", types.Int, func(recv any) (any, error) {
		return len(list(recv).Elems), nil
	})
	addMethod(t, "get_Item", params(types.Int), elem, func(recv any, a []any) (any, error) {
		l := list(recv)
		if err := l.check(a[0].(int)); err != nil {
			return nil, err
		}
		return l.Elems[a[0].(int)], nil
	})
	addMethod(t, "set_Item", params(types.Int, elem), types.Void, func(recv any, a []any) (any, error) {
		l := list(recv)
		if err := l.check(a[0].(int)); err != nil {
			return nil, err
		}
		l.Elems[a[0].(int)] = a[1]
		return nil, nil
	})
	addMethod(t, "Add", params(elem), types.Void, func(recv any, a []any) (any, error) {
		l := list(recv)
		l.Elems = append(l.Elems, a[0])
		return nil, nil
	})
	addMethod(t, "Insert", params(types.Int, elem), types.Void, func(recv any, a []any) (any, error) {
		l, i := list(recv), a[0].(int)
		if i < 0 || i > len(l.Elems) {
			return nil, NewException(ArgumentType, "Index must be within the bounds of the List.")
		}
		l.Elems = append(l.Elems[:i], append([]any{a[1]}, l.Elems[i:]...)...)
		return nil, nil
	})
	addMethod(t, "IndexOf", params(elem), types.Int, func(recv any, a []any) (any, error) {
		for i, e := range list(recv).Elems {
			if vals.Equal(e, a[0]) {
				return i, nil
			}
		}
		return -1, nil
	})
	addMethod(t, "Contains", params(elem), types.Bool, func(recv any, a []any) (any, error) {
		for _, e := range list(recv).Elems {
			if vals.Equal(e, a[0]) {
				return true, nil
			}
		}
		return false, nil
	})
	addMethod(t, "Remove", params(elem), types.Bool, func(recv any, a []any) (any, error) {
		l := list(recv)
		for i, e := range l.Elems {
			if vals.Equal(e, a[0]) {
				l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
	addMethod(t, "RemoveAt", params(types.Int), types.Void, func(recv any, a []any) (any, error) {
		l, i := list(recv), a[0].(int)
		if err := l.check(i); err != nil {
			return nil, err
		}
		l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
		return nil, nil
	})
	addMethod(t, "Clear", nil, types.Void, func(recv any, _ []any) (any, error) {
		list(recv).Elems = nil
		return nil, nil
	})
	addMethod(t, "Reverse", nil, types.Void, func(recv any, _ []any) (any, error) {
		es := list(recv).Elems
		for i, j := 0, len(es)-1; i < j; i, j = i+1, j-1 {
			es[i], es[j] = es[j], es[i]
		}
		return nil, nil
	})
	addMethod(t, "ToArray", nil, types.ArrayOf(elem), func(recv any, _ []any) (any, error) {
		return append([]any{}, list(recv).Elems...), nil
	})
	return t
}
