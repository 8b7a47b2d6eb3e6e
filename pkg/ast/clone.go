package ast

import "reflect"

// Clone returns a deep copy of the tree rooted at n. Variables, labels and
// types are shared with the original, since their identity matters.
func Clone[N Node](n N) N {
	return cloneValue(reflect.ValueOf(n)).Interface().(N)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := cloneValue(v.Elem())
		r := reflect.New(v.Type()).Elem()
		r.Set(c)
		return r
	case reflect.Ptr:
		if v.IsNil() || !isCloned(v.Type()) {
			return v
		}
		c := reflect.New(v.Type().Elem())
		c.Elem().Set(v.Elem())
		st := c.Elem()
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if f.CanSet() {
				f.Set(cloneValue(f))
			}
		}
		return c
	case reflect.Slice:
		if v.IsNil() || !isClonedElem(v.Type().Elem()) {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			c.Index(i).Set(cloneValue(v.Index(i)))
		}
		return c
	}
	return v
}

var (
	caseType  = reflect.TypeOf((*Case)(nil))
	catchType = reflect.TypeOf((*Catch)(nil))
)

// Reports whether pointers of type t point to tree structure that must be
// copied.
func isCloned(t reflect.Type) bool {
	return t.Implements(nodeType) || t == caseType || t == catchType
}

func isClonedElem(t reflect.Type) bool {
	return t == nodeType || isCloned(t)
}
