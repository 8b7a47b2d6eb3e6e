package host

import (
	"src.xs.sh/pkg/types"
)

// Callable is implemented by values that can be called from host code, like
// XS lambdas passed to Task.Run.
type Callable interface {
	Call(args []any) (any, error)
}

type fn = func(recv any, args []any) (any, error)

func params(ts ...*types.Type) []*types.Type { return ts }

func addMethod(t *types.Type, name string, ps []*types.Type, ret *types.Type, f fn) {
	t.Methods[name] = append(t.Methods[name],
		&types.Method{Name: name, Params: ps, Ret: ret, Fn: f})
}

func addStatic(t *types.Type, name string, ps []*types.Type, ret *types.Type, f fn) {
	t.Methods[name] = append(t.Methods[name],
		&types.Method{Name: name, Static: true, Params: ps, Ret: ret, Fn: f})
}

func addCtor(t *types.Type, ps []*types.Type, f fn) {
	t.Ctors = append(t.Ctors, &types.Method{Name: ".ctor", Params: ps, Ret: t, Fn: f})
}

func addProperty(t *types.Type, name string, typ *types.Type, get func(recv any) (any, error)) {
	t.Members[name] = &types.Member{Name: name, Type: typ, Get: get}
}

func addConstant(t *types.Type, name string, typ *types.Type, v any) {
	t.Members[name] = &types.Member{Name: name, Static: true, Type: typ,
		Get: func(any) (any, error) { return v, nil }}
}

// Adds methods to a map of method tables, for types whose methods are not
// stored on the type itself.
func addTo(table map[string][]*types.Method, static bool, name string, ps []*types.Type, ret *types.Type, f fn) {
	table[name] = append(table[name],
		&types.Method{Name: name, Static: static, Params: ps, Ret: ret, Fn: f})
}
