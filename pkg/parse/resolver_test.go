package parse

import (
	"errors"

	"github.com/Masterminds/semver/v3"

	"src.xs.sh/pkg/types"
)

// A small resolver for tests, with just enough host types to exercise the
// parts of the grammar that depend on them.
type testResolver struct {
	types map[string]*types.Type
	refs  []string
}

var (
	mathType      = types.NewHost("Math")
	abType        = types.NewHost("A.B")
	exceptionType = types.NewHost("Exception")
	listType      = types.NewHost("List")
)

func init() {
	mathType.Methods["Max"] = []*types.Method{
		{Name: "Max", Static: true, Params: []*types.Type{types.Int, types.Int}, Ret: types.Int},
		{Name: "Max", Static: true, Params: []*types.Type{types.Double, types.Double}, Ret: types.Double},
	}
	mathType.Members["PI"] = &types.Member{Name: "PI", Static: true, Type: types.Double}

	abType.Members["C"] = &types.Member{Name: "C", Static: true, Type: types.Int}

	exceptionType.Ctors = []*types.Method{
		{Name: ".ctor", Params: []*types.Type{types.String}, Ret: exceptionType},
	}
	exceptionType.Members["Message"] = &types.Member{Name: "Message", Type: types.String}
}

func newTestResolver() *testResolver {
	return &testResolver{types: map[string]*types.Type{
		"Math": mathType, "A.B": abType, "Exception": exceptionType, "List": listType,
	}}
}

func (r *testResolver) ResolveType(name string) (*types.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

func (r *testResolver) ResolveMethod(t *types.Type, name string, args []*types.Type) (*types.Method, bool) {
	return types.SelectOverload(t.Methods[name], args)
}

func (r *testResolver) ResolveMember(t *types.Type, name string) (*types.Member, bool) {
	m, ok := t.Members[name]
	return m, ok
}

func (r *testResolver) Instantiate(generic, arg *types.Type) (*types.Type, bool) {
	if generic != listType {
		return nil, false
	}
	t := types.NewHost("List")
	t.Elem = arg
	t.Ctors = []*types.Method{{Name: ".ctor", Ret: t}}
	t.Methods["Add"] = []*types.Method{{Name: "Add", Params: []*types.Type{arg}, Ret: types.Void}}
	t.Methods["get_Item"] = []*types.Method{{Name: "get_Item", Params: []*types.Type{types.Int}, Ret: arg}}
	t.Methods["set_Item"] = []*types.Method{{Name: "set_Item", Params: []*types.Type{types.Int, arg}, Ret: types.Void}}
	t.Members["Count"] = &types.Member{Name: "Count", Type: types.Int}
	return t, true
}

func (r *testResolver) AddReference(pkg string, c *semver.Constraints) error {
	if pkg == "Missing" {
		return errors.New("package not found: Missing")
	}
	r.refs = append(r.refs, pkg)
	return nil
}
