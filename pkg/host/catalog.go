package host

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/types"
)

// A version of a package in the catalog.
type packageVersion struct {
	version *semver.Version
	// Namespaces whose types become available by their short names.
	namespaces []string
	install    func(r *Registry) []*types.Type
}

// Packages that can be loaded with AddReference. Versions are sorted in
// ascending order.
var catalog = map[string][]packageVersion{
	"XS.Text": {
		{version: semver.MustParse("1.0.0"), install: installText(false)},
		{version: semver.MustParse("1.2.0"), install: installText(true)},
	},
	"XS.Collections": {
		{version: semver.MustParse("2.0.0"), namespaces: []string{"XS.Collections"},
			install: installCollections},
	},
}

// Returns the newest version of a package that satisfies c.
func findPackage(name string, c *semver.Constraints) (packageVersion, bool) {
	versions := catalog[name]
	for i := len(versions) - 1; i >= 0; i-- {
		if c == nil || c.Check(versions[i].version) {
			return versions[i], true
		}
	}
	return packageVersion{}, false
}

// PackageNames returns the names of the packages in the catalog.
func PackageNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StringBuilder is the value of a System.Text.StringBuilder.
type StringBuilder struct {
	sb strings.Builder
}

func (b *StringBuilder) String() string { return b.sb.String() }

// Kind returns "string-builder".
func (b *StringBuilder) Kind() string { return "string-builder" }

func installText(v12 bool) func(*Registry) []*types.Type {
	return func(*Registry) []*types.Type {
		t := types.NewHost("System.Text.StringBuilder")
		builder := func(recv any) *StringBuilder { return recv.(*StringBuilder) }
		addCtor(t, nil, func(any, []any) (any, error) { return &StringBuilder{}, nil })
		addCtor(t, params(types.String), func(_ any, a []any) (any, error) {
			b := &StringBuilder{}
			b.sb.WriteString(vals.ToString(a[0]))
			return b, nil
		})
		addMethod(t, "Append", params(types.Object), t, func(recv any, a []any) (any, error) {
			builder(recv).sb.WriteString(vals.ToString(a[0]))
			return recv, nil
		})
		addMethod(t, "ToString", nil, types.String, func(recv any, _ []any) (any, error) {
			return builder(recv).String(), nil
		})
		addProperty(t, "Length", types.Int, func(recv any) (any, error) {
			return len([]rune(builder(recv).String())), nil
		})
		if v12 {
			addMethod(t, "AppendLine", params(types.Object), t, func(recv any, a []any) (any, error) {
				builder(recv).sb.WriteString(vals.ToString(a[0]) + "\n")
				return recv, nil
			})
			addMethod(t, "Clear", nil, t, func(recv any, _ []any) (any, error) {
				builder(recv).sb.Reset()
				return recv, nil
			})
		}
		return []*types.Type{t}
	}
}

var stackGeneric = types.NewHost("XS.Collections.Stack")

// Stack is the value of a Stack<T>.
type Stack struct {
	Elems []any
}

// Kind returns "stack".
func (s *Stack) Kind() string { return "stack" }

func installCollections(r *Registry) []*types.Type {
	r.mu.Lock()
	r.generics[stackGeneric] = instantiateStack
	r.mu.Unlock()
	return []*types.Type{stackGeneric}
}

func instantiateStack(_ *Registry, elem *types.Type) *types.Type {
	t := types.NewHost(stackGeneric.Name)
	t.Elem = elem
	stack := func(recv any) *Stack { return recv.(*Stack) }
	addCtor(t, nil, func(any, []any) (any, error) { return &Stack{}, nil })
	addMethod(t, "Push", params(elem), types.Void, func(recv any, a []any) (any, error) {
		s := stack(recv)
		s.Elems = append(s.Elems, a[0])
		return nil, nil
	})
	top := func(recv any, pop bool) (any, error) {
		s := stack(recv)
		if len(s.Elems) == 0 {
			return nil, NewException(InvalidOperationType, "Stack empty.")
		}
		v := s.Elems[len(s.Elems)-1]
		if pop {
			s.Elems = s.Elems[:len(s.Elems)-1]
		}
		return v, nil
	}
	addMethod(t, "Pop", nil, elem, func(recv any, _ []any) (any, error) { return top(recv, true) })
	addMethod(t, "Peek", nil, elem, func(recv any, _ []any) (any, error) { return top(recv, false) })
	addProperty(t, "Count", types.Int, func(recv any) (any, error) {
		return len(stack(recv).Elems), nil
	})
	return t
}
