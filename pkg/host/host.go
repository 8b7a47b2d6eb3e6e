// Package host implements the registry of host types available to XS
// programs.
//
// A Registry resolves type names for the parser and supplies the
// implementations the evaluator calls. It starts with the types of the System
// namespace and its children; more types can be loaded from the package
// catalog with AddReference, which is what the #r directive does.
package host

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/types"
)

var logger = logutil.GetLogger("[host] ")

// Namespaces whose types can be referred to by their short names.
var defaultNamespaces = []string{
	"System",
	"System.Collections.Generic",
	"System.Threading.Tasks",
	"System.Text",
}

// Registry holds host types. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]*types.Type
	namespaces []string
	generics   map[*types.Type]func(r *Registry, arg *types.Type) *types.Type
	instances  map[string]*types.Type
	loaded     map[string]*semver.Version

	out io.Writer
	in  *bufio.Reader
}

// New returns a Registry with the builtin types. Console writes to out and
// reads from in.
func New(out io.Writer, in io.Reader) *Registry {
	r := &Registry{
		types:      map[string]*types.Type{},
		namespaces: append([]string(nil), defaultNamespaces...),
		generics:   map[*types.Type]func(*Registry, *types.Type) *types.Type{},
		instances:  map[string]*types.Type{},
		loaded:     map[string]*semver.Version{},
		out:        out,
		in:         bufio.NewReader(in),
	}
	r.types["System.Object"] = types.Object
	r.types["System.String"] = types.String
	for _, t := range exceptionTypes {
		r.Register(t)
	}
	r.Register(mathType(), consoleType(r), convertType())
	r.Register(taskType)
	r.generics[listGeneric] = instantiateList
	r.Register(listGeneric)
	return r
}

// Register adds host types under their full names.
func (r *Registry) Register(ts ...*types.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range ts {
		if t.Kind == types.HostKind {
			r.types[t.Name] = t
		}
	}
}

// ResolveType resolves a full type name, or a name relative to one of the
// default namespaces.
func (r *Registry) ResolveType(name string) (*types.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[name]; ok {
		return t, true
	}
	for _, ns := range r.namespaces {
		if t, ok := r.types[ns+"."+name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ResolveMethod selects an overload of a method of t. Methods are looked up
// on t and then on its base types. ToString and Equals are available on
// every type.
func (r *Registry) ResolveMethod(t *types.Type, name string, args []*types.Type) (*types.Method, bool) {
	switch t.Kind {
	case types.HostKind:
		for c := t; c != nil; c = c.Base {
			if m, ok := types.SelectOverload(c.Methods[name], args); ok {
				return m, true
			}
		}
	case types.StringKind:
		if m, ok := types.SelectOverload(stringMethods[name], args); ok {
			return m, true
		}
	}
	return types.SelectOverload(objectMethods[name], args)
}

// ResolveMember resolves a field or property of t, looking at its base types
// too. Strings and arrays have a Length.
func (r *Registry) ResolveMember(t *types.Type, name string) (*types.Member, bool) {
	switch t.Kind {
	case types.HostKind:
		for c := t; c != nil; c = c.Base {
			if m, ok := c.Members[name]; ok {
				return m, true
			}
		}
	case types.StringKind:
		if name == "Length" {
			return stringLength, true
		}
	case types.ArrayKind:
		if name == "Length" {
			return arrayLength, true
		}
	}
	return nil, false
}

// Instantiate instantiates a generic type with a type argument. Instances
// are cached, so instantiating List with int twice returns the same type.
func (r *Registry) Instantiate(generic, arg *types.Type) (*types.Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.generics[generic]
	if !ok {
		return nil, false
	}
	key := generic.Name + "<" + arg.String() + ">"
	if t, ok := r.instances[key]; ok {
		return t, true
	}
	t := inst(r, arg)
	r.instances[key] = t
	return t, true
}

// AddReference loads the newest version of a package from the catalog that
// satisfies the constraint, which may be nil. Loading a package that is
// already loaded is a no-op if the loaded version satisfies the constraint.
func (r *Registry) AddReference(pkg string, c *semver.Constraints) error {
	r.mu.Lock()
	if v, ok := r.loaded[pkg]; ok {
		r.mu.Unlock()
		if c != nil && !c.Check(v) {
			return fmt.Errorf("package %s %s is loaded, which does not satisfy %s", pkg, v, c)
		}
		return nil
	}
	r.mu.Unlock()

	p, ok := findPackage(pkg, c)
	if !ok {
		if _, known := catalog[pkg]; known && c != nil {
			return fmt.Errorf("no version of package %s satisfies %s", pkg, c)
		}
		return fmt.Errorf("package not found: %s", pkg)
	}
	logger.Printf("loading package %s %s", pkg, p.version)
	r.Register(p.install(r)...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded[pkg] = p.version
	r.namespaces = append(r.namespaces, p.namespaces...)
	return nil
}

// Loaded returns the loaded packages and their versions, sorted by name.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pkgs []string
	for name, v := range r.loaded {
		pkgs = append(pkgs, name+" "+v.String())
	}
	sort.Strings(pkgs)
	return pkgs
}

// TypeNames returns the short names of all types in the default namespaces,
// sorted. It is used for completion.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	for full := range r.types {
		name := full
		for _, ns := range r.namespaces {
			if rest, ok := strings.CutPrefix(full, ns+"."); ok && !strings.Contains(rest, ".") {
				name = rest
				break
			}
		}
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
