package parse

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"src.xs.sh/pkg/types"
)

// Resolver resolves names of host types and their members. The parser never
// loads anything itself; everything it knows about host types comes from the
// resolver.
type Resolver interface {
	// ResolveType resolves a full or abbreviated dotted type name.
	ResolveType(name string) (*types.Type, bool)
	// ResolveMethod selects the overload of a method of t that accepts the
	// given argument types.
	ResolveMethod(t *types.Type, name string, args []*types.Type) (*types.Method, bool)
	// ResolveMember resolves a field or property of t.
	ResolveMember(t *types.Type, name string) (*types.Member, bool)
}

// GenericResolver is implemented by resolvers that support generic host
// types like List<int>.
type GenericResolver interface {
	Instantiate(generic *types.Type, arg *types.Type) (*types.Type, bool)
}

// ReferenceLoader is implemented by resolvers that can load additional
// packages of host types, as requested by #r directives.
type ReferenceLoader interface {
	AddReference(pkg string, constraint *semver.Constraints) error
}

type nopResolver struct{}

func (nopResolver) ResolveType(string) (*types.Type, bool) { return nil, false }

func (nopResolver) ResolveMethod(*types.Type, string, []*types.Type) (*types.Method, bool) {
	return nil, false
}

func (nopResolver) ResolveMember(*types.Type, string) (*types.Member, bool) {
	return nil, false
}

type segment struct {
	name string
	// Position before the segment, including the dot that precedes it.
	pos int
}

// resolveTypeName reads a dotted name and resolves the longest prefix of it
// that names a type. The cursor is left after that prefix, so that in
// System.Math.PI the cursor is left before ".PI" if System.Math is a type.
// If no prefix resolves, the cursor is restored and false is returned.
func resolveTypeName(ctx *Context) (*types.Type, bool) {
	s := ctx.Scanner
	start := s.Pos()
	first, ok := Identifier.Parse(ctx)
	if !ok {
		return nil, false
	}
	stack := []segment{{first, start}}
	for {
		pos := s.Pos()
		if !s.ReadChar('.') {
			break
		}
		name, ok := s.ReadIdentifier()
		if !ok {
			s.Reset(pos)
			break
		}
		stack = append(stack, segment{name, pos})
	}
	for len(stack) > 0 {
		if t, ok := ctx.Resolver.ResolveType(joinSegments(stack)); ok {
			return t, true
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.Reset(top.pos)
	}
	s.Reset(start)
	return nil, false
}

func joinSegments(stack []segment) string {
	names := make([]string, len(stack))
	for i, seg := range stack {
		names[i] = seg.name
	}
	return strings.Join(names, ".")
}
