// Package scope implements the symbol table used while parsing.
//
// A Scope is a stack of frames. Each frame maps names to variables and
// carries a stack of loop contexts. Frames are entered with Enter, which
// returns the function that exits the frame; callers defer it so that the
// frame is exited even when parsing the body panics.
package scope

import (
	"errors"
	"fmt"
	"sort"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/types"
)

// FrameType is the kind of a frame.
type FrameType uint8

// Possible values of FrameType.
const (
	// Method is the outermost frame of a program.
	Method FrameType = iota
	// Block is the frame of a braced block.
	Block
	// Lambda is the frame of a lambda body.
	Lambda
	// Submission is the frame shared by the pieces of code evaluated in a
	// persistent scope. Each piece starts with BeginSubmission. Variables
	// outlive a submission; labels do not.
	Submission
)

var frameTypeNames = [...]string{
	Method: "method", Block: "block", Lambda: "lambda", Submission: "submission",
}

func (t FrameType) String() string { return frameTypeNames[t] }

// IsFunction reports whether frames of this type are function boundaries.
// Loop contexts and labels do not cross function boundaries.
func (t FrameType) IsFunction() bool { return t != Block }

// LoopContext holds the jump targets of a loop.
type LoopContext struct {
	Break    *ast.Label
	Continue *ast.Label
}

// ErrRedeclared is wrapped by errors returned from Declare.
var ErrRedeclared = errors.New("variable already declared in this scope")

type frame struct {
	typ   FrameType
	names map[string]*ast.Variable
	vars  []*ast.Variable
	// Index in vars of the first variable of the current submission.
	start int
	loops []LoopContext
	// Only used in function frames.
	labels map[string]*labelInfo
}

type labelInfo struct {
	label   *ast.Label
	defined bool
}

// Scope is a stack of frames. The zero value is not usable; use New.
type Scope struct {
	frames []*frame
	nLoops int
}

// New returns a Scope with a single Method frame.
func New() *Scope {
	s := &Scope{}
	s.push(Method)
	return s
}

func (s *Scope) push(t FrameType) {
	f := &frame{typ: t, names: map[string]*ast.Variable{}}
	if t.IsFunction() {
		f.labels = map[string]*labelInfo{}
	}
	s.frames = append(s.frames, f)
}

// Enter pushes a new frame and returns a function that pops it. The returned
// function pops exactly the frame pushed, so calling it after a failed parse
// restores the scope to the state before Enter.
func (s *Scope) Enter(t FrameType) func() {
	depth := len(s.frames)
	s.push(t)
	return func() { s.frames = s.frames[:depth] }
}

// Depth returns the number of frames.
func (s *Scope) Depth() int { return len(s.frames) }

// FrameType returns the type of the innermost frame.
func (s *Scope) FrameType() FrameType { return s.top().typ }

func (s *Scope) top() *frame { return s.frames[len(s.frames)-1] }

// Declare creates a variable in the innermost frame. It fails if the frame
// already has a variable with the same name; variables in outer frames are
// shadowed instead. In a Submission frame, variables of earlier submissions
// are shadowed too.
func (s *Scope) Declare(name string, t *types.Type) (*ast.Variable, error) {
	f := s.top()
	if old, ok := f.names[name]; ok && (f.typ != Submission || f.current(old)) {
		return nil, fmt.Errorf("%s: %w", name, ErrRedeclared)
	}
	v := &ast.Variable{Name: name, Type: t}
	f.names[name] = v
	f.vars = append(f.vars, v)
	return v, nil
}

func (f *frame) current(v *ast.Variable) bool {
	for _, cur := range f.vars[f.start:] {
		if cur == v {
			return true
		}
	}
	return false
}

// Whether v is the variable its name refers to in f.
func (f *frame) live(v *ast.Variable) bool { return f.names[v.Name] == v }

// BeginSubmission starts a submission in the innermost frame, which must be a
// Submission frame. Labels of the previous submission are dropped. The
// returned function removes the variables declared by the submission, making
// the ones they shadowed visible again; it must be called before the next
// BeginSubmission.
func (s *Scope) BeginSubmission() (rollback func()) {
	f := s.top()
	if f.typ != Submission {
		panic("scope: BeginSubmission outside a submission frame")
	}
	live := f.vars[:0]
	for _, v := range f.vars {
		if f.live(v) {
			live = append(live, v)
		}
	}
	clear(f.vars[len(live):])
	f.vars = live
	f.start = len(f.vars)
	f.labels = map[string]*labelInfo{}
	return func() {
		added := f.vars[f.start:]
		f.vars = f.vars[:f.start]
		for i := len(added) - 1; i >= 0; i-- {
			name := added[i].Name
			delete(f.names, name)
			for j := len(f.vars) - 1; j >= 0; j-- {
				if f.vars[j].Name == name {
					f.names[name] = f.vars[j]
					break
				}
			}
		}
		f.labels = map[string]*labelInfo{}
	}
}

// Lookup finds the innermost variable with the given name.
func (s *Scope) Lookup(name string) (*ast.Variable, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].names[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Locals returns the variables declared in the innermost frame, in
// declaration order. For a Submission frame, only the variables of the
// current submission are returned.
func (s *Scope) Locals() []*ast.Variable {
	f := s.top()
	var vars []*ast.Variable
	for _, v := range f.vars[f.start:] {
		if f.live(v) {
			vars = append(vars, v)
		}
	}
	return vars
}

// Variables returns all variables visible from the innermost frame, outermost
// first. Shadowed variables are omitted.
func (s *Scope) Variables() []*ast.Variable {
	var vars []*ast.Variable
	for i, f := range s.frames {
		for _, v := range f.vars {
			if f.live(v) && !s.shadowed(v.Name, i) {
				vars = append(vars, v)
			}
		}
	}
	return vars
}

func (s *Scope) shadowed(name string, depth int) bool {
	for _, f := range s.frames[depth+1:] {
		if _, ok := f.names[name]; ok {
			return true
		}
	}
	return false
}

// Names returns the sorted names of all visible variables.
func (s *Scope) Names() []string {
	vars := s.Variables()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	sort.Strings(names)
	return names
}

// PushLoop pushes a fresh loop context onto the innermost frame.
func (s *Scope) PushLoop() LoopContext {
	s.nLoops++
	lc := LoopContext{
		Break:    &ast.Label{Name: fmt.Sprintf("$break%d", s.nLoops)},
		Continue: &ast.Label{Name: fmt.Sprintf("$continue%d", s.nLoops)},
	}
	f := s.top()
	f.loops = append(f.loops, lc)
	return lc
}

// PushSwitch pushes a context for a switch statement onto the innermost
// frame. Its Break label ends the switch; its Continue label is that of the
// enclosing loop, or nil if there is none.
func (s *Scope) PushSwitch() LoopContext {
	s.nLoops++
	lc := LoopContext{Break: &ast.Label{Name: fmt.Sprintf("$break%d", s.nLoops)}}
	if outer, ok := s.CurrentLoop(); ok {
		lc.Continue = outer.Continue
	}
	f := s.top()
	f.loops = append(f.loops, lc)
	return lc
}

// PopLoop pops the loop context pushed last onto the innermost frame.
func (s *Scope) PopLoop() {
	f := s.top()
	if len(f.loops) == 0 {
		panic("scope: PopLoop without PushLoop")
	}
	f.loops = f.loops[:len(f.loops)-1]
}

// CurrentLoop returns the innermost loop context visible from the innermost
// frame. Loop contexts outside the nearest function frame are not visible.
func (s *Scope) CurrentLoop() (LoopContext, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if n := len(f.loops); n > 0 {
			return f.loops[n-1], true
		}
		if f.typ.IsFunction() {
			break
		}
	}
	return LoopContext{}, false
}

// LoopDepth returns the total number of loop contexts on the stack.
func (s *Scope) LoopDepth() int {
	n := 0
	for _, f := range s.frames {
		n += len(f.loops)
	}
	return n
}

func (s *Scope) function() *frame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].typ.IsFunction() {
			return s.frames[i]
		}
	}
	return s.frames[0]
}

// Label returns the label with the given name in the nearest function frame,
// creating it if it does not exist yet. This allows goto to refer to a label
// that is defined later.
func (s *Scope) Label(name string) *ast.Label {
	f := s.function()
	if li, ok := f.labels[name]; ok {
		return li.label
	}
	li := &labelInfo{label: &ast.Label{Name: name}}
	f.labels[name] = li
	return li.label
}

// DefineLabel marks a label as defined in the nearest function frame and
// returns it. It returns false if the label is already defined.
func (s *Scope) DefineLabel(name string) (*ast.Label, bool) {
	l := s.Label(name)
	li := s.function().labels[name]
	if li.defined {
		return l, false
	}
	li.defined = true
	return l, true
}

// UndefinedLabels returns the sorted names of labels that have been referred
// to but not defined in the nearest function frame.
func (s *Scope) UndefinedLabels() []string {
	var names []string
	for name, li := range s.function().labels {
		if !li.defined {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
