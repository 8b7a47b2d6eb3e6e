// Package eval compiles parsed XS programs into ops and runs them.
//
// An Evaler keeps the state shared by the submissions of a session: the
// scope the parser resolves names in and the values of the variables
// declared at the top level. Each call to Eval parses, compiles and runs one
// submission against that state, so a variable declared by one submission
// can be used by the next.
package eval

import (
	"io"
	"strings"
	"sync"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/scope"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler provides methods for evaluating code, and maintains state that is
// persisted between evaluation of different pieces of code. An Evaler is safe
// to use concurrently; calls are serialized.
type Evaler struct {
	// Host types available to programs.
	Host *host.Registry

	mu      sync.Mutex
	grammar *parse.Grammar
	scope   *scope.Scope
	global  *env
}

// NewEvaler creates a new Evaler that resolves host types with h and parses
// with the built-in grammar plus the given extensions. If h is nil, a
// registry with no console input and discarded output is used.
func NewEvaler(h *host.Registry, exts ...parse.Extension) (*Evaler, error) {
	if h == nil {
		h = host.New(io.Discard, strings.NewReader(""))
	}
	g, err := parse.NewGrammar(exts...)
	if err != nil {
		return nil, err
	}
	sc := scope.New()
	sc.Enter(scope.Submission)
	return &Evaler{Host: h, grammar: g, scope: sc, global: newEnv(nil)}, nil
}

// Grammar returns the grammar used by the Evaler.
func (ev *Evaler) Grammar() *parse.Grammar { return ev.grammar }

// Names returns the names of the variables declared by previous submissions.
func (ev *Evaler) Names() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.scope.Names()
}

// EvalCfg keeps configuration for the (*Evaler).Eval method.
type EvalCfg struct {
	// Debugger hook. Nil disables debugging.
	Debugger *debug.Debugger
	// Whether the last statement must be terminated with a semicolon.
	RequireTermination bool
	// Function to call to start listening to interrupts, like
	// ListenInterrupts. If nil, the evaluation cannot be interrupted.
	Interrupts func() (<-chan struct{}, func())
}

func (cfg *EvalCfg) fillDefaults() {
	if cfg.Interrupts == nil {
		cfg.Interrupts = noInterrupts
	}
}

// Eval evaluates a piece of source code and returns its value. Variables it
// declares are kept for later calls if it parses, even if running it throws.
func (ev *Evaler) Eval(src parse.Source, cfg EvalCfg) (any, error) {
	cfg.fillDefaults()
	ev.mu.Lock()
	defer ev.mu.Unlock()

	rollback := ev.scope.BeginSubmission()
	prog, err := ev.parse(src, cfg)
	if err != nil {
		rollback()
		return nil, err
	}
	o, err := compile(prog)
	if err != nil {
		rollback()
		return nil, err
	}

	intCh, cleanup := cfg.Interrupts()
	defer cleanup()
	fm := &Frame{srcName: src.Name, srcCode: src.Code,
		env: ev.global, debugger: cfg.Debugger, intCh: intCh}
	v, err := o.exec(fm)
	if err != nil {
		logger.Printf("%s: %v", src.Name, err)
	}
	return v, err
}

// Check parses and compiles the source without running it. The Evaler is
// left unchanged, except for host packages loaded by #r directives.
func (ev *Evaler) Check(src parse.Source, cfg EvalCfg) (*ast.Program, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	defer ev.scope.BeginSubmission()()
	prog, err := ev.parse(src, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := compile(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// Show parses the source like Check and writes a dump of the tree to w.
func (ev *Evaler) Show(src parse.Source, cfg EvalCfg, w io.Writer) error {
	prog, err := ev.Check(src, cfg)
	if err != nil {
		return err
	}
	ast.PPrint(prog.Body, w)
	return nil
}

func (ev *Evaler) parse(src parse.Source, cfg EvalCfg) (*ast.Program, error) {
	return ev.grammar.Parse(src, parse.Config{
		Scope:              ev.scope,
		Resolver:           ev.Host,
		Debugger:           cfg.Debugger,
		RequireTermination: cfg.RequireTermination,
	})
}
