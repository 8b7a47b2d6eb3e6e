package prog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"src.xs.sh/pkg/config"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/ext"
	"src.xs.sh/pkg/host"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/store"
)

// Flags keeps the flags shared by all subcommands. They override the values
// from the configuration file.
type Flags struct {
	Log, Config string

	Refs               []string
	RequireTermination bool

	Debug       string
	Breakpoints []string

	HistoryDB string
}

func (f *Flags) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")
	fs.StringVar(&f.Config, "config", "",
		"path to the configuration file; by default "+config.FileName+" is looked up from the working directory")
	fs.StringArrayVar(&f.Refs, "ref", nil,
		`host package to load before running, like "XS.Text, ^1.0"; can be repeated`)
	fs.BoolVar(&f.RequireTermination, "require-termination", false,
		"require a semicolon after the last statement")
	fs.StringVar(&f.Debug, "debug", "", "debugger mode: none, call or statements")
	fs.StringArrayVar(&f.Breakpoints, "break", nil,
		`breakpoint, like "12" or "12:3-8"; can be repeated`)
	fs.StringVar(&f.HistoryDB, "history-db", "", "path to the REPL history database")
}

// The environment subcommands run in, built from the flags and the
// configuration file before any subcommand runs.
type env struct {
	fds   [3]*os.File
	flags Flags
	cfg   *config.Config
}

func (e *env) setup(cmd *cobra.Command) error {
	if e.flags.Log != "" {
		if err := logutil.SetOutputFile(e.flags.Log); err != nil {
			fmt.Fprintln(e.fds[2], err)
		}
	}

	var err error
	if e.flags.Config != "" {
		e.cfg, err = config.Load(e.flags.Config)
	} else {
		var wd, path string
		if wd, err = os.Getwd(); err == nil {
			e.cfg, path, err = config.Find(wd)
			if path != "" {
				logger.Println("using config", path)
			}
		}
	}
	if err != nil {
		return err
	}

	for _, s := range e.flags.Refs {
		r, err := config.ParseReference(s)
		if err != nil {
			return BadUsage(fmt.Sprintf("bad --ref %q: %v", s, err))
		}
		e.cfg.References = append(e.cfg.References, r)
	}
	if cmd.Flags().Changed("require-termination") {
		e.cfg.RequireTermination = e.flags.RequireTermination
	}
	if e.flags.Debug != "" {
		e.cfg.Debug.Mode = e.flags.Debug
	}
	if len(e.flags.Breakpoints) > 0 {
		e.cfg.Debug.Breakpoints = e.flags.Breakpoints
	}
	if e.flags.HistoryDB != "" {
		e.cfg.HistoryDB = e.flags.HistoryDB
	}
	if _, err := e.cfg.Debug.Debugger(nil); err != nil {
		return BadUsage(err.Error())
	}
	return nil
}

// Creates an Evaler with the configured references loaded. Host output and
// input go to the standard streams.
func (e *env) newEvaler() (*eval.Evaler, error) {
	ev, err := eval.NewEvaler(host.New(e.fds[1], e.fds[0]), ext.All()...)
	if err != nil {
		return nil, err
	}
	for _, r := range e.cfg.References {
		c, err := r.Constraint()
		if err != nil {
			return nil, err
		}
		if err := ev.Host.AddReference(r.Name, c); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

func (e *env) evalCfg() eval.EvalCfg {
	// Validated in setup.
	d, _ := e.cfg.Debug.Debugger(e.showCapture)
	return eval.EvalCfg{
		Debugger:           d,
		RequireTermination: e.cfg.RequireTermination,
		Interrupts:         eval.ListenInterrupts,
	}
}

func (e *env) showCapture(c debug.Capture) {
	fmt.Fprintf(e.fds[2], "[debug %d:%d] %s\n", c.Line, c.Column, strings.TrimSpace(c.Text))
	names := make([]string, 0, len(c.Vars))
	for name := range c.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(e.fds[2], "  %s = %s\n", name, vals.Repr(c.Vars[name]))
	}
}

// Opens the history store, creating its directory if needed.
func (e *env) openStore() (store.DBStore, error) {
	path := e.cfg.HistoryDB
	if path == "" {
		var err error
		if path, err = defaultHistoryDB(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return store.NewStore(path)
}

// Returns $XDG_STATE_HOME/xs/history.db, defaulting XDG_STATE_HOME to
// ~/.local/state.
func defaultHistoryDB() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot find history database: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "xs", "history.db"), nil
}
