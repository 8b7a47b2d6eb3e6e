package prog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"src.xs.sh/pkg/artifact"
	"src.xs.sh/pkg/buildinfo"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/emit"
	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/ext"
	"src.xs.sh/pkg/lsp"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/repl"
	"src.xs.sh/pkg/sys"
	"src.xs.sh/pkg/watch"
)

func newRootCommand(fds [3]*os.File) *cobra.Command {
	e := &env{fds: fds}
	root := &cobra.Command{
		Use:           "xs",
		Short:         "XS is an extensible scripting language",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return BadUsage("no subcommand given")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return BadUsage(err.Error())
	})
	e.flags.register(root)

	root.AddCommand(
		runCmd(e), runFileCmd(e), compileCmd(e), showCmd(e),
		replCmd(e), lspCmd(e), watchCmd(e), historyCmd(e), versionCmd())
	return root
}

func runCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run <code>...",
		Short: "Evaluate code given as arguments and print its value",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			return e.eval(parse.Source{Name: "[args]", Code: strings.Join(args, " ")})
		},
	}
}

func runFileCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run-file <path>",
		Short: "Evaluate a source file or compiled artifact and print its value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			return e.eval(src)
		},
	}
}

// Evaluates src with a new Evaler and prints the value, if any.
func (e *env) eval(src parse.Source) error {
	ev, err := e.newEvaler()
	if err != nil {
		return err
	}
	v, err := ev.Eval(src, e.evalCfg())
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Fprintln(e.fds[1], vals.Repr(v))
	}
	return nil
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

// Reads a source file. Artifacts written by "xs compile" are unpacked to the
// source they were compiled from.
func readSource(path string) (parse.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parse.Source{}, err
	}
	if artifact.IsArtifact(data) {
		a, err := artifact.Read(bytes.NewReader(data))
		if err != nil {
			return parse.Source{}, fmt.Errorf("%s: %w", path, err)
		}
		logger.Printf("%s: artifact of %s compiled at %d", path, a.Name, a.Compiled)
		return parse.Source{Name: a.Name, Code: a.Source, IsFile: true}, nil
	}
	if !utf8.Valid(data) {
		return parse.Source{}, fmt.Errorf("%s: %w", path, errSourceNotUTF8)
	}
	return parse.Source{Name: path, Code: string(data), IsFile: true}, nil
}

func compileCmd(e *env) *cobra.Command {
	var out, target string
	var opts emit.Options
	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Check a source file and write it as Go source or as an artifact",
		Long: `Check a source file and write it as Go source or as an artifact.

With -target go, the program must be a single expression made of literals,
operators and conditionals. With -target bin, an artifact that run-file
accepts is written. With -target auto, the target is go if the output
ends in .go and bin otherwise.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveTarget(target, out)
			if err != nil {
				return err
			}
			if out == "" {
				suffix := ".xsc"
				if kind == "go" {
					suffix = ".go"
				}
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + suffix
			}
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			ev, err := e.newEvaler()
			if err != nil {
				return err
			}
			prog, err := ev.Check(src, eval.EvalCfg{RequireTermination: e.cfg.RequireTermination})
			if err != nil {
				return err
			}

			if kind == "go" {
				o := e.cfg.Emit.Options()
				if cmd.Flags().Changed("module") {
					o.Package = opts.Package
				}
				if cmd.Flags().Changed("class") {
					o.Type = opts.Type
				}
				if cmd.Flags().Changed("func") {
					o.Func = opts.Func
				}
				code, err := emit.Emit(prog, o)
				if err != nil {
					return err
				}
				return writeOutput(e.fds[1], out, func(w io.Writer) error {
					_, err := w.Write(code)
					return err
				})
			}
			var sum [32]byte
			err = writeOutput(e.fds[1], out, func(w io.Writer) error {
				sum, err = artifact.Write(w, artifact.FromProgram(prog))
				return err
			})
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintln(e.fds[1], artifact.Digest(sum), out)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&out, "output", "o", "", `output file; "-" for stdout`)
	fs.StringVar(&target, "target", "auto", "output kind: auto, go or bin")
	fs.StringVar(&opts.Package, "module", "", "Go package name (default main)")
	fs.StringVar(&opts.Type, "class", "", "Go type holding the program (default Program)")
	fs.StringVar(&opts.Func, "func", "", "Go method evaluating the program (default Run)")
	return cmd
}

func resolveTarget(target, out string) (string, error) {
	switch target {
	case "go", "bin":
		return target, nil
	case "auto":
		if strings.HasSuffix(out, ".go") {
			return "go", nil
		}
		return "bin", nil
	}
	return "", BadUsage(fmt.Sprintf("unknown target %q", target))
}

// Calls write with a buffered writer to the output file, or to stdout if
// path is "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func showCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code|path>",
		Short: "Print the tree of a program without running it",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			src := parse.Source{Name: "[args]", Code: strings.Join(args, " ")}
			if len(args) == 1 {
				if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
					if src, err = readSource(args[0]); err != nil {
						return err
					}
				}
			}
			ev, err := e.newEvaler()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := ev.Show(src, e.evalCfg(), &buf); err != nil {
				return err
			}
			width := sys.TermWidth(e.fds[1], 0)
			for _, line := range strings.SplitAfter(buf.String(), "\n") {
				if width > 0 && runewidth.StringWidth(line) > width {
					line = runewidth.Truncate(strings.TrimSuffix(line, "\n"), width, "…") + "\n"
				}
				fmt.Fprint(e.fds[1], line)
			}
			return nil
		},
	}
}

func replCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			ev, err := e.newEvaler()
			if err != nil {
				return err
			}
			cfg := &repl.Config{Evaler: ev, EvalCfg: e.evalCfg()}
			st, err := e.openStore()
			if err != nil {
				fmt.Fprintln(e.fds[2], "Warning: cannot open history:", err)
			} else {
				defer st.Close()
				cfg.Store = st
			}
			return repl.Interact(e.fds, cfg)
		},
	}
}

func lspCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdin and stdout",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return lsp.Serve(ctx, e.fds[0], e.fds[1], ext.All()...)
		},
	}
}

func watchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Evaluate a file each time it changes, until interrupted",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch.Watch(ctx, path, watch.DefaultDelay, func(code string, err error) {
				if err != nil {
					diag.ShowError(e.fds[2], err)
					return
				}
				fmt.Fprintf(e.fds[2], "[%s] %s\n", time.Now().Format(time.TimeOnly), path)
				if err := e.eval(parse.Source{Name: path, Code: code, IsFile: true}); err != nil {
					diag.ShowError(e.fds[2], err)
				}
			})
		},
	}
}

func historyCmd(e *env) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the REPL history",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			return repl.ShowHistory(e.fds[1], st, n)
		},
	}
	cmd.Flags().IntVarP(&n, "number", "n", 0, "number of entries to show; all if 0")
	return cmd
}

func versionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Value.Version)
				return nil
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(buildinfo.Value)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "show the full build information in JSON")
	return cmd
}
