// Package repl implements the interactive mode of XS.
//
// Each submission is evaluated by the same Evaler, so variables declared by
// one submission stay visible to the next. A submission that ends before a
// construct is closed is continued on the next line.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/store/storedefs"
	"src.xs.sh/pkg/sys"
)

var logger = logutil.GetLogger("[repl] ")

const (
	prompt     = "xs> "
	contPrompt = "... "
)

// Config keeps configuration for the interactive mode.
type Config struct {
	Evaler *eval.Evaler
	// Used for each submission.
	EvalCfg eval.EvalCfg
	// Where submissions are recorded. May be nil.
	Store storedefs.Store
}

const helpText = `Enter XS code to evaluate it. Commands:
  :help          show this help
  :names         list variables declared so far
  :show <code>   show the tree of code without running it
  :history [n]   show the last n submissions (default 10)
  :quit          leave the REPL
`

type repl struct {
	ev      *eval.Evaler
	cfg     eval.EvalCfg
	store   storedefs.Store
	ed      editor
	out     io.Writer
	errOut  io.Writer
	counter int
}

// Interact runs an interactive session until the input ends or :quit is
// entered.
func Interact(fds [3]*os.File, cfg *Config) error {
	r := &repl{ev: cfg.Evaler, cfg: cfg.EvalCfg, store: cfg.Store, out: fds[1], errOut: fds[2]}
	if sys.IsATTY(fds[0].Fd()) {
		r.ed = newLineEditor(loadHistory(cfg.Store))
	} else {
		r.ed = newMinEditor(fds[0], fds[1])
	}
	defer r.ed.Close()
	return r.loop()
}

func loadHistory(s storedefs.Store) []string {
	if s == nil {
		return nil
	}
	upto, err := s.NextSeq()
	if err != nil {
		logger.Println("cannot get next seq:", err)
		return nil
	}
	entries, err := s.Range(0, upto)
	if err != nil {
		logger.Println("cannot load history:", err)
		return nil
	}
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	return texts
}

func (r *repl) loop() error {
	var buf strings.Builder
	for {
		p := prompt
		if buf.Len() > 0 {
			p = contPrompt
		}
		line, err := r.ed.ReadLine(p)
		switch {
		case errors.Is(err, errAborted):
			buf.Reset()
			continue
		case err == io.EOF:
			if strings.TrimSpace(buf.String()) != "" {
				r.submit(buf.String(), true)
			}
			fmt.Fprintln(r.out)
			return nil
		case err != nil:
			return err
		}

		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if r.command(strings.TrimSpace(line)) {
				return nil
			}
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if strings.TrimSpace(buf.String()) == "" {
			buf.Reset()
			continue
		}
		if r.submit(buf.String(), false) {
			buf.Reset()
		}
	}
}

// Evaluates a submission and shows its result. It returns false without
// doing anything else if the code is incomplete and more input may
// complete it, unless final is true.
func (r *repl) submit(code string, final bool) bool {
	src := parse.Source{Name: fmt.Sprintf("[repl %d]", r.counter+1), Code: code}
	v, err := r.ev.Eval(src, r.cfg)
	if err != nil && !final && parse.IsPartial(err) {
		return false
	}
	r.counter++
	r.record(code, err)
	if err != nil {
		diag.ShowError(r.errOut, err)
	} else if v != nil {
		fmt.Fprintln(r.out, vals.Repr(v))
	}
	return true
}

func (r *repl) record(code string, err error) {
	r.ed.AddHistory(code)
	if r.store == nil {
		return
	}
	_, storeErr := r.store.Add(storedefs.Entry{
		Text: code, Time: time.Now().Unix(), Failed: err != nil})
	if storeErr != nil {
		logger.Println("cannot add to history:", storeErr)
	}
}

// Runs a REPL command, returning whether the REPL should quit.
func (r *repl) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(r.out, helpText)
	case ":names":
		names := r.ev.Names()
		sort.Strings(names)
		fmt.Fprintln(r.out, strings.Join(names, " "))
	case ":show":
		if arg == "" {
			diag.Complain(r.errOut, "usage: :show <code>")
			break
		}
		src := parse.Source{Name: "[show]", Code: arg}
		if err := r.ev.Show(src, r.cfg, r.out); err != nil {
			diag.ShowError(r.errOut, err)
		}
	case ":history":
		n := 10
		if arg != "" {
			if _, err := fmt.Sscan(arg, &n); err != nil || n <= 0 {
				diag.Complain(r.errOut, "usage: :history [n]")
				break
			}
		}
		if err := ShowHistory(r.out, r.store, n); err != nil {
			diag.ShowError(r.errOut, err)
		}
	default:
		diag.Complainf(r.errOut, "unknown command %s; try :help", name)
	}
	return false
}

// ShowHistory writes the last n entries of the store to w, or all of them if
// n is not positive.
func ShowHistory(w io.Writer, s storedefs.Store, n int) error {
	if s == nil {
		return errors.New("no history store")
	}
	upto, err := s.NextSeq()
	if err != nil {
		return err
	}
	from := 0
	if n > 0 && upto > n {
		from = upto - n
	}
	entries, err := s.Range(from, upto)
	if err != nil {
		return err
	}
	for _, e := range entries {
		mark := " "
		if e.Failed {
			mark = "!"
		}
		fmt.Fprintf(w, "%5d%s %s\n", e.Seq, mark, strings.ReplaceAll(e.Text, "\n", "\n       "))
	}
	return nil
}
