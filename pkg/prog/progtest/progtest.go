// Package progtest provides a framework for testing the xs command.
package progtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"src.xs.sh/pkg/must"
	"src.xs.sh/pkg/prog"
)

// Case is a test case of the xs command. It is built with ThatXS and the
// methods of Case.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit   int
	stdout output
	stderr output
}

type output struct {
	content  string
	contains bool
	set      bool
}

func (o output) String() string {
	if o.contains {
		return fmt.Sprintf("text containing %q", o.content)
	}
	return fmt.Sprintf("%q", o.content)
}

func (o output) matches(s string) bool {
	if o.contains {
		return strings.Contains(s, o.content)
	}
	return s == o.content
}

// ThatXS returns a new Case with the specified CLI arguments, not including
// the program name.
//
// The new Case expects the command to exit with 0 and write nothing to
// stdout and stderr. Use the methods of Case to change the expectations.
func ThatXS(args ...string) Case {
	return Case{args: append([]string{"xs"}, args...)}
}

// WithStdin returns an altered Case that provides the given input.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the command to exit with
// the given status.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the command to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{s, false, true}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the command to
// write output to stdout that contains the given text.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{s, true, true}
	return c
}

// WritesStderr returns an altered Case that requires the command to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{s, false, true}
	return c
}

// WritesStderrContaining returns an altered Case that requires the command to
// write output to stderr that contains the given text.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{s, true, true}
	return c
}

// Test runs the xs command with each of the test cases.
func Test(t *testing.T, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(t, c.stdin, c.args...)
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			check(t, "stdout", stdout, c.want.stdout)
			check(t, "stderr", stderr, c.want.stderr)
		})
	}
}

func check(t *testing.T, name, got string, want output) {
	t.Helper()
	if !want.set {
		want = output{set: true}
	}
	if !want.matches(got) {
		t.Errorf("got %s %q, want %s", name, got, want)
	}
}

// Run runs the xs command with the given stdin and arguments, including the
// program name, and returns its exit status and what it wrote to stdout and
// stderr.
func Run(t *testing.T, stdin string, args ...string) (exit int, stdout, stderr string) {
	t.Helper()
	inPath := filepath.Join(t.TempDir(), "stdin")
	must.WriteFile(inPath, stdin)
	in := must.OK1(os.Open(inPath))
	defer in.Close()

	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	// Read concurrently, so that the command does not block when it writes
	// more than a pipe can buffer.
	outCh, errCh := readAsync(r1), readAsync(r2)
	exit = prog.Run([3]*os.File{in, w1, w2}, args)
	w1.Close()
	w2.Close()
	return exit, <-outCh, <-errCh
}

func readAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return ch
}
