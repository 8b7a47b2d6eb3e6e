package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Returned by ReadLine when the user aborts the current input with Ctrl-C.
var errAborted = errors.New("aborted")

// The interface the line editor has to satisfy.
type editor interface {
	// ReadLine reads one line after writing prompt. It returns io.EOF when
	// there is no more input.
	ReadLine(prompt string) (string, error)
	AddHistory(text string)
	Close() error
}

// A line editor with history and cursor movement, used when the input is a
// terminal.
type lineEditor struct {
	st *liner.State
}

func newLineEditor(history []string) *lineEditor {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetMultiLineMode(true)
	for _, text := range history {
		st.AppendHistory(text)
	}
	return &lineEditor{st}
}

func (ed *lineEditor) ReadLine(prompt string) (string, error) {
	line, err := ed.st.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errAborted
	}
	return line, err
}

func (ed *lineEditor) AddHistory(text string) { ed.st.AppendHistory(text) }

func (ed *lineEditor) Close() error { return ed.st.Close() }

// The minimal editor, used when the input is not a terminal.
type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in *os.File, out io.Writer) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// Last line without a line ending.
		return line, nil
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), err
}

func (ed *minEditor) AddHistory(string) {}

func (ed *minEditor) Close() error { return nil }
