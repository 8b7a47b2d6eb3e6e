package diag

import (
	"errors"
	"fmt"
	"io"
)

// Shower is implemented by errors that can render themselves together with
// the source they point to.
type Shower interface {
	// Show renders the error. Lines after the first start with indent.
	Show(indent string) string
}

// ShowError writes err to w. If err is or wraps a Shower, its Show method is
// used; otherwise the message is printed with Complain.
func ShowError(w io.Writer, err error) {
	var shower Shower
	if errors.As(err, &shower) {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintf(w, "\033[31;1m%s\033[m\n", msg)
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}
