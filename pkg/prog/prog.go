// Package prog provides the entry point to XS. The xs command is a set of
// subcommands, each built in this package on top of the evaluator, the
// emitters and the tools around them.
package prog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[prog] ")

// Run parses command-line arguments and runs the selected subcommand. It
// returns the exit status of the program: 0 on success, 1 if the
// subcommand fails and 2 on bad usage.
func Run(fds [3]*os.File, args []string) int {
	root := newRootCommand(fds)
	root.SetArgs(args[1:])
	root.SetIn(fds[0])
	root.SetOut(fds[1])
	root.SetErr(fds[2])

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	if isUsageError(err) {
		fmt.Fprintln(fds[2], err)
		fmt.Fprint(fds[2], cmd.UsageString())
		return 2
	}
	logger.Println("command failed:", err)
	diag.ShowError(fds[2], err)
	return 1
}

func isUsageError(err error) bool {
	var usage badUsageError
	// Errors cobra reports about the command line itself are plain errors.
	return errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command")
}

// BadUsage returns a special error that may be returned by a subcommand. It
// causes Run to print the message and the usage information, and to exit
// with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Wraps a cobra argument validator so that its errors are usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return BadUsage(err.Error())
		}
		return nil
	}
}
