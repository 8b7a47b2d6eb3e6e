// Command xs runs XS programs, compiles them, and serves the language server.
package main

import (
	"os"

	"src.xs.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run([3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args))
}
