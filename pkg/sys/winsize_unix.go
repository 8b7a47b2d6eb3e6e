//go:build unix

package sys

import (
	"os"

	"golang.org/x/sys/unix"
)

func winSize(file *os.File) (row, col int) {
	ws, err := unix.IoctlGetWinsize(int(file.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return -1, -1
	}
	return orDefault(int(ws.Row), 24), orDefault(int(ws.Col), 80)
}

// Serial consoles may report a size of zero.
func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}
