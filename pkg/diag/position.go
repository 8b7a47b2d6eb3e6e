package diag

import (
	"strings"
	"unicode/utf8"
)

// Position is a 1-based line and column pair. Columns count runes, not bytes.
type Position struct {
	Line   int
	Column int
}

// PositionOf returns the position of the byte offset idx within src. Offsets
// outside src are clamped.
func PositionOf(src string, idx int) Position {
	if idx < 0 {
		idx = 0
	} else if idx > len(src) {
		idx = len(src)
	}
	before := src[:idx]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(lastLine(before)) + 1
	return Position{line, col}
}

// LineText returns the text of the given 1-based line of src, without the
// trailing newline. It returns an empty string if the line does not exist.
func LineText(src string, line int) string {
	for i := 1; i < line; i++ {
		j := strings.IndexByte(src, '\n')
		if j == -1 {
			return ""
		}
		src = src[j+1:]
	}
	return strings.TrimSuffix(firstLine(src), "\r")
}
