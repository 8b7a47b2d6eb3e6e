package diag

import (
	"testing"

	. "src.xs.sh/pkg/tt"
)

func TestPositionOf(t *testing.T) {
	Test(t, PositionOf,
		Args("", 0).Rets(Position{1, 1}),
		Args("var x = 1;", 4).Rets(Position{1, 5}),
		Args("a;\nbc;", 4).Rets(Position{2, 2}),
		Args("a;\nbc;", 3).Rets(Position{2, 1}),
		It("counts runes in columns").Args("\"é\" x", 5).Rets(Position{1, 5}),
		It("clamps large offsets").Args("ab", 10).Rets(Position{1, 3}),
		It("clamps negative offsets").Args("ab", -1).Rets(Position{1, 1}),
	)
}

func TestLineText(t *testing.T) {
	Test(t, LineText,
		Args("a;\nb;\r\nc;", 1).Rets("a;"),
		Args("a;\nb;\r\nc;", 2).Rets("b;"),
		Args("a;\nb;\r\nc;", 3).Rets("c;"),
		Args("a;\nb;", 5).Rets(""),
	)
}
