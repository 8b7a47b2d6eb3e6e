package scan

import (
	"testing"

	. "src.xs.sh/pkg/tt"
)

func readString(src string) (string, bool, error, int) {
	s := New(src)
	v, ok, err := s.ReadString()
	return v, ok, err, s.Pos()
}

func TestReadString(t *testing.T) {
	Test(t, readString,
		Args(`"abc" x`).Rets("abc", true, nil, 5),
		Args(`"a\"b\n"`).Rets("a\"b\n", true, nil, 8),
		Args(`"\u0041"`).Rets("A", true, nil, 8),
		Args(`"A"`).Rets("A", true, nil, 3),
		Args(`abc`).Rets("", false, nil, 0),
		Args(`"abc`).Rets("", true, ErrUnterminatedString, 0),
		Args(`"a\qb"`).Rets("", true, ErrInvalidEscape, 2),
		Args(`"\u00G1"`).Rets("", true, ErrInvalidEscape, 1),
	)
}

func readCharLit(src string) (rune, bool, error) {
	v, ok, err := New(src).ReadCharLit()
	return v, ok, err
}

func TestReadCharLit(t *testing.T) {
	Test(t, readCharLit,
		Args(`'a'`).Rets('a', true, nil),
		Args(`'\n'`).Rets('\n', true, nil),
		Args(`'\''`).Rets('\'', true, nil),
		Args(`''`).Rets(rune(0), true, ErrEmptyChar),
		Args(`'ab'`).Rets(rune(0), true, ErrUnterminatedChar),
		Args(`x`).Rets(rune(0), false, nil),
	)
}

func TestQuote(t *testing.T) {
	Test(t, Quote,
		Args("abc").Rets(`"abc"`),
		Args("a\"b\n").Rets(`"a\"b\n"`),
		Args("\x01").Rets(`"\u0001"`),
		Args("it's").Rets(`"it's"`),
	)
	Test(t, QuoteChar,
		Args('a').Rets(`'a'`),
		Args('\'').Rets(`'\''`),
		Args('"').Rets(`'"'`),
	)
}
