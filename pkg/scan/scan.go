// Package scan implements the character-level cursor used by the parser.
//
// A Scanner only knows about characters: it tracks a byte position, skips
// whitespace and comments, and recognizes the lexical shapes of identifiers,
// numbers, strings and characters. It never decides what those mean; that is
// the job of the parser combinators built on top of it.
//
// All Read* methods either consume input and return true, or leave the
// position unchanged and return false.
package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"src.xs.sh/pkg/diag"
)

// Scanner is a cursor over a source text. The zero value is not usable; use
// New.
type Scanner struct {
	src string
	pos int
}

// New creates a Scanner positioned at the start of src.
func New(src string) *Scanner {
	return &Scanner{src: src}
}

// Source returns the whole source text.
func (s *Scanner) Source() string { return s.src }

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// Reset moves the cursor to the given byte offset, which must have been
// obtained from Pos.
func (s *Scanner) Reset(pos int) { s.pos = pos }

// Position returns the line and column of the given offset.
func (s *Scanner) Position(pos int) diag.Position {
	return diag.PositionOf(s.src, pos)
}

// EOF reports whether the cursor is at the end of the source.
func (s *Scanner) EOF() bool { return s.pos >= len(s.src) }

// Rest returns the unconsumed part of the source.
func (s *Scanner) Rest() string { return s.src[s.pos:] }

// Peek returns the next rune without consuming it, or -1 at the end.
func (s *Scanner) Peek() rune {
	if s.pos >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

// Next consumes and returns the next rune, or returns -1 at the end.
func (s *Scanner) Next() rune {
	if s.pos >= len(s.src) {
		return -1
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	return r
}

// SkipWhitespace skips whitespace, line comments (// ...) and block comments
// (/* ... */). An unterminated block comment extends to the end of the
// source.
func (s *Scanner) SkipWhitespace() {
	for s.pos < len(s.src) {
		rest := s.src[s.pos:]
		switch {
		case strings.HasPrefix(rest, "//"):
			i := strings.IndexByte(rest, '\n')
			if i == -1 {
				s.pos = len(s.src)
			} else {
				s.pos += i + 1
			}
		case strings.HasPrefix(rest, "/*"):
			i := strings.Index(rest[2:], "*/")
			if i == -1 {
				s.pos = len(s.src)
			} else {
				s.pos += i + 4
			}
		default:
			r, size := utf8.DecodeRuneInString(rest)
			if !unicode.IsSpace(r) {
				return
			}
			s.pos += size
		}
	}
}

// ReadText consumes text if the source continues with it.
func (s *Scanner) ReadText(text string) bool {
	if strings.HasPrefix(s.src[s.pos:], text) {
		s.pos += len(text)
		return true
	}
	return false
}

// ReadChar consumes r if it is the next rune.
func (s *Scanner) ReadChar(r rune) bool {
	if s.Peek() == r && r != -1 {
		s.Next()
		return true
	}
	return false
}

// IsIdentifierStart reports whether r can start an identifier.
func IsIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// IsIdentifierPart reports whether r can appear after the first character of
// an identifier.
func IsIdentifierPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ReadIdentifier consumes an identifier and returns it.
func (s *Scanner) ReadIdentifier() (string, bool) {
	start := s.pos
	if !IsIdentifierStart(s.Peek()) {
		return "", false
	}
	s.Next()
	for IsIdentifierPart(s.Peek()) {
		s.Next()
	}
	return s.src[start:s.pos], true
}

// ReadKeyword consumes kw if it is followed by a character that cannot
// continue an identifier. Reading "if" from "iffy" fails.
func (s *Scanner) ReadKeyword(kw string) bool {
	start := s.pos
	if !s.ReadText(kw) {
		return false
	}
	if IsIdentifierPart(s.Peek()) {
		s.pos = start
		return false
	}
	return true
}

// Number is the lexical shape of a numeric literal.
type Number struct {
	// Text is the literal without its suffix.
	Text string
	// HasPoint reports whether the literal has a fractional part or an
	// exponent.
	HasPoint bool
	// Suffix is the type suffix, lowercased, or 0 if there is none.
	Suffix rune
}

// ReadNumber consumes a decimal number: digits, an optional fraction, an
// optional exponent, and an optional type suffix (one of l, f, d, m, in
// either case). A leading sign is not part of the number.
func (s *Scanner) ReadNumber() (Number, bool) {
	start := s.pos
	if !isDigit(s.Peek()) {
		return Number{}, false
	}
	s.skipDigits()
	hasPoint := false
	if s.Peek() == '.' {
		// Only a fraction if a digit follows; "1.ToString" is member access.
		if s.pos+1 < len(s.src) && isDigit(rune(s.src[s.pos+1])) {
			s.pos++
			s.skipDigits()
			hasPoint = true
		}
	}
	if r := s.Peek(); r == 'e' || r == 'E' {
		save := s.pos
		s.Next()
		if r := s.Peek(); r == '+' || r == '-' {
			s.Next()
		}
		if isDigit(s.Peek()) {
			s.skipDigits()
			hasPoint = true
		} else {
			s.pos = save
		}
	}
	text := s.src[start:s.pos]
	var suffix rune
	switch r := unicode.ToLower(s.Peek()); r {
	case 'l', 'f', 'd', 'm':
		suffix = r
		s.Next()
	}
	if IsIdentifierPart(s.Peek()) {
		// Something like 12abc is not a number.
		s.pos = start
		return Number{}, false
	}
	return Number{text, hasPoint, suffix}, true
}

func (s *Scanner) skipDigits() {
	for isDigit(s.Peek()) {
		s.pos++
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
