package scan

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Errors returned by ReadString and ReadCharLit. When they are returned the
// cursor is left at the offending position so that the caller can report it.
var (
	ErrUnterminatedString = errors.New("string not terminated")
	ErrUnterminatedChar   = errors.New("character literal not terminated")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
	ErrEmptyChar          = errors.New("empty character literal")
)

// ReadString reads a double-quoted string literal and returns its unquoted
// value. The first return value is false if the source does not start with a
// double quote, in which case nothing is consumed. A non-nil error means the
// literal is malformed.
func (s *Scanner) ReadString() (string, bool, error) {
	if s.Peek() != '"' {
		return "", false, nil
	}
	start := s.pos
	s.Next()
	var sb strings.Builder
	for {
		r := s.Next()
		switch r {
		case -1, '\n':
			s.pos = start
			return "", true, ErrUnterminatedString
		case '"':
			return sb.String(), true, nil
		case '\\':
			e, err := s.readEscape()
			if err != nil {
				return "", true, err
			}
			sb.WriteRune(e)
		default:
			sb.WriteRune(r)
		}
	}
}

// ReadCharLit reads a single-quoted character literal.
func (s *Scanner) ReadCharLit() (rune, bool, error) {
	if s.Peek() != '\'' {
		return 0, false, nil
	}
	start := s.pos
	s.Next()
	var r rune
	switch c := s.Next(); c {
	case -1, '\n':
		s.pos = start
		return 0, true, ErrUnterminatedChar
	case '\'':
		s.pos = start
		return 0, true, ErrEmptyChar
	case '\\':
		e, err := s.readEscape()
		if err != nil {
			return 0, true, err
		}
		r = e
	default:
		r = c
	}
	if !s.ReadChar('\'') {
		s.pos = start
		return 0, true, ErrUnterminatedChar
	}
	return r, true, nil
}

func (s *Scanner) readEscape() (rune, error) {
	escStart := s.pos - 1
	switch r := s.Next(); r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return r, nil
	case 'u':
		if s.pos+4 <= len(s.src) {
			if v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 32); err == nil {
				s.pos += 4
				return rune(v), nil
			}
		}
	}
	s.pos = escStart
	return 0, ErrInvalidEscape
}

// Quote returns s as a double-quoted XS string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		sb.WriteString(escape(r, '"'))
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteChar returns r as a single-quoted XS character literal.
func QuoteChar(r rune) string {
	return "'" + escape(r, '\'') + "'"
}

func escape(r rune, quote rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	case '\\':
		return `\\`
	case quote:
		return `\` + string(quote)
	}
	if r < 0x20 || r == utf8.RuneError {
		return `\u` + strings.ToUpper(strconv.FormatInt(int64(r)|0x10000, 16)[1:])
	}
	return string(r)
}
