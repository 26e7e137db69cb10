package dub

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	typeUnknown tokenType = iota
	typeInt
	typeFloat
	typeIdentifier
	typeString
	typeQuote
	typeComma
	typeColon
	typeSlash
	typeAsterisk
	typeEOF
)

const eof = -1

var punctuation = map[rune]tokenType{
	'\'': typeQuote,
	',':  typeComma,
	':':  typeColon,
	'/':  typeSlash,
	'*':  typeAsterisk,
}

type token struct {
	typ  tokenType
	pos  int
	text string
}

// stateFn lexes from the current position and returns the next state,
// nil once the input is exhausted or an error was recorded.
type stateFn func(*lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int

	tokens []token
	err    error
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	for state := lexAny; state != nil; {
		state = state(l)
	}
	return l.tokens, l.err
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func (l *lexer) backup() { l.pos -= l.width }

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) emit(t tokenType) {
	l.tokens = append(l.tokens, token{typ: t, pos: l.start, text: l.input[l.start:l.pos]})
	l.start = l.pos
}

func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.err = fmt.Errorf(format, args...)
	return nil
}

func lexAny(l *lexer) stateFn {
	r := l.next()
	switch {
	case r == eof:
		l.emit(typeEOF)
		return nil
	case isSpace(r):
		for isSpace(l.peek()) {
			l.next()
		}
		l.start = l.pos
		return lexAny
	case r == '"':
		return lexString
	case unicode.IsLetter(r):
		return lexIdentifier
	case isDigit(r) || (r == '-' || r == '.') && l.numberAhead(r):
		l.backup()
		return lexNumber
	}
	if typ, ok := punctuation[r]; ok {
		l.emit(typ)
		return lexAny
	}
	return l.errorf("unexpected character: %#U at position %d", r, l.start)
}

// numberAhead reports whether a leading sign or decimal point is
// followed by the digits of a number.
func (l *lexer) numberAhead(lead rune) bool {
	rest := l.input[l.pos:]
	if lead == '-' && strings.HasPrefix(rest, ".") {
		rest = rest[1:]
	}
	return rest != "" && isDigit(rune(rest[0]))
}

func lexIdentifier(l *lexer) stateFn {
	for r := l.peek(); unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'; r = l.peek() {
		l.next()
	}
	if r := l.peek(); r != eof && !isSpace(r) {
		return l.errorf("unexpected character: %#U at position %d", r, l.pos)
	}
	l.emit(typeIdentifier)
	return lexAny
}

func lexString(l *lexer) stateFn {
	end := strings.IndexByte(l.input[l.pos:], '"')
	if end < 0 {
		return l.errorf("unterminated string starting at position %d", l.start)
	}
	l.pos += end + 1
	l.emit(typeString)
	return lexAny
}

const digits = "0123456789"

func lexNumber(l *lexer) stateFn {
	typ := typeInt
	l.accept("-")
	l.acceptRun(digits)
	if l.accept(".") {
		typ = typeFloat
		l.acceptRun(digits)
	}
	// numbers may run straight into pattern punctuation, e.g. 1,3/2:4
	if r := l.peek(); r != eof && !isSpace(r) && !strings.ContainsRune("/:,", r) {
		return l.errorf("unexpected character: %#U at position %d", r, l.pos)
	}
	l.emit(typ)
	return lexAny
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
