package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokString
	tokName
	tokKeyword
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	typ tokenType
	val string
	num float64
	pos int // byte offset into the source
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of expression"
	case tokString:
		return strconv.Quote(t.val)
	default:
		return fmt.Sprintf("'%s'", t.val)
	}
}

// keywords are reserved words of the host grammar. Only and, or, if and else
// are accepted by the parser; the rest are recognised so that they fail as
// unsupported syntax instead of resolving as identifiers.
var keywords = map[string]bool{
	"and": true, "or": true, "if": true, "else": true,
	"not": true, "in": true, "is": true, "lambda": true,
	"for": true, "import": true, "from": true, "def": true,
	"return": true, "yield": true, "await": true, "async": true,
	"class": true, "del": true, "global": true, "nonlocal": true,
	"while": true, "with": true, "as": true, "assert": true,
	"pass": true, "raise": true, "try": true, "except": true,
	"finally": true, "break": true, "continue": true, "elif": true,
	"None": true,
}

// twoCharOps are matched before single-character operators.
var twoCharOps = []string{"**", "//", "<=", ">=", "==", "!="}

const singleCharOps = "+-*/%<>"

type lexer struct {
	src    string
	pos    int
	tokens []token
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, token{typ: tokEOF, pos: l.pos})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return newError(l.src, "syntax error at column %d: %s", pos+1, fmt.Sprintf(format, args...))
}

func (l *lexer) next() error {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.number()
	case c == '\'' || c == '"':
		return l.str(c)
	case c == '_' || isLetter(c):
		for l.pos < len(l.src) && (l.src[l.pos] == '_' || isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		word := l.src[start:l.pos]
		typ := tokName
		if keywords[word] {
			typ = tokKeyword
		}
		l.tokens = append(l.tokens, token{typ: typ, val: word, pos: start})
		return nil
	case c == '(':
		l.emit(tokLParen, "(")
		return nil
	case c == ')':
		l.emit(tokRParen, ")")
		return nil
	case c == ',':
		l.emit(tokComma, ",")
		return nil
	}

	for _, op := range twoCharOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.emit(tokOp, op)
			return nil
		}
	}
	if strings.IndexByte(singleCharOps, c) >= 0 {
		l.emit(tokOp, string(c))
		return nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) emit(typ tokenType, val string) {
	l.tokens = append(l.tokens, token{typ: typ, val: val, pos: l.pos})
	l.pos += len(val)
}

func (l *lexer) number() error {
	start := l.pos
	digits := func() {
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	}
	digits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		digits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
			return l.errorf(start, "malformed number %q", l.src[start:l.pos])
		}
		digits()
	}
	text := l.src[start:l.pos]
	if strings.HasPrefix(text, "_") || strings.HasSuffix(text, "_") || strings.Contains(text, "__") ||
		strings.Contains(text, "_.") || strings.Contains(text, "._") {
		return l.errorf(start, "malformed number %q", text)
	}
	// Reject things like 1abc or 2x that would otherwise split into two tokens.
	if l.pos < len(l.src) && (isLetter(l.src[l.pos]) || l.src[l.pos] == '_') {
		return l.errorf(start, "malformed number %q", l.src[start:l.pos+1])
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return l.errorf(start, "malformed number %q", text)
	}
	l.tokens = append(l.tokens, token{typ: tokNumber, val: text, num: f, pos: start})
	return nil
}

func (l *lexer) str(quote byte) error {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			l.tokens = append(l.tokens, token{typ: tokString, val: b.String(), pos: start})
			return nil
		case c == '\n':
			return l.errorf(start, "unterminated string literal")
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				return l.errorf(start, "unterminated string literal")
			}
			switch esc := l.src[l.pos+1]; esc {
			case '\\', '\'', '"':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				return l.errorf(l.pos, "unsupported escape sequence \\%c", esc)
			}
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return l.errorf(start, "unterminated string literal")
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// IsIdentifier reports whether name lexes as a single bindable name: ASCII
// letters, digits and underscores, not starting with a digit, and not a
// reserved word.
func IsIdentifier(name string) bool {
	if name == "" || keywords[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || isLetter(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}
