// Package lexer tokenizes litescan's SQL dialect: a hand-rolled scanner
// in the style of a single-pass recursive scanner, not a table-driven
// state machine, since the token set is small enough that the extra
// structure buys nothing.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pageframe/litescan/internal/sql/token"
	"github.com/pageframe/litescan/internal/xerrors"
)

// Lexer scans a single SQL statement into a flat token slice.
type Lexer struct {
	src     string
	start   int
	current int
}

func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the entire source and returns its tokens, terminated
// by a trailing EOF token.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespace()
	l.start = l.current

	if l.atEnd() {
		return token.Token{Type: token.EOF, Pos: l.start}, nil
	}

	c := l.advance()
	switch c {
	case '(':
		return l.make(token.LeftParen), nil
	case ')':
		return l.make(token.RightParen), nil
	case ',':
		return l.make(token.Comma), nil
	case '.':
		return l.make(token.Dot), nil
	case ';':
		return l.make(token.Semicolon), nil
	case '*':
		return l.make(token.Star), nil
	case '=':
		return l.make(token.Equal), nil
	case '!':
		if l.matchRune('=') {
			return l.make(token.NotEqual), nil
		}
		return token.Token{}, l.syntaxError("unexpected character '!'")
	case '<':
		if l.matchRune('=') {
			return l.make(token.LessEqual), nil
		}
		if l.matchRune('>') {
			// <> is the original spelling for inequality; != is accepted
			// as an alias and both produce NotEqual.
			return l.make(token.NotEqual), nil
		}
		return l.make(token.Less), nil
	case '>':
		if l.matchRune('=') {
			return l.make(token.GreaterEqual), nil
		}
		return l.make(token.Greater), nil
	case '\'', '"':
		return l.readString(c)
	default:
		if isDigit(c) {
			return l.readNumber(), nil
		}
		if isAlpha(c) {
			return l.readIdentifier(), nil
		}
		return token.Token{}, l.syntaxError("unexpected character " + string(c))
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) readString(quote rune) (token.Token, error) {
	for !l.atEnd() && l.peek() != quote {
		l.advance()
	}
	if l.atEnd() {
		return token.Token{}, l.syntaxError("unterminated string literal")
	}
	literal := l.src[l.start+1 : l.current]
	l.advance() // closing quote
	tok := l.make(token.String)
	tok.Literal = literal
	return tok, nil
}

func (l *Lexer) readNumber() token.Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	tok := l.make(token.Number)
	tok.Literal = tok.Lexeme
	return tok
}

func (l *Lexer) readIdentifier() token.Token {
	for !l.atEnd() && (isAlpha(l.peek()) || isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
	tok := l.make(token.Identifier)
	if kw, ok := token.Lookup(strings.ToUpper(tok.Lexeme)); ok {
		tok.Type = kw
	}
	return tok
}

func (l *Lexer) make(t token.Type) token.Token {
	return token.Token{Type: t, Lexeme: l.src[l.start:l.current], Pos: l.start}
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.src)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.current:])
	l.current += size
	return r
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.current:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.atEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.src[l.current:])
	rest := l.src[l.current+size:]
	if rest == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r
}

func (l *Lexer) matchRune(want rune) bool {
	if l.atEnd() || l.peek() != want {
		return false
	}
	l.advance()
	return true
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isAlpha(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func (l *Lexer) syntaxError(msg string) error {
	return xerrors.New("lex", xerrors.ErrSyntax, map[string]any{
		"message": msg,
		"offset":  l.start,
	})
}
