package lexer

import (
	"testing"

	"github.com/pageframe/litescan/internal/sql/token"
)

func typesOf(tokens []token.Token) []token.Type {
	types := make([]token.Type, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func TestTokenizeSelectStatement(t *testing.T) {
	tokens, err := Tokenize("SELECT name, color FROM apples WHERE color = 'Yellow'")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []token.Type{
		token.Select, token.Identifier, token.Comma, token.Identifier,
		token.From, token.Identifier,
		token.Where, token.Identifier, token.Equal, token.String,
		token.EOF,
	}
	got := typesOf(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d type = %v, want %v", i, got[i], want[i])
		}
	}

	if tokens[9].Literal != "Yellow" {
		t.Errorf("string literal = %q, want %q", tokens[9].Literal, "Yellow")
	}
}

func TestTokenizeCaseInsensitiveKeywords(t *testing.T) {
	tokens, err := Tokenize("select * from Apples")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if tokens[0].Type != token.Select {
		t.Errorf("lowercase 'select' should lex as keyword, got %v", tokens[0].Type)
	}
	if tokens[3].Type != token.Identifier || tokens[3].Lexeme != "Apples" {
		t.Errorf("identifier should preserve source case, got %+v", tokens[3])
	}
}

func TestTokenizeComparisonOperators(t *testing.T) {
	tokens, err := Tokenize("a != b <> c <= d >= e < f > g")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []token.Type{
		token.Identifier, token.NotEqual, token.Identifier, token.NotEqual, token.Identifier,
		token.LessEqual, token.Identifier, token.GreaterEqual, token.Identifier,
		token.Less, token.Identifier, token.Greater, token.Identifier, token.EOF,
	}
	got := typesOf(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d type = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeNumberLiteral(t *testing.T) {
	tokens, err := Tokenize("42 3.14")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if tokens[0].Literal != "42" {
		t.Errorf("integer literal = %q, want %q", tokens[0].Literal, "42")
	}
	if tokens[1].Literal != "3.14" {
		t.Errorf("float literal = %q, want %q", tokens[1].Literal, "3.14")
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	if _, err := Tokenize("SELECT 'oops"); err == nil {
		t.Fatal("expected error for unterminated string literal")
	}
}

func TestTokenizeFunctionCall(t *testing.T) {
	tokens, err := Tokenize("COUNT(*)")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []token.Type{token.Identifier, token.LeftParen, token.Star, token.RightParen, token.EOF}
	got := typesOf(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d type = %v, want %v", i, got[i], want[i])
		}
	}
}
