// Package parser turns a token stream into litescan's SELECT-only AST,
// by recursive descent in the style of a classic single-token-lookahead
// parser: one method per grammar production, a peek/check/match/consume
// helper quartet driving them.
package parser

import (
	"fmt"

	"github.com/pageframe/litescan/internal/sql/ast"
	"github.com/pageframe/litescan/internal/sql/lexer"
	"github.com/pageframe/litescan/internal/sql/token"
	"github.com/pageframe/litescan/internal/xerrors"
)

// Parser consumes a token slice produced by the lexer and builds one
// statement from it; litescan only ever parses a single statement per
// query, so unlike a general-purpose SQL parser this has no statement
// list or loop over semicolons.
type Parser struct {
	tokens  []token.Token
	current int
}

// Parse tokenizes src and parses exactly one statement from it.
func Parse(src string) (ast.Stmt, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	return p.statement()
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.check(token.Select):
		p.advance()
		return p.selectStmt()
	case p.check(token.Insert):
		p.advance()
		return &ast.Unsupported{Keyword: "INSERT"}, nil
	case p.check(token.Update):
		p.advance()
		return &ast.Unsupported{Keyword: "UPDATE"}, nil
	case p.check(token.Delete):
		p.advance()
		return &ast.Unsupported{Keyword: "DELETE"}, nil
	case p.check(token.Create):
		p.advance()
		return &ast.Unsupported{Keyword: "CREATE"}, nil
	default:
		return nil, p.errorf("expected a statement, got %q", p.peek().Lexeme)
	}
}

func (p *Parser) selectStmt() (ast.Stmt, error) {
	columns, err := p.selectList()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.From, "expected FROM after select list"); err != nil {
		return nil, err
	}

	tableRef, err := p.tableRef()
	if err != nil {
		return nil, err
	}

	var where ast.Expr
	if p.match(token.Where) {
		where, err = p.expr()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Select{Columns: columns, From: tableRef, Where: where}, nil
}

func (p *Parser) selectList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.selectItem()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(token.Comma) {
			break
		}
	}
	return exprs, nil
}

// selectItem is a select-list expr with an optional AS alias.
func (p *Parser) selectItem() (ast.Expr, error) {
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.match(token.As) {
		name, err := p.consume(token.Identifier, "expected alias name after AS")
		if err != nil {
			return nil, err
		}
		return &ast.Aliased{Expr: e, Alias: name.Lexeme}, nil
	}
	return e, nil
}

func (p *Parser) tableRef() (ast.TableRef, error) {
	name, err := p.consume(token.Identifier, "expected table name")
	if err != nil {
		return ast.TableRef{}, err
	}
	ref := ast.TableRef{Name: name.Lexeme}
	if p.match(token.As) {
		alias, err := p.consume(token.Identifier, "expected table alias after AS")
		if err != nil {
			return ast.TableRef{}, err
		}
		ref.Alias = alias.Lexeme
	}
	return ref, nil
}

// expr parses a WHERE predicate (IDENT op expr) or a select-list item
// (func_call | primary). Both productions share a primary/func-call
// prefix, so the grammar's "expr" rule folds them together here: an
// optional binary-comparison suffix is consumed wherever expr is
// called, in the WHERE clause, in select-list items and in function
// arguments alike.
func (p *Parser) expr() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	op, ok := compareOpFor(p.peek().Type)
	if !ok {
		return left, nil
	}
	p.advance()

	right, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.check(token.Identifier) && p.peekNext().Type == token.LeftParen {
		return p.funcCall()
	}
	return p.primary()
}

func (p *Parser) funcCall() (ast.Expr, error) {
	name := p.advance().Lexeme
	if _, err := p.consume(token.LeftParen, "expected '(' after function name"); err != nil {
		return nil, err
	}

	var args []ast.Expr
	if p.match(token.Star) {
		args = append(args, &ast.Wildcard{})
	} else if !p.check(token.RightParen) {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}

	if _, err := p.consume(token.RightParen, "expected ')' after function arguments"); err != nil {
		return nil, err
	}
	return &ast.FuncCall{Name: name, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.Identifier):
		return &ast.Ident{Name: p.previous().Lexeme}, nil
	case p.match(token.String):
		return &ast.StringLiteral{Value: p.previous().Literal}, nil
	case p.match(token.Number):
		return &ast.NumberLiteral{Text: p.previous().Literal}, nil
	case p.match(token.Star):
		return &ast.Wildcard{}, nil
	default:
		return nil, p.errorf("expected an expression, got %q", p.peek().Lexeme)
	}
}

func compareOpFor(t token.Type) (ast.CompareOp, bool) {
	switch t {
	case token.Equal:
		return ast.OpEqual, true
	case token.NotEqual:
		return ast.OpNotEqual, true
	case token.Less:
		return ast.OpLess, true
	case token.LessEqual:
		return ast.OpLessEqual, true
	case token.Greater:
		return ast.OpGreater, true
	case token.GreaterEqual:
		return ast.OpGreaterEqual, true
	default:
		return 0, false
	}
}

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) consume(t token.Type, message string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("%s, got %q", message, p.peek().Lexeme)
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Type != token.EOF {
		p.current++
	}
	return tok
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekNext() token.Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return xerrors.New("parse", xerrors.ErrSyntax, map[string]any{
		"message": msg,
		"token":   p.peek().Lexeme,
		"offset":  p.peek().Pos,
	})
}
