package parser

import (
	"fmt"

	"github.com/blueprintdsl/blueprint/internal/ast"
	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/token"
)

// ParseError is a syntax error at a token position. Code is one of the
// diagnostics.ErrPxxx codes.
type ParseError struct {
	Token   token.Token
	Code    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Token.Offset)
}

// Operator precedence levels, loosest first.
const (
	LOWEST int = iota
	OR
	AND
	EQUALS      // == != is in
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // not, unary minus
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.IS:       EQUALS,
	token.IN:       EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
}

type (
	prefixParseFn func() (ast.Expr, error)
	infixParseFn  func(ast.Expr) (ast.Expr, error)
)

// Parser builds one expression AST from a token stream.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.INT:      p.parseLiteral,
		token.FLOAT:    p.parseLiteral,
		token.STRING:   p.parseLiteral,
		token.TRUE:     p.parseLiteral,
		token.FALSE:    p.parseLiteral,
		token.NULL:     p.parseLiteral,
		token.DURATION: p.parseDurationLiteral,
		token.IDENT:    p.parseIdentifier,
		token.MINUS:    p.parsePrefixExpression,
		token.NOT:      p.parsePrefixExpression,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseListLiteral,
		token.IF:       p.parseIfExpression,
	}
	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.LTE:      p.parseBinaryExpression,
		token.GTE:      p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NOT_EQ:   p.parseBinaryExpression,
		token.IS:       p.parseBinaryExpression,
		token.AND:      p.parseBinaryExpression,
		token.OR:       p.parseBinaryExpression,
		token.IN:       p.parseInExpression,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse consumes the whole stream and returns the expression root. Tokens
// left over after a complete expression are an error.
func Parse(tokens []token.Token) (ast.Expr, error) {
	p := New(tokens)
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.peekTokenIs(token.EOF) {
		return nil, &ParseError{
			Token:   p.peekToken,
			Code:    diagnostics.ErrP003,
			Message: fmt.Sprintf("unexpected token %q after expression", p.peekToken.Lexeme),
		}
	}
	return expr, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF, Offset: p.curToken.Offset}
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) error {
	if !p.peekTokenIs(t) {
		return &ParseError{
			Token:   p.peekToken,
			Code:    diagnostics.ErrP001,
			Message: fmt.Sprintf("expected %q, got %q", string(t), p.peekToken.Lexeme),
		}
	}
	p.nextToken()
	return nil
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		return nil, &ParseError{
			Token:   p.curToken,
			Code:    diagnostics.ErrP001,
			Message: fmt.Sprintf("unexpected token %q", p.curToken.Lexeme),
		}
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left, nil
		}
		p.nextToken()
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseLiteral() (ast.Expr, error) {
	return &ast.Literal{Token: p.curToken, Value: p.curToken.Literal}, nil
}

func (p *Parser) parseDurationLiteral() (ast.Expr, error) {
	return &ast.DurationLiteral{Token: p.curToken, Value: p.curToken.Lexeme}, nil
}

// parseIdentifier parses a dotted field reference or, when followed by an
// opening parenthesis, a function call.
func (p *Parser) parseIdentifier() (ast.Expr, error) {
	if p.peekTokenIs(token.LPAREN) {
		return p.parseFuncCall()
	}

	ref := &ast.FieldRef{Token: p.curToken, Path: []string{p.curToken.Lexeme}}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		ref.Path = append(ref.Path, p.curToken.Lexeme)
	}
	return ref, nil
}

func (p *Parser) parseFuncCall() (ast.Expr, error) {
	call := &ast.FuncCall{Token: p.curToken, Name: p.curToken.Lexeme}
	p.nextToken() // '('

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call, nil
	}

	p.nextToken()
	arg, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	call.Args = append(call.Args, arg)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}

	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parsePrefixExpression() (ast.Expr, error) {
	expr := &ast.UnaryExpr{Token: p.curToken, Op: p.curToken.Lexeme}
	p.nextToken()
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	expr.Operand = operand
	return expr, nil
}

func (p *Parser) parseBinaryExpression(left ast.Expr) (ast.Expr, error) {
	expr := &ast.BinaryExpr{Token: p.curToken, Op: p.curToken.Lexeme, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expr.Right = right
	return expr, nil
}

func (p *Parser) parseInExpression(left ast.Expr) (ast.Expr, error) {
	expr := &ast.InExpr{Token: p.curToken, Needle: left}
	precedence := p.curPrecedence()
	p.nextToken()
	haystack, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expr.Haystack = haystack
	return expr, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expr, error) {
	lparen := p.curToken
	p.nextToken()
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.peekTokenIs(token.RPAREN) {
		return nil, &ParseError{Token: lparen, Code: diagnostics.ErrP002, Message: "unmatched '('"}
	}
	p.nextToken()
	return expr, nil
}

func (p *Parser) parseListLiteral() (ast.Expr, error) {
	list := &ast.ListLiteral{Token: p.curToken}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return list, nil
	}

	p.nextToken()
	elem, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	list.Elements = append(list.Elements, elem)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elem, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, elem)
	}

	if !p.peekTokenIs(token.RBRACKET) {
		return nil, &ParseError{Token: list.Token, Code: diagnostics.ErrP002, Message: "unmatched '['"}
	}
	p.nextToken()
	return list, nil
}

// parseIfExpression parses a conditional:
// if cond: a elif cond2: b else: c
func (p *Parser) parseIfExpression() (ast.Expr, error) {
	expr := &ast.IfExpr{Token: p.curToken}

	p.nextToken()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	expr.Cond = cond

	if err := p.expectPeek(token.COLON); err != nil {
		return nil, err
	}
	p.nextToken()
	then, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	expr.Then = then

	for p.peekTokenIs(token.ELIF) {
		p.nextToken()
		p.nextToken()
		cond, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.COLON); err != nil {
			return nil, err
		}
		p.nextToken()
		branch, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		expr.Elifs = append(expr.Elifs, ast.ElifBranch{Cond: cond, Then: branch})
	}

	if err := p.expectPeek(token.ELSE); err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.COLON); err != nil {
		return nil, err
	}
	p.nextToken()
	alt, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	expr.Else = alt

	return expr, nil
}
