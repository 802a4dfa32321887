package lexer

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/token"
)

// TokenError is a lexical error at a byte offset in the expression source.
// Code is one of the diagnostics.ErrLxxx codes.
type TokenError struct {
	Offset  int
	Code    string
	Message string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Offset)
}

// Lexer turns expression source text into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The returned stream always ends with
// exactly one EOF token; on error the partial stream is discarded.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	var tok token.Token

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			start := l.position
			l.readChar()
			tok = token.Token{Type: token.EQ, Lexeme: "==", Literal: "==", Offset: start}
		} else {
			return token.Token{}, &TokenError{Offset: l.position, Code: diagnostics.ErrL003, Message: "unexpected character '='"}
		}
	case '!':
		if l.peekChar() == '=' {
			start := l.position
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Lexeme: "!=", Literal: "!=", Offset: start}
		} else {
			return token.Token{}, &TokenError{Offset: l.position, Code: diagnostics.ErrL003, Message: "unexpected character '!'"}
		}
	case '<':
		if l.peekChar() == '=' {
			start := l.position
			l.readChar()
			tok = token.Token{Type: token.LTE, Lexeme: "<=", Literal: "<=", Offset: start}
		} else {
			tok = l.newToken(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			start := l.position
			l.readChar()
			tok = token.Token{Type: token.GTE, Lexeme: ">=", Literal: ">=", Offset: start}
		} else {
			tok = l.newToken(token.GT)
		}
	case '-':
		if l.peekChar() == '>' {
			start := l.position
			l.readChar()
			tok = token.Token{Type: token.ARROW, Lexeme: "->", Literal: "->", Offset: start}
		} else {
			tok = l.newToken(token.MINUS)
		}
	case '+':
		tok = l.newToken(token.PLUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		tok = l.newToken(token.SLASH)
	case '%':
		tok = l.newToken(token.PERCENT)
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case '[':
		tok = l.newToken(token.LBRACKET)
	case ']':
		tok = l.newToken(token.RBRACKET)
	case ',':
		tok = l.newToken(token.COMMA)
	case '.':
		tok = l.newToken(token.DOT)
	case ':':
		tok = l.newToken(token.COLON)
	case '"':
		return l.readString()
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Offset: l.position}
	default:
		if isLetter(l.ch) {
			start := l.position
			lexeme := l.readIdentifier()
			typ := token.LookupIdent(lexeme)
			lit := identLiteral(typ, lexeme)
			return token.Token{Type: typ, Lexeme: lexeme, Literal: lit, Offset: start}, nil
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		return token.Token{}, &TokenError{
			Offset:  l.position,
			Code:    diagnostics.ErrL003,
			Message: fmt.Sprintf("unexpected character %q", l.ch),
		}
	}

	l.readChar()
	return tok, nil
}

func (l *Lexer) newToken(t token.TokenType) token.Token {
	return token.Token{Type: t, Lexeme: string(l.ch), Literal: string(l.ch), Offset: l.position}
}

func identLiteral(t token.TokenType, lexeme string) interface{} {
	switch t {
	case token.TRUE:
		return true
	case token.FALSE:
		return false
	case token.NULL:
		return nil
	}
	return lexeme
}

// readString consumes a double-quoted string literal. A backslash escapes
// the following character verbatim: `\n` is a literal 'n', `\"` a quote.
func (l *Lexer) readString() (token.Token, error) {
	start := l.position
	var out []rune
	for {
		l.readChar()
		if l.ch == 0 {
			return token.Token{}, &TokenError{Offset: start, Code: diagnostics.ErrL001, Message: "unterminated string literal"}
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				return token.Token{}, &TokenError{Offset: start, Code: diagnostics.ErrL002, Message: "unterminated escape sequence"}
			}
		}
		out = append(out, l.ch)
	}
	l.readChar() // past closing quote
	value := string(out)
	return token.Token{
		Type:    token.STRING,
		Lexeme:  l.input[start:l.position],
		Literal: value,
		Offset:  start,
	}, nil
}

// readNumber consumes digits with an optional fraction. When the number is
// immediately followed by an identifier that is a recognized duration unit,
// the number and unit together form a single DURATION token.
func (l *Lexer) readNumber() (token.Token, error) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if isLetter(l.ch) {
		unitStart := l.position
		unitEnd := unitStart
		for unitEnd < len(l.input) {
			r, w := utf8.DecodeRuneInString(l.input[unitEnd:])
			if !isLetter(r) && !isDigit(r) {
				break
			}
			unitEnd += w
		}
		unit := l.input[unitStart:unitEnd]
		if token.IsDurationUnit(unit) {
			for l.position < unitEnd {
				l.readChar()
			}
			lexeme := l.input[start:unitEnd]
			return token.Token{Type: token.DURATION, Lexeme: lexeme, Literal: lexeme, Offset: start}, nil
		}
	}

	lexeme := l.input[start:l.position]
	if isFloat {
		val, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, &TokenError{Offset: start, Code: diagnostics.ErrL003, Message: "invalid number literal"}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Offset: start}, nil
	}
	val, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, &TokenError{Offset: start, Code: diagnostics.ErrL003, Message: "invalid number literal"}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Offset: start}, nil
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
