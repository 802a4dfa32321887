package token

// TokenType identifies the lexical class of a token.
type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Literals
	INT      TokenType = "INT"
	FLOAT    TokenType = "FLOAT"
	STRING   TokenType = "STRING"
	DURATION TokenType = "DURATION"

	IDENT TokenType = "IDENT"

	// Keywords
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
	NULL  TokenType = "NULL"
	AND   TokenType = "AND"
	OR    TokenType = "OR"
	NOT   TokenType = "NOT"
	IN    TokenType = "IN"
	IS    TokenType = "IS"
	IF    TokenType = "IF"
	ELIF  TokenType = "ELIF"
	ELSE  TokenType = "ELSE"

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	GT       TokenType = ">"
	LTE      TokenType = "<="
	GTE      TokenType = ">="
	ARROW    TokenType = "->"

	// Punctuation
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	COMMA    TokenType = ","
	DOT      TokenType = "."
	COLON    TokenType = ":"
)

// Token is one lexical unit of an expression. Literal holds the decoded
// value for literal tokens (int64, float64, string, bool) and the lexeme
// for everything else. Offset is the byte offset of the token's first
// character in the expression source.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Offset  int
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"is":    IS,
	"if":    IF,
	"elif":  ELIF,
	"else":  ELSE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}

// DurationUnits is the set of recognized duration unit suffixes. The set is
// fixed: both "m" and "min" are valid units and are kept distinct.
var DurationUnits = map[string]bool{
	"d":   true,
	"h":   true,
	"w":   true,
	"m":   true,
	"y":   true,
	"min": true,
}

// IsDurationUnit reports whether s is a recognized duration unit.
func IsDurationUnit(s string) bool {
	return DurationUnits[s]
}
