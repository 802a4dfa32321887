package ast

import (
	"strings"

	"github.com/blueprintdsl/blueprint/internal/token"
)

// Expr is the closed union of expression node kinds. The unexported marker
// keeps the set closed to this package so consumers can switch over every
// variant exhaustively.
type Expr interface {
	exprNode()
	GetToken() token.Token
}

// Literal is an int, float, string, bool or null literal. Value holds the
// decoded Go value (int64, float64, string, bool, or nil).
type Literal struct {
	Token token.Token
	Value interface{}
}

func (l *Literal) exprNode() {}
func (l *Literal) GetToken() token.Token {
	if l == nil {
		return token.Token{}
	}
	return l.Token
}

// FieldRef is a dotted path of identifiers, e.g. customer.name.
type FieldRef struct {
	Token token.Token // first path segment
	Path  []string
}

func (f *FieldRef) exprNode() {}
func (f *FieldRef) GetToken() token.Token {
	if f == nil {
		return token.Token{}
	}
	return f.Token
}

// String returns the dotted path.
func (f *FieldRef) String() string { return strings.Join(f.Path, ".") }

// DurationLiteral is a number with a duration unit suffix, e.g. 5d or 30min.
type DurationLiteral struct {
	Token token.Token
	Value string // raw lexeme, number and unit together
}

func (d *DurationLiteral) exprNode() {}
func (d *DurationLiteral) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// BinaryExpr is an infix operation: arithmetic, comparison, equality,
// and, or.
type BinaryExpr struct {
	Token token.Token // the operator token
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) exprNode() {}
func (b *BinaryExpr) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}

// UnaryExpr is a prefix operation: not, unary minus.
type UnaryExpr struct {
	Token   token.Token
	Op      string
	Operand Expr
}

func (u *UnaryExpr) exprNode() {}
func (u *UnaryExpr) GetToken() token.Token {
	if u == nil {
		return token.Token{}
	}
	return u.Token
}

// FuncCall is name(arg, arg, ...).
type FuncCall struct {
	Token token.Token // the function name token
	Name  string
	Args  []Expr
}

func (f *FuncCall) exprNode() {}
func (f *FuncCall) GetToken() token.Token {
	if f == nil {
		return token.Token{}
	}
	return f.Token
}

// InExpr is a membership test: needle in haystack.
type InExpr struct {
	Token    token.Token // the 'in' token
	Needle   Expr
	Haystack Expr
}

func (i *InExpr) exprNode() {}
func (i *InExpr) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// ListLiteral is a bracketed element list, the usual haystack of an InExpr.
type ListLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expr
}

func (l *ListLiteral) exprNode() {}
func (l *ListLiteral) GetToken() token.Token {
	if l == nil {
		return token.Token{}
	}
	return l.Token
}

// ElifBranch is one elif arm of an IfExpr.
type ElifBranch struct {
	Cond Expr
	Then Expr
}

// IfExpr is a conditional expression:
// if cond: a elif cond2: b else: c
type IfExpr struct {
	Token token.Token // the 'if' token
	Cond  Expr
	Then  Expr
	Elifs []ElifBranch
	Else  Expr
}

func (i *IfExpr) exprNode() {}
func (i *IfExpr) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}
