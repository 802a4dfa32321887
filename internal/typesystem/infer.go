package typesystem

import "github.com/blueprintdsl/blueprint/internal/ast"

// builtinReturns is the static name -> return type table for built-in
// functions. abs, round, min and max are special-cased in Infer.
var builtinReturns = map[string]ExprType{
	"today":      DATE,
	"now":        DATETIME,
	"days_until": INT,
	"days_since": INT,
	"len":        INT,
	"concat":     STR,
	"coalesce":   ANY,
	"abs":        ANY,
	"round":      ANY,
}

// Infer returns the static type of expr under fieldTypes. It is total and
// deterministic: every syntactically valid AST infers to exactly one type,
// and unresolvable cases degrade to ANY rather than failing. A nil context
// is treated as empty.
func Infer(expr ast.Expr, fieldTypes FieldTypeContext) ExprType {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalType(e.Value)

	case *ast.FieldRef:
		if t, ok := fieldTypes[e.String()]; ok {
			return t
		}
		return ANY

	case *ast.DurationLiteral:
		return DURATION

	case *ast.BinaryExpr:
		return inferBinary(e, fieldTypes)

	case *ast.UnaryExpr:
		if e.Op == "not" {
			return BOOL
		}
		// Unary minus preserves the operand's type.
		return Infer(e.Operand, fieldTypes)

	case *ast.FuncCall:
		return inferCall(e, fieldTypes)

	case *ast.InExpr:
		return BOOL

	case *ast.IfExpr:
		// Only the then branch is considered; elif/else branches are
		// assumed homogeneously typed.
		return Infer(e.Then, fieldTypes)

	case *ast.ListLiteral:
		return ANY
	}
	return ANY
}

func literalType(value interface{}) ExprType {
	switch value.(type) {
	case nil:
		return NULL
	case bool:
		return BOOL
	case int64:
		return INT
	case float64:
		return FLOAT
	case string:
		return STR
	}
	return ANY
}

func inferBinary(e *ast.BinaryExpr, fieldTypes FieldTypeContext) ExprType {
	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=", "is", "and", "or":
		return BOOL
	case "+", "-", "*", "/", "%":
		return inferArithmetic(e.Op, Infer(e.Left, fieldTypes), Infer(e.Right, fieldTypes))
	}
	return ANY
}

func inferArithmetic(op string, left, right ExprType) ExprType {
	if left == ANY || right == ANY {
		return ANY
	}

	// Calendar arithmetic: date/datetime shifted by a duration keeps the
	// calendar type; the difference of two like calendar values is a
	// duration.
	if op == "+" || op == "-" {
		if left.IsTemporal() && right == DURATION {
			return left
		}
		if left == DURATION && right.IsTemporal() {
			return right
		}
	}
	if op == "-" && left.IsTemporal() && left == right {
		return DURATION
	}

	if op == "+" && left == STR && right == STR {
		return STR
	}

	if left.IsNumeric() && right.IsNumeric() {
		if left == MONEY || right == MONEY {
			return MONEY
		}
		if left == FLOAT || right == FLOAT || op == "/" {
			return FLOAT
		}
		return INT
	}

	return ANY
}

func inferCall(e *ast.FuncCall, fieldTypes FieldTypeContext) ExprType {
	switch e.Name {
	case "abs", "round":
		if len(e.Args) > 0 {
			if t := Infer(e.Args[0], fieldTypes); t.IsNumeric() {
				return t
			}
		}
		return ANY
	case "min", "max":
		if len(e.Args) > 0 {
			return Infer(e.Args[0], fieldTypes)
		}
		return ANY
	}
	if t, ok := builtinReturns[e.Name]; ok {
		return t
	}
	return ANY
}
