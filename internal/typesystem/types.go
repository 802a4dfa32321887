package typesystem

// ExprType is the static type of an expression. ANY is the universal
// unknown/unconstrained type, never an error value.
type ExprType string

const (
	INT      ExprType = "int"
	FLOAT    ExprType = "float"
	STR      ExprType = "str"
	BOOL     ExprType = "bool"
	NULL     ExprType = "null"
	DATE     ExprType = "date"
	DATETIME ExprType = "datetime"
	DURATION ExprType = "duration"
	MONEY    ExprType = "money"
	ANY      ExprType = "any"
)

func (t ExprType) String() string { return string(t) }

// IsNumeric reports whether t participates in numeric arithmetic.
func (t ExprType) IsNumeric() bool {
	return t == INT || t == FLOAT || t == MONEY
}

// IsTemporal reports whether t is a calendar type.
func (t ExprType) IsTemporal() bool {
	return t == DATE || t == DATETIME
}

// FromName maps a declared field type name to an ExprType. Unknown names
// map to ANY.
func FromName(name string) ExprType {
	switch name {
	case "int":
		return INT
	case "float":
		return FLOAT
	case "str", "string", "text":
		return STR
	case "bool":
		return BOOL
	case "date":
		return DATE
	case "datetime":
		return DATETIME
	case "duration":
		return DURATION
	case "money":
		return MONEY
	}
	return ANY
}

// FieldTypeContext maps a dotted field path to its declared type. It is
// read-only during inference.
type FieldTypeContext map[string]ExprType
