package diagnostics

import "fmt"

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Stable diagnostic codes. The letter names the producing stage:
// L lexical, P parse, E link/reference, T type check.
const (
	ErrL001 = "L001" // unterminated string literal
	ErrL002 = "L002" // unterminated escape sequence
	ErrL003 = "L003" // unexpected character

	ErrP001 = "P001" // unexpected token
	ErrP002 = "P002" // unmatched parenthesis or bracket
	ErrP003 = "P003" // trailing tokens after expression

	ErrE001 = "E001" // uses target not defined
	ErrE002 = "E002" // circular module dependency
	ErrE003 = "E003" // duplicate entity
	ErrE004 = "E004" // unresolved entity reference

	ErrT001 = "T001" // default type mismatch
	ErrT002 = "T002" // condition is not boolean
)

// DiagnosticError is a single diagnostic with an optional source location.
// Line 0 means the location is unknown and rendering falls back to the
// bare ERROR:/WARNING: form.
type DiagnosticError struct {
	Code     string
	Severity Severity
	Message  string
	File     string
	Line     int
	Column   int
}

func NewError(code string, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

func NewWarning(code string, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:     code,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	}
}

// At attaches a source location and returns the receiver for chaining.
func (e *DiagnosticError) At(file string, line, column int) *DiagnosticError {
	e.File = file
	e.Line = line
	e.Column = column
	return e
}

func (e *DiagnosticError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Severity, e.Message)
	}
	if e.Severity == SeverityWarning {
		return fmt.Sprintf("WARNING: %s", e.Message)
	}
	return fmt.Sprintf("ERROR: %s", e.Message)
}

// HasErrors reports whether any diagnostic in errs has error severity.
func HasErrors(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
