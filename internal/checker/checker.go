// Package checker validates every expression attached to a linked
// application: computed field defaults against their declared types, and
// visibility conditions and transition guards against bool.
package checker

import (
	"fmt"

	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/lexer"
	"github.com/blueprintdsl/blueprint/internal/linker"
	"github.com/blueprintdsl/blueprint/internal/model"
	"github.com/blueprintdsl/blueprint/internal/parser"
	"github.com/blueprintdsl/blueprint/internal/pipeline"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

// Check runs every default, visibility and guard expression in app through
// the lex/parse/infer pipeline and returns the accumulated diagnostics.
// Lexical and syntactic failures are errors local to the one expression;
// type disagreements are warnings, matching the lenient inference rules.
func Check(app *linker.Application) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError

	byName := make(map[string]*model.Module, len(app.Modules))
	for _, mod := range app.Modules {
		byName[mod.Name] = mod
	}

	for _, entity := range app.Entities {
		fieldTypes := app.FieldContext(entity)
		file := ""
		if mod, ok := byName[entity.Module]; ok {
			file = mod.File
		}

		for _, field := range entity.Fields {
			if !field.Default.IsZero() {
				subject := fmt.Sprintf("default of %s.%s", entity.Name, field.Name)
				ctx := run(field.Default, file, subject, fieldTypes)
				errs = append(errs, ctx.Errors...)
				if ctx.AstRoot != nil && !compatible(field.Type, ctx.Inferred) {
					errs = append(errs, diagnostics.NewWarning(
						diagnostics.ErrT001,
						"%s has type %s, field is declared %s",
						subject, ctx.Inferred, field.Type,
					).At(file, field.Default.Line, field.Default.Column))
				}
			}
			if !field.Visible.IsZero() {
				subject := fmt.Sprintf("visibility of %s.%s", entity.Name, field.Name)
				errs = append(errs, checkCondition(field.Visible, file, subject, fieldTypes)...)
			}
		}

		for _, tr := range entity.Transitions {
			if tr.Guard.IsZero() {
				continue
			}
			subject := fmt.Sprintf("guard of %s.%s", entity.Name, tr.Name)
			errs = append(errs, checkCondition(tr.Guard, file, subject, fieldTypes)...)
		}
	}
	return errs
}

func run(src model.ExprSource, file, subject string, fieldTypes typesystem.FieldTypeContext) *pipeline.PipelineContext {
	pipe := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&TypeCheckProcessor{},
	)
	return pipe.Run(&pipeline.PipelineContext{
		SourceCode: src.Text,
		FilePath:   file,
		Line:       src.Line,
		Column:     src.Column,
		Subject:    subject,
		FieldTypes: fieldTypes,
	})
}

func checkCondition(src model.ExprSource, file, subject string, fieldTypes typesystem.FieldTypeContext) []*diagnostics.DiagnosticError {
	ctx := run(src, file, subject, fieldTypes)
	errs := ctx.Errors
	if ctx.AstRoot != nil && ctx.Inferred != typesystem.BOOL && ctx.Inferred != typesystem.ANY {
		errs = append(errs, diagnostics.NewWarning(
			diagnostics.ErrT002,
			"%s has type %s, expected bool",
			subject, ctx.Inferred,
		).At(file, src.Line, src.Column))
	}
	return errs
}

// compatible reports whether an inferred default type may initialize a
// field of the declared type. ANY on either side is always accepted, as is
// null (optional fields) and int widening to float or money.
func compatible(declared, inferred typesystem.ExprType) bool {
	if declared == inferred || declared == typesystem.ANY || inferred == typesystem.ANY {
		return true
	}
	if inferred == typesystem.NULL {
		return true
	}
	if inferred == typesystem.INT && (declared == typesystem.FLOAT || declared == typesystem.MONEY) {
		return true
	}
	return false
}
