package parser

import (
	"errors"

	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/pipeline"
)

// ParserProcessor runs the expression parser as a pipeline stage. It is a
// no-op when the lexer stage produced no token stream.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		return ctx
	}
	expr, err := Parse(ctx.TokenStream)
	if err != nil {
		code, msg := diagnostics.ErrP001, err.Error()
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			code, msg = parseErr.Code, parseErr.Message
		}
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			code, "%s: %s", ctx.Subject, msg,
		).At(ctx.FilePath, ctx.Line, ctx.Column))
		return ctx
	}
	ctx.AstRoot = expr
	return ctx
}
