package lexer

import (
	"errors"

	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/pipeline"
)

// LexerProcessor runs the tokenizer as a pipeline stage.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, err := Tokenize(ctx.SourceCode)
	if err != nil {
		code, msg := diagnostics.ErrL003, err.Error()
		var tokErr *TokenError
		if errors.As(err, &tokErr) {
			code, msg = tokErr.Code, tokErr.Message
		}
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(
			code, "%s: %s", ctx.Subject, msg,
		).At(ctx.FilePath, ctx.Line, ctx.Column))
		return ctx
	}
	ctx.TokenStream = tokens
	return ctx
}
