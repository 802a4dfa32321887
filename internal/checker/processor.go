package checker

import (
	"github.com/blueprintdsl/blueprint/internal/pipeline"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

// TypeCheckProcessor infers the static type of a parsed expression as a
// pipeline stage. Inference is total, so this stage never adds errors; it
// is a no-op when parsing failed.
type TypeCheckProcessor struct{}

func (tp *TypeCheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	ctx.Inferred = typesystem.Infer(ctx.AstRoot, ctx.FieldTypes)
	return ctx
}
