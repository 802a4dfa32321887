// Package pipeline wires the expression front end together: lexing,
// parsing and type checking run as processors over a shared context.
package pipeline

import (
	"github.com/blueprintdsl/blueprint/internal/ast"
	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/token"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

// PipelineContext carries one expression through the stages. Errors
// accumulate across stages; a stage that cannot run with what it has
// leaves the context unchanged apart from its diagnostics.
type PipelineContext struct {
	// Inputs
	SourceCode string
	FilePath   string // fragment file the expression came from
	Line       int    // position of the expression in the fragment, 0 if unknown
	Column     int
	Subject    string // what the expression belongs to, for messages
	FieldTypes typesystem.FieldTypeContext

	// Stage outputs
	TokenStream []token.Token
	AstRoot     ast.Expr
	Inferred    typesystem.ExprType

	Errors []*diagnostics.DiagnosticError
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages keep running after errors so one pass
// collects diagnostics from every stage that can still make progress.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
