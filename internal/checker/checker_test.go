package checker_test

import (
	"strings"
	"testing"

	"github.com/blueprintdsl/blueprint/internal/checker"
	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/linker"
	"github.com/blueprintdsl/blueprint/internal/model"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

func link(t *testing.T, mods ...*model.Module) *linker.Application {
	t.Helper()
	app, _, err := linker.Link(mods)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	return app
}

func invoiceModule(fields []*model.Field, transitions []*model.Transition) *model.Module {
	return &model.Module{
		Name: "billing",
		File: "billing.bpm.yaml",
		Entities: []*model.Entity{{
			Name:        "Invoice",
			Module:      "billing",
			Fields:      fields,
			Transitions: transitions,
		}},
	}
}

func TestCheckCleanModel(t *testing.T) {
	mod := invoiceModule([]*model.Field{
		{Name: "subtotal", TypeName: "money", Type: typesystem.MONEY},
		{Name: "tax", TypeName: "money", Type: typesystem.MONEY},
		{Name: "total", TypeName: "money", Type: typesystem.MONEY,
			Default: model.ExprSource{Text: "subtotal + tax", Line: 7, Column: 18}},
		{Name: "notes", TypeName: "str", Type: typesystem.STR,
			Visible: model.ExprSource{Text: "total > 0", Line: 9, Column: 18}},
	}, []*model.Transition{
		{Name: "approve", From: "draft", To: "approved",
			Guard: model.ExprSource{Text: "total > 0 and not paid", Line: 12, Column: 16}},
	})

	errs := checker.Check(link(t, mod))
	if len(errs) != 0 {
		t.Errorf("clean model produced diagnostics: %v", errs)
	}
}

func TestCheckDefaultTypeMismatch(t *testing.T) {
	mod := invoiceModule([]*model.Field{
		{Name: "count", TypeName: "int", Type: typesystem.INT,
			Default: model.ExprSource{Text: `"zero"`, Line: 4, Column: 18}},
	}, nil)

	errs := checker.Check(link(t, mod))
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(errs), errs)
	}
	d := errs[0]
	if d.Severity != diagnostics.SeverityWarning {
		t.Errorf("severity = %s, want warning", d.Severity)
	}
	if d.Code != diagnostics.ErrT001 {
		t.Errorf("code = %s, want %s", d.Code, diagnostics.ErrT001)
	}
	if !strings.Contains(d.Message, "Invoice.count") {
		t.Errorf("message %q does not name the field", d.Message)
	}
	if d.File != "billing.bpm.yaml" || d.Line != 4 {
		t.Errorf("location = %s:%d, want billing.bpm.yaml:4", d.File, d.Line)
	}
}

func TestCheckDefaultWidening(t *testing.T) {
	// An int default may initialize float and money fields; null may
	// initialize anything.
	mod := invoiceModule([]*model.Field{
		{Name: "rate", TypeName: "float", Type: typesystem.FLOAT,
			Default: model.ExprSource{Text: "1"}},
		{Name: "fee", TypeName: "money", Type: typesystem.MONEY,
			Default: model.ExprSource{Text: "0"}},
		{Name: "memo", TypeName: "str", Type: typesystem.STR,
			Default: model.ExprSource{Text: "null"}},
	}, nil)

	if errs := checker.Check(link(t, mod)); len(errs) != 0 {
		t.Errorf("widening defaults produced diagnostics: %v", errs)
	}
}

func TestCheckGuardNotBool(t *testing.T) {
	mod := invoiceModule([]*model.Field{
		{Name: "total", TypeName: "money", Type: typesystem.MONEY},
	}, []*model.Transition{
		{Name: "approve", From: "draft", To: "approved",
			Guard: model.ExprSource{Text: "total + 1", Line: 9, Column: 16}},
	})

	errs := checker.Check(link(t, mod))
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(errs), errs)
	}
	if errs[0].Code != diagnostics.ErrT002 {
		t.Errorf("code = %s, want %s", errs[0].Code, diagnostics.ErrT002)
	}
	if !strings.Contains(errs[0].Message, "guard of Invoice.approve") {
		t.Errorf("message %q does not name the guard", errs[0].Message)
	}
}

func TestCheckGuardUntypedFieldsPass(t *testing.T) {
	// Fields outside the context infer to ANY, which is accepted for
	// conditions rather than reported.
	mod := invoiceModule(nil, []*model.Transition{
		{Name: "close", From: "open", To: "closed",
			Guard: model.ExprSource{Text: "resolution"}},
	})

	if errs := checker.Check(link(t, mod)); len(errs) != 0 {
		t.Errorf("ANY-typed guard produced diagnostics: %v", errs)
	}
}

func TestCheckSyntaxErrors(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"lexical", `"unterminated`, diagnostics.ErrL001},
		{"syntactic", "1 +", diagnostics.ErrP001},
		{"trailing", "1 + 2 3", diagnostics.ErrP003},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mod := invoiceModule([]*model.Field{
				{Name: "total", TypeName: "money", Type: typesystem.MONEY,
					Default: model.ExprSource{Text: tc.text, Line: 3, Column: 18}},
			}, nil)

			errs := checker.Check(link(t, mod))
			if len(errs) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(errs), errs)
			}
			if errs[0].Code != tc.wantCode {
				t.Errorf("code = %s, want %s", errs[0].Code, tc.wantCode)
			}
			if errs[0].Severity != diagnostics.SeverityError {
				t.Errorf("severity = %s, want error", errs[0].Severity)
			}
		})
	}
}

func TestCheckRefContext(t *testing.T) {
	base := &model.Module{
		Name: "base",
		File: "base.bpm.yaml",
		Entities: []*model.Entity{{
			Name:   "Customer",
			Module: "base",
			Fields: []*model.Field{{Name: "balance", TypeName: "money", Type: typesystem.MONEY}},
		}},
	}
	billing := &model.Module{
		Name: "billing",
		File: "billing.bpm.yaml",
		Uses: []string{"base"},
		Entities: []*model.Entity{{
			Name:   "Invoice",
			Module: "billing",
			Fields: []*model.Field{
				{Name: "customer", TypeName: "ref", Type: typesystem.ANY, Ref: "Customer"},
				{Name: "total", TypeName: "money", Type: typesystem.MONEY,
					Default: model.ExprSource{Text: "customer.balance"}},
			},
		}},
	}

	if errs := checker.Check(link(t, base, billing)); len(errs) != 0 {
		t.Errorf("ref-path default produced diagnostics: %v", errs)
	}
}
