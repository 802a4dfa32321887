package typesystem_test

import (
	"testing"

	"github.com/blueprintdsl/blueprint/internal/ast"
	"github.com/blueprintdsl/blueprint/internal/lexer"
	"github.com/blueprintdsl/blueprint/internal/parser"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

func mustParse(t *testing.T, input string) ast.Expr {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", input, err)
	}
	expr, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return expr
}

func TestInfer(t *testing.T) {
	ctx := typesystem.FieldTypeContext{
		"box1":       typesystem.INT,
		"box2":       typesystem.INT,
		"ratio":      typesystem.FLOAT,
		"total":      typesystem.MONEY,
		"name":       typesystem.STR,
		"suffix":     typesystem.STR,
		"active":     typesystem.BOOL,
		"due_date":   typesystem.DATE,
		"created_at": typesystem.DATETIME,
		"grace":      typesystem.DURATION,
	}

	testCases := []struct {
		name  string
		input string
		want  typesystem.ExprType
	}{
		{"int_literal", "5", typesystem.INT},
		{"float_literal", "2.5", typesystem.FLOAT},
		{"string_literal", `"x"`, typesystem.STR},
		{"bool_literal", "true", typesystem.BOOL},
		{"null_literal", "null", typesystem.NULL},
		{"duration_literal", "5d", typesystem.DURATION},

		{"field_known", "box1", typesystem.INT},
		{"field_unknown", "mystery", typesystem.ANY},
		{"dotted_unknown", "customer.name", typesystem.ANY},

		{"int_plus_int", "box1 + box2", typesystem.INT},
		{"int_plus_float", "box1 + ratio", typesystem.FLOAT},
		{"float_plus_int", "ratio + box2", typesystem.FLOAT},
		{"int_div_int", "box1 / box2", typesystem.FLOAT},
		{"int_mod_int", "box1 % box2", typesystem.INT},
		{"money_contagion_add", "total + box1", typesystem.MONEY},
		{"money_contagion_mul", "box1 * total", typesystem.MONEY},
		{"money_div", "total / box1", typesystem.MONEY},
		{"str_concat", "name + suffix", typesystem.STR},
		{"str_plus_int_unresolvable", "name + box1", typesystem.ANY},

		{"date_minus_date", "due_date - due_date", typesystem.DURATION},
		{"datetime_minus_datetime", "created_at - created_at", typesystem.DURATION},
		{"date_plus_duration", "due_date + 5d", typesystem.DATE},
		{"date_minus_duration", "due_date - grace", typesystem.DATE},
		{"duration_plus_datetime", "grace + created_at", typesystem.DATETIME},
		{"date_minus_datetime_unresolvable", "due_date - created_at", typesystem.ANY},

		{"any_operand_poisons", "mystery + box1", typesystem.ANY},

		{"comparison_is_bool", "box1 < box2", typesystem.BOOL},
		{"comparison_mixed_is_bool", "name >= box1", typesystem.BOOL},
		{"equality_is_bool", "due_date == due_date", typesystem.BOOL},
		{"is_is_bool", "active is true", typesystem.BOOL},
		{"and_is_bool", "box1 and name", typesystem.BOOL},
		{"or_is_bool", "active or mystery", typesystem.BOOL},
		{"in_is_bool", `name in ["a", "b"]`, typesystem.BOOL},

		{"not_is_bool", "not box1", typesystem.BOOL},
		{"negation_preserves_int", "-box1", typesystem.INT},
		{"negation_preserves_money", "-total", typesystem.MONEY},
		{"negation_preserves_any", "-mystery", typesystem.ANY},

		{"today", "today()", typesystem.DATE},
		{"now", "now()", typesystem.DATETIME},
		{"days_until", "days_until(due_date)", typesystem.INT},
		{"days_since", "days_since(due_date)", typesystem.INT},
		{"len", "len(name)", typesystem.INT},
		{"concat", "concat(name, suffix)", typesystem.STR},
		{"coalesce_any", "coalesce(box1, box2)", typesystem.ANY},
		{"abs_numeric_first_arg", "abs(total)", typesystem.MONEY},
		{"abs_non_numeric", "abs(name)", typesystem.ANY},
		{"round_numeric_first_arg", "round(ratio)", typesystem.FLOAT},
		{"min_first_arg", "min(box1, ratio)", typesystem.INT},
		{"max_first_arg", "max(due_date, due_date)", typesystem.DATE},
		{"unknown_function", "frobnicate(box1)", typesystem.ANY},

		{"conditional_then_branch_only", `if active: box1 else: name`, typesystem.INT},
		{"conditional_then_any", `if active: mystery else: box1`, typesystem.ANY},
		{"conditional_elif_ignored", `if active: name elif active: box1 else: due_date`, typesystem.STR},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expr := mustParse(t, tc.input)
			if got := typesystem.Infer(expr, ctx); got != tc.want {
				t.Errorf("Infer(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestInferNilContext(t *testing.T) {
	expr := mustParse(t, "a + b")
	if got := typesystem.Infer(expr, nil); got != typesystem.ANY {
		t.Errorf("Infer with nil context = %s, want any", got)
	}
}

func TestInferDeterministic(t *testing.T) {
	ctx := typesystem.FieldTypeContext{"a": typesystem.INT}
	expr := mustParse(t, "if a > 0: a * 2 else: 0")
	first := typesystem.Infer(expr, ctx)
	for i := 0; i < 10; i++ {
		if got := typesystem.Infer(expr, ctx); got != first {
			t.Fatalf("inference not deterministic: %s then %s", first, got)
		}
	}
}
