package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blueprintdsl/blueprint/internal/loader"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

const billingFragment = `module: billing
uses: [base]
entities:
  - name: Invoice
    fields:
      - name: customer
        type: ref
        target: Customer
      - name: subtotal
        type: money
      - name: total
        type: money
        default: subtotal * 1.2
        visible: subtotal > 0
    transitions:
      - name: approve
        from: draft
        to: approved
        guard: total > 0
`

func TestLoadBytes(t *testing.T) {
	mod, err := loader.LoadBytes("billing.bpm.yaml", []byte(billingFragment))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	if mod.Name != "billing" || mod.File != "billing.bpm.yaml" {
		t.Errorf("module = %s (%s), want billing (billing.bpm.yaml)", mod.Name, mod.File)
	}
	if len(mod.Uses) != 1 || mod.Uses[0] != "base" {
		t.Errorf("uses = %v, want [base]", mod.Uses)
	}
	if len(mod.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(mod.Entities))
	}

	entity := mod.Entities[0]
	if entity.Name != "Invoice" || entity.Module != "billing" {
		t.Errorf("entity = %s in %s, want Invoice in billing", entity.Name, entity.Module)
	}

	customer := entity.Field("customer")
	if customer == nil || !customer.IsRef() || customer.Ref != "Customer" {
		t.Errorf("customer field = %+v, want ref to Customer", customer)
	}
	if customer.Type != typesystem.ANY {
		t.Errorf("customer type = %s, want ANY", customer.Type)
	}

	total := entity.Field("total")
	if total == nil {
		t.Fatal("total field missing")
	}
	if total.Type != typesystem.MONEY {
		t.Errorf("total type = %s, want MONEY", total.Type)
	}
	if total.Default.Text != "subtotal * 1.2" {
		t.Errorf("default text = %q", total.Default.Text)
	}
	if total.Visible.Text != "subtotal > 0" {
		t.Errorf("visible text = %q", total.Visible.Text)
	}

	if len(entity.Transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(entity.Transitions))
	}
	tr := entity.Transitions[0]
	if tr.Name != "approve" || tr.From != "draft" || tr.To != "approved" {
		t.Errorf("transition = %+v", tr)
	}
	if tr.Guard.Text != "total > 0" {
		t.Errorf("guard text = %q", tr.Guard.Text)
	}
}

func TestLoadBytesExprPositions(t *testing.T) {
	mod, err := loader.LoadBytes("billing.bpm.yaml", []byte(billingFragment))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	def := mod.Entities[0].Field("total").Default
	// "default: subtotal * 1.2" sits on line 13 of the fragment, with the
	// expression starting after the key.
	if def.Line != 13 {
		t.Errorf("default line = %d, want 13", def.Line)
	}
	if def.Column != 18 {
		t.Errorf("default column = %d, want 18", def.Column)
	}
}

func TestLoadBytesErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantSub string
	}{
		{
			"missing module name",
			"entities:\n  - name: Invoice\n",
			"missing module name",
		},
		{
			"entity without name",
			"module: billing\nentities:\n  - fields: []\n",
			"entity without a name",
		},
		{
			"field without name",
			"module: billing\nentities:\n  - name: Invoice\n    fields:\n      - type: int\n",
			"field without a name",
		},
		{
			"ref without target",
			"module: billing\nentities:\n  - name: Invoice\n    fields:\n      - name: customer\n        type: ref\n",
			"has no target",
		},
		{
			"non-scalar expression",
			"module: billing\nentities:\n  - name: Invoice\n    fields:\n      - name: total\n        type: money\n        default: [1, 2]\n",
			"expression must be a scalar",
		},
		{
			"malformed yaml",
			"module: [unclosed\n",
			"billing.bpm.yaml",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.LoadBytes("billing.bpm.yaml", []byte(tc.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not contain %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("base.bpm.yaml", "module: base\nentities:\n  - name: Customer\n    fields:\n      - name: name\n        type: str\n")
	write("billing.bpm.yaml", billingFragment)
	write("notes.txt", "not a fragment")

	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "crm.bpm.yml"), []byte("module: crm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mods, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	var names []string
	for _, mod := range mods {
		names = append(names, mod.Name)
	}
	// Path order: base, billing, then sub/crm.
	want := []string{"base", "billing", "crm"}
	if len(names) != len(want) {
		t.Fatalf("modules = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("modules = %v, want %v", names, want)
			break
		}
	}
}

func TestLoadDirDuplicateModule(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.bpm.yaml", "b.bpm.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("module: billing\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := loader.LoadDir(dir)
	if err == nil {
		t.Fatal("expected duplicate module error, got nil")
	}
	if !strings.Contains(err.Error(), "module 'billing' declared in both") {
		t.Errorf("error = %q", err)
	}
}

func TestLoadDirOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.bpm.yaml")
	if err := os.WriteFile(path, []byte("module: base\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	mods, err := loader.LoadDirOverlay(dir, map[string][]byte{
		path: []byte("module: base\nentities:\n  - name: Customer\n"),
	})
	if err != nil {
		t.Fatalf("LoadDirOverlay failed: %v", err)
	}
	if len(mods) != 1 || len(mods[0].Entities) != 1 {
		t.Fatalf("overlay content not used: %+v", mods)
	}
	if mods[0].Entities[0].Name != "Customer" {
		t.Errorf("entity = %s, want Customer", mods[0].Entities[0].Name)
	}
}
