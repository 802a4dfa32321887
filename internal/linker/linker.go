// Package linker merges independently parsed modules into one validated
// application model: dependency resolution with cycle detection, global
// symbol table construction, and cross-reference validation.
package linker

import (
	"fmt"
	"strings"

	"github.com/blueprintdsl/blueprint/internal/model"
	"github.com/blueprintdsl/blueprint/internal/symbols"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

// LinkError is a structural linking failure: a circular dependency, an
// undefined uses target, or a duplicate entity name. Any LinkError aborts
// the whole link pass; no partial application model is produced.
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string { return e.Message }

// Application is the fully linked aggregate of all modules: modules and
// entities in dependency order plus the global symbol table. Downstream
// consumers treat it as read-only.
type Application struct {
	Modules  []*model.Module
	Entities []*model.Entity
	Symbols  *symbols.SymbolTable
}

// Link runs the full three-phase pass: resolve dependencies, build the
// symbol table, validate references. Structural failures return a
// *LinkError and no model; reference violations never fail the link and
// are returned as a complete list of messages for the caller's policy.
func Link(mods []*model.Module) (*Application, []string, error) {
	ordered, err := ResolveDependencies(mods)
	if err != nil {
		return nil, nil, err
	}
	table, err := BuildSymbolTable(ordered)
	if err != nil {
		return nil, nil, err
	}

	app := &Application{Modules: ordered, Symbols: table}
	for _, mod := range ordered {
		app.Entities = append(app.Entities, mod.Entities...)
	}

	return app, ValidateReferences(app), nil
}

// ResolveDependencies orders mods so that every module comes after all
// modules it uses. It fails when a uses target is missing from the input
// set or when the dependency graph has a cycle of any length.
func ResolveDependencies(mods []*model.Module) ([]*model.Module, error) {
	byName := make(map[string]*model.Module, len(mods))
	for _, mod := range mods {
		byName[mod.Name] = mod
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(mods))
	ordered := make([]*model.Module, 0, len(mods))
	var stack []string

	var visit func(mod *model.Module) error
	visit = func(mod *model.Module) error {
		state[mod.Name] = visiting
		stack = append(stack, mod.Name)

		for _, use := range mod.Uses {
			dep, ok := byName[use]
			if !ok {
				return &LinkError{Message: fmt.Sprintf(
					"Module '%s' uses module '%s' which is not defined", mod.Name, use)}
			}
			switch state[dep.Name] {
			case done:
			case visiting:
				from := cycleStart(stack, dep.Name)
				cycle := append(append([]string{}, stack[from:]...), dep.Name)
				return &LinkError{Message: fmt.Sprintf(
					"Circular dependency detected: %s", strings.Join(cycle, " -> "))}
			default:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[mod.Name] = done
		ordered = append(ordered, mod)
		return nil
	}

	for _, mod := range mods {
		if state[mod.Name] == unvisited {
			if err := visit(mod); err != nil {
				return nil, err
			}
		}
	}
	return ordered, nil
}

func cycleStart(stack []string, name string) int {
	for i, n := range stack {
		if n == name {
			return i
		}
	}
	return 0
}

// BuildSymbolTable registers every entity of every module into one flat
// global table, walking modules in dependency order. Declaring the same
// entity name in two modules is fatal; there is no module-scoped shadowing.
func BuildSymbolTable(ordered []*model.Module) (*symbols.SymbolTable, error) {
	table := symbols.New()
	for _, mod := range ordered {
		for _, entity := range mod.Entities {
			sym := symbols.Symbol{Name: entity.Name, Entity: entity, Module: mod.Name}
			if existing, ok := table.Define(sym); !ok {
				return nil, &LinkError{Message: fmt.Sprintf(
					"Duplicate entity '%s' declared in module '%s' and module '%s'",
					entity.Name, existing.Module, mod.Name)}
			}
		}
	}
	return table, nil
}

// ValidateReferences checks every reference-typed field against the symbol
// table. It never fails: all violations found in the pass are collected so
// one run surfaces every broken reference at once. The list is empty when
// all references resolve.
func ValidateReferences(app *Application) []string {
	violations := []string{}
	for _, entity := range app.Entities {
		for _, field := range entity.Fields {
			if !field.IsRef() {
				continue
			}
			if _, ok := app.Symbols.Resolve(field.Ref); !ok {
				violations = append(violations, fmt.Sprintf(
					"Entity '%s' field '%s' references unknown entity '%s'",
					entity.Name, field.Name, field.Ref))
			}
		}
	}
	return violations
}

// FieldContext builds the field-type context for expressions attached to
// entity: every declared field by name, plus one level of traversal through
// reference fields (customer.name) into the referenced entity's fields.
func (app *Application) FieldContext(entity *model.Entity) typesystem.FieldTypeContext {
	ctx := typesystem.FieldTypeContext{}
	for _, field := range entity.Fields {
		if field.IsRef() {
			target, ok := app.Symbols.Resolve(field.Ref)
			if !ok {
				continue
			}
			for _, tf := range target.Entity.Fields {
				if !tf.IsRef() {
					ctx[field.Name+"."+tf.Name] = tf.Type
				}
			}
			continue
		}
		ctx[field.Name] = field.Type
	}
	return ctx
}
