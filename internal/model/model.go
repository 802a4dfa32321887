// Package model holds the intermediate representation shared by the loader,
// linker and checker: modules, entities, fields and the expression sources
// attached to them. Values are built once by the surface loader and never
// mutated afterwards.
package model

import "github.com/blueprintdsl/blueprint/internal/typesystem"

// ExprSource is the raw text of a default, visibility or guard expression
// together with its position in the fragment file. Line 0 means the
// position is unknown.
type ExprSource struct {
	Text   string
	Line   int
	Column int
}

// IsZero reports whether no expression was declared.
func (s ExprSource) IsZero() bool { return s.Text == "" }

// Field is one declared field of an entity.
type Field struct {
	Name     string
	TypeName string              // declared type name as written
	Type     typesystem.ExprType // resolved declared type; ANY when untyped or a reference
	Ref      string              // target entity name for reference fields
	Default  ExprSource          // computed default expression
	Visible  ExprSource          // visibility condition
}

// IsRef reports whether the field references another entity.
func (f *Field) IsRef() bool { return f.Ref != "" }

// Transition is one workflow transition of an entity, with an optional
// guard expression.
type Transition struct {
	Name  string
	From  string
	To    string
	Guard ExprSource
}

// Entity is a declared business entity.
type Entity struct {
	Name        string
	Module      string // owning module name
	Fields      []*Field
	Transitions []*Transition
}

// Field returns the named field, or nil.
func (e *Entity) Field(name string) *Field {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Module is one independently parsed unit of declarations. Name is globally
// unique; Uses lists the modules it depends on.
type Module struct {
	Name     string
	File     string
	Uses     []string
	Entities []*Entity
}
