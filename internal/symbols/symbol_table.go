package symbols

import "github.com/blueprintdsl/blueprint/internal/model"

// Symbol is one globally declared entity and the module that declared it.
type Symbol struct {
	Name   string
	Entity *model.Entity
	Module string
}

// SymbolTable is the flat global name -> definition map built during
// linking. Entity names are unique across the whole table; there is no
// per-module namespacing. A table is built fresh by each link pass.
type SymbolTable struct {
	store map[string]Symbol
	names []string // insertion order, for deterministic iteration
}

func New() *SymbolTable {
	return &SymbolTable{store: make(map[string]Symbol)}
}

// Define registers a symbol. It reports false when the name is already
// taken, returning the existing symbol.
func (st *SymbolTable) Define(sym Symbol) (Symbol, bool) {
	if existing, ok := st.store[sym.Name]; ok {
		return existing, false
	}
	st.store[sym.Name] = sym
	st.names = append(st.names, sym.Name)
	return sym, true
}

// Resolve looks a name up.
func (st *SymbolTable) Resolve(name string) (Symbol, bool) {
	sym, ok := st.store[name]
	return sym, ok
}

// Names returns all defined names in definition order.
func (st *SymbolTable) Names() []string {
	out := make([]string, len(st.names))
	copy(out, st.names)
	return out
}

// Len returns the number of defined symbols.
func (st *SymbolTable) Len() int { return len(st.store) }
