package pscal

import (
	"golang.org/x/text/cases"
)

// foldName case-folds an identifier; Pascal names are case-insensitive
func foldName(name string) string {
	return cases.Fold().String(name)
}

// TypeTable maps type names to their definition nodes
type TypeTable struct {
	types map[string]*Node
	order []string
}

// NewTypeTable creates an empty type table
func NewTypeTable() *TypeTable {
	return &TypeTable{types: make(map[string]*Node)}
}

// Define registers (or replaces) a named type
func (tt *TypeTable) Define(name string, def *Node) {
	key := foldName(name)
	if _, exists := tt.types[key]; !exists {
		tt.order = append(tt.order, name)
	}
	tt.types[key] = def
}

// Lookup finds a type definition by name
func (tt *TypeTable) Lookup(name string) *Node {
	if tt == nil {
		return nil
	}
	return tt.types[foldName(name)]
}

// Names returns type names in definition order
func (tt *TypeTable) Names() []string {
	return append([]string(nil), tt.order...)
}

// findEnumMember searches every enum type for a member name
func (tt *TypeTable) findEnumMember(member string) (*Node, int, bool) {
	if tt == nil {
		return nil, 0, false
	}
	for _, name := range tt.order {
		def := tt.types[foldName(name)]
		if ord, ok := enumOrdinalOf(def, member); ok {
			return def, ord, true
		}
	}
	return nil, 0, false
}

// Scope is one flat symbol table
type Scope struct {
	Name    string
	symbols map[string]*Symbol
	order   []string
}

// NewScope creates an empty scope
func NewScope(name string) *Scope {
	return &Scope{Name: name, symbols: make(map[string]*Symbol)}
}

// Insert adds a symbol; an existing symbol of the same name is returned unchanged
func (s *Scope) Insert(sym *Symbol) (*Symbol, bool) {
	key := foldName(sym.Name)
	if existing, ok := s.symbols[key]; ok {
		return existing, false
	}
	s.symbols[key] = sym
	s.order = append(s.order, key)
	return sym, true
}

// Lookup finds a symbol in this scope only
func (s *Scope) Lookup(name string) *Symbol {
	if s == nil {
		return nil
	}
	return s.symbols[foldName(name)]
}

// Symbols returns the scope's symbols in declaration order
func (s *Scope) Symbols() []*Symbol {
	if s == nil {
		return nil
	}
	out := make([]*Symbol, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.symbols[key])
	}
	return out
}

// Len returns the number of symbols
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Release tears down every value the scope owns. Pointees are not freed.
func (s *Scope) Release() {
	if s == nil {
		return
	}
	for _, key := range s.order {
		if sym := s.symbols[key]; sym != nil && sym.Value != nil {
			FreeValue(sym.Value)
		}
	}
	s.symbols = make(map[string]*Symbol)
	s.order = nil
}

// ScopeChain is the explicit set of live scopes: the global scope, at most one
// active local scope and the type table. It is passed to every operation that
// resolves names.
type ScopeChain struct {
	Global *Scope
	Local  *Scope
	Types  *TypeTable
}

// NewScopeChain creates a chain with an empty global scope and no local scope
func NewScopeChain() *ScopeChain {
	return &ScopeChain{
		Global: NewScope("global"),
		Types:  NewTypeTable(),
	}
}

// PushLocal activates a fresh local scope, releasing any previous one
func (sc *ScopeChain) PushLocal(name string) *Scope {
	if sc.Local != nil {
		sc.Local.Release()
	}
	sc.Local = NewScope(name)
	return sc.Local
}

// PopLocal releases the active local scope
func (sc *ScopeChain) PopLocal() {
	if sc.Local != nil {
		sc.Local.Release()
		sc.Local = nil
	}
}

// Current returns the scope new declarations go into
func (sc *ScopeChain) Current() *Scope {
	if sc.Local != nil {
		return sc.Local
	}
	return sc.Global
}

// Lookup resolves a name, local scope first
func (sc *ScopeChain) Lookup(name string) *Symbol {
	if sym := sc.Local.Lookup(name); sym != nil {
		return sym
	}
	return sc.Global.Lookup(name)
}

// LookupType resolves a type name
func (sc *ScopeChain) LookupType(name string) *Node {
	if sc == nil {
		return nil
	}
	return sc.Types.Lookup(name)
}

// Live returns every scope whose symbols are reachable right now
func (sc *ScopeChain) Live() []*Scope {
	scopes := []*Scope{sc.Global}
	if sc.Local != nil {
		scopes = append(scopes, sc.Local)
	}
	return scopes
}
