package symbols

import "neoc/internal/types"

// Scope is one lexical scope of name bindings: the module's global scope,
// or one function's parameter/local scope. Lookup walks outward through
// Parent, matching ordinary Python subset scoping (no block scopes).
//
// Grounded on the locals/localCount bookkeeping a statement compiler keeps
// during codegen, generalised into a value the analyser can push/pop
// independently of code generation.
type Scope struct {
	Parent *Scope

	vars    map[string]*Variable
	order   []string // insertion order, for deterministic slot assignment
	methods map[string]*Method
	events  map[string]*Event
}

// NewScope creates a scope nested inside parent. parent is nil for the
// module's global scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:  parent,
		vars:    map[string]*Variable{},
		methods: map[string]*Method{},
		events:  map[string]*Event{},
	}
}

// Declare binds id to a fresh Variable of the given type in this scope,
// returning it. A redeclaration replaces the previous binding and keeps
// that id's original position in Variables().
func (s *Scope) Declare(id string, t *types.Type) *Variable {
	if _, exists := s.vars[id]; !exists {
		s.order = append(s.order, id)
	}
	v := &Variable{ID: id, Type: t, Slot: -1}
	s.vars[id] = v
	return v
}

// DeclareMethod/DeclareEvent register callables visible from this scope
// outward — used for the module-level scope holding function and event
// definitions.
func (s *Scope) DeclareMethod(m *Method) { s.methods[m.ID] = m }
func (s *Scope) DeclareEvent(e *Event)   { s.events[e.ID] = e }

// Resolve walks this scope and its ancestors for id, returning the first
// match found (innermost wins) and whether anything was found.
func (s *Scope) Resolve(id string) (Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.vars[id]; ok {
			return v, true
		}
		if m, ok := sc.methods[id]; ok {
			return m, true
		}
		if e, ok := sc.events[id]; ok {
			return e, true
		}
	}
	return nil, false
}

// ResolveVariable is a narrowing convenience over Resolve for call sites
// that only accept a variable binding (e.g. an assignment target).
func (s *Scope) ResolveVariable(id string) (*Variable, bool) {
	sym, ok := s.Resolve(id)
	if !ok {
		return nil, false
	}
	v, ok := sym.(*Variable)
	return v, ok
}

// DeclaredInThisScope reports whether id was bound directly in s, ignoring
// ancestors — the analyser uses it to tell a reassignment of a name already
// bound in this function from a first binding that shadows an outer name.
func (s *Scope) DeclaredInThisScope(id string) bool {
	_, ok := s.vars[id]
	return ok
}

// Variables returns this scope's own variables in declaration order —
// the order the code generator uses to assign consecutive local slots.
func (s *Scope) Variables() []*Variable {
	out := make([]*Variable, len(s.order))
	for i, id := range s.order {
		out[i] = s.vars[id]
	}
	return out
}
