package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// MethodInfo is the checked signature of one method.
type MethodInfo struct {
	Name       string
	Params     []*Param
	ReturnType Type
	Decl       *MethodDecl // nil for the synthesized main
}

// ClassInfo records the members of one class.
type ClassInfo struct {
	Name    string
	Fields  map[string]Type
	Methods map[string]*MethodInfo
}

func newClassInfo(name string) *ClassInfo {
	return &ClassInfo{
		Name:    name,
		Fields:  make(map[string]Type),
		Methods: make(map[string]*MethodInfo),
	}
}

// SymbolTable holds every class known to one analysis run.
type SymbolTable struct {
	classes map[string]*ClassInfo
	order   []string // registration order, for deterministic dumps
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{classes: make(map[string]*ClassInfo)}
}

// DefineClass registers an empty class record. It reports false, and leaves
// the table unchanged, if the name is taken.
func (s *SymbolTable) DefineClass(name string) (*ClassInfo, bool) {
	if _, ok := s.classes[name]; ok {
		return nil, false
	}
	info := newClassInfo(name)
	s.classes[name] = info
	s.order = append(s.order, name)
	return info, true
}

// LookupClass returns the class record and whether it was found.
func (s *SymbolTable) LookupClass(name string) (*ClassInfo, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.order) == 0 {
		sb.WriteString("Classes: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Classes:\n")
	for _, name := range s.order {
		c := s.classes[name]
		fmt.Fprintf(&sb, "  class %s\n", name)

		fields := make([]string, 0, len(c.Fields))
		for f := range c.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(&sb, "    field  %-16s %s\n", f, c.Fields[f])
		}

		methods := make([]string, 0, len(c.Methods))
		for m := range c.Methods {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		for _, m := range methods {
			info := c.Methods[m]
			params := make([]string, len(info.Params))
			for i, p := range info.Params {
				params[i] = p.String()
			}
			fmt.Fprintf(&sb, "    method %-16s (%s) %s\n", m, strings.Join(params, ", "), info.ReturnType)
		}
	}
	return sb.String()
}

// Scope is the set of locals and parameters visible in one region of a
// method body. Nested regions get a Copy, never a shared reference, so a
// declaration in one branch is invisible to its siblings.
type Scope struct {
	vars map[string]Type
}

func NewScope() *Scope {
	return &Scope{vars: make(map[string]Type)}
}

// Declare adds name to this scope. It reports false if the name is already
// declared in this same scope object.
func (s *Scope) Declare(name string, t Type) bool {
	if _, ok := s.vars[name]; ok {
		return false
	}
	s.vars[name] = t
	return true
}

// Lookup finds name in this scope only; fields are resolved by the caller.
func (s *Scope) Lookup(name string) (Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

// Copy returns an independent scope with the same bindings.
func (s *Scope) Copy() *Scope {
	c := &Scope{vars: make(map[string]Type, len(s.vars))}
	for k, v := range s.vars {
		c.vars[k] = v
	}
	return c
}

// Len is the number of bindings in the scope.
func (s *Scope) Len() int { return len(s.vars) }
