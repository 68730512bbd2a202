// Package scope resolves identifier references to their declarations.
//
// Scopes are created by the program, functions, blocks, for loops and
// catch clauses. `var` declarations hoist to the closest function or
// program scope; `let` and `const` stay in the block that contains them.
// References resolve outwards to the nearest declaration.
package scope

import "github.com/wharflab/sentinel/internal/ast"

// Type identifies what created a scope.
type Type int

const (
	TypeGlobal Type = iota
	TypeFunction
	TypeBlock
	TypeFor
	TypeCatch
)

// DefType identifies what kind of declaration introduced a name.
type DefType int

const (
	DefParameter DefType = iota
	DefVariable
	DefFunctionName
	DefCatchParameter
)

func (d DefType) String() string {
	switch d {
	case DefParameter:
		return "Parameter"
	case DefVariable:
		return "Variable"
	case DefFunctionName:
		return "FunctionName"
	case DefCatchParameter:
		return "CatchClause"
	default:
		return "Unknown"
	}
}

// Definition is one declaration of a variable.
type Definition struct {
	Type DefType
	Name *ast.Identifier

	// Parameter is set for DefParameter.
	Parameter *ast.Parameter
	// Declarator is set for DefVariable declared through var/let/const.
	Declarator *ast.Declarator
	// DeclKind is "var", "let" or "const" for DefVariable.
	DeclKind string
	// Node is the declaring node (parameter, declarator, function, catch
	// clause or for-in statement).
	Node ast.Node
}

// Variable is a named binding within a scope.
type Variable struct {
	Name  string
	Defs  []Definition
	Scope *Scope
	// Writes counts assignments and updates to the variable after its
	// declaration.
	Writes int
}

// Scope is a lexical scope.
type Scope struct {
	Type      Type
	Node      ast.Node
	Upper     *Scope
	Variables map[string]*Variable
}

// Lookup returns the variable declared directly in s, or nil.
func (s *Scope) Lookup(name string) *Variable {
	return s.Variables[name]
}

func (s *Scope) define(name *ast.Identifier, def Definition) {
	v := s.Variables[name.Name]
	if v == nil {
		v = &Variable{Name: name.Name, Scope: s}
		s.Variables[name.Name] = v
	}
	def.Name = name
	v.Defs = append(v.Defs, def)
}

// functionScope returns the closest enclosing function or global scope.
func (s *Scope) functionScope() *Scope {
	for cur := s; cur != nil; cur = cur.Upper {
		if cur.Type == TypeFunction || cur.Type == TypeGlobal {
			return cur
		}
	}
	return s
}

// Manager holds the scopes of one program.
type Manager struct {
	global *Scope
	scopes map[ast.Node]*Scope
}

// Global returns the program scope.
func (m *Manager) Global() *Scope {
	return m.global
}

// Acquire returns the scope created by n, or nil.
func (m *Manager) Acquire(n ast.Node) *Scope {
	return m.scopes[n]
}

// ScopeOf returns the innermost scope containing n.
func (m *Manager) ScopeOf(n ast.Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent() {
		if s := m.scopes[cur]; s != nil {
			return s
		}
	}
	return m.global
}

// Resolve returns the variable an identifier refers to, searching from the
// identifier's scope outwards. It returns nil for undeclared names.
func (m *Manager) Resolve(id *ast.Identifier) *Variable {
	for s := m.ScopeOf(id); s != nil; s = s.Upper {
		if v := s.Lookup(id.Name); v != nil {
			return v
		}
	}
	return nil
}

// Analyze builds the scopes of prog. The tree must be linked.
func Analyze(prog *ast.Program) *Manager {
	m := &Manager{scopes: make(map[ast.Node]*Scope)}
	m.global = m.newScope(TypeGlobal, prog, nil)

	m.declare(prog, m.global)
	m.countWrites(prog)
	return m
}

func (m *Manager) newScope(typ Type, n ast.Node, upper *Scope) *Scope {
	s := &Scope{Type: typ, Node: n, Upper: upper, Variables: make(map[string]*Variable)}
	m.scopes[n] = s
	return s
}

// declare walks n, creating scopes and recording declarations.
func (m *Manager) declare(n ast.Node, cur *Scope) {
	switch v := n.(type) {
	case *ast.Function:
		if v.Name != nil && v.Kind() == ast.KindFunctionDeclaration {
			cur.define(v.Name, Definition{Type: DefFunctionName, Node: v})
		}
		fs := m.newScope(TypeFunction, v, cur)
		if v.Name != nil && v.Kind() == ast.KindFunctionExpression {
			fs.define(v.Name, Definition{Type: DefFunctionName, Node: v})
		}
		for _, p := range v.Params {
			for _, id := range bindingNames(p.Pattern) {
				fs.define(id, Definition{Type: DefParameter, Parameter: p, Node: p})
			}
			if p.Default != nil {
				m.declare(p.Default, fs)
			}
		}
		if body, ok := v.Body.(*ast.Block); ok {
			// the body block shares the function scope
			for _, stmt := range body.Body {
				m.declare(stmt, fs)
			}
		} else if v.Body != nil {
			m.declare(v.Body, fs)
		}
		return

	case *ast.Block:
		bs := m.newScope(TypeBlock, v, cur)
		for _, stmt := range v.Body {
			m.declare(stmt, bs)
		}
		return

	case *ast.For:
		cur = m.newScope(TypeFor, v, cur)

	case *ast.ForIn:
		fs := m.newScope(TypeFor, v, cur)
		if v.DeclKind != "" {
			target := fs
			if v.DeclKind == "var" {
				target = cur.functionScope()
			}
			for _, id := range bindingNames(v.Left) {
				target.define(id, Definition{Type: DefVariable, DeclKind: v.DeclKind, Node: v})
			}
		}
		cur = fs

	case *ast.Catch:
		cs := m.newScope(TypeCatch, v, cur)
		for _, id := range bindingNames(v.Param) {
			cs.define(id, Definition{Type: DefCatchParameter, Node: v})
		}
		cur = cs

	case *ast.VarDecl:
		target := cur
		if v.DeclKind == "var" {
			target = cur.functionScope()
		}
		for _, d := range v.Declarators {
			for _, id := range bindingNames(d.Name) {
				target.define(id, Definition{
					Type:       DefVariable,
					Declarator: d,
					DeclKind:   v.DeclKind,
					Node:       d,
				})
			}
		}
	}

	for _, c := range n.Children() {
		m.declare(c, cur)
	}
}

// countWrites records assignments and updates against resolved variables.
func (m *Manager) countWrites(prog *ast.Program) {
	ast.Inspect(prog, func(n ast.Node) bool {
		var target ast.Node
		switch v := n.(type) {
		case *ast.Assignment:
			target = v.Left
		case *ast.Update:
			target = v.Argument
		default:
			return true
		}
		for _, id := range bindingNames(target) {
			if variable := m.Resolve(id); variable != nil {
				variable.Writes++
			}
		}
		return true
	})
}

// bindingNames returns the identifiers bound by a declaration target,
// descending into destructuring patterns.
func bindingNames(n ast.Node) []*ast.Identifier {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{v}
	case *ast.Generic:
		switch v.Syntax {
		case "pair_pattern":
			// {key: value}: only the value binds
			if len(v.Nodes) > 0 {
				return bindingNames(v.Nodes[len(v.Nodes)-1])
			}
			return nil
		case "assignment_pattern", "object_assignment_pattern":
			if len(v.Nodes) > 0 {
				return bindingNames(v.Nodes[0])
			}
			return nil
		case "object_pattern", "array_pattern", "rest_pattern":
			var out []*ast.Identifier
			for _, c := range v.Nodes {
				out = append(out, bindingNames(c)...)
			}
			return out
		}
	}
	return nil
}
