// Package staticvalue proves that an expression evaluates to a constant
// number without running it.
//
// Only literals, signed literals and identifiers bound once to such a
// value are understood. Arithmetic and other constant folding is not
// attempted.
package staticvalue

import (
	"github.com/wharflab/sentinel/internal/ast"
	"github.com/wharflab/sentinel/internal/scope"
)

// maxDepth bounds how many identifier hops are followed.
const maxDepth = 8

// Number returns the value of n when it is provably a constant number.
// The scope manager may be nil, in which case identifiers are not followed.
func Number(n ast.Node, m *scope.Manager) (float64, bool) {
	return number(n, m, 0)
}

// IsNumber reports whether n is provably a constant number.
func IsNumber(n ast.Node, m *scope.Manager) bool {
	_, ok := Number(n, m)
	return ok
}

func number(n ast.Node, m *scope.Manager, depth int) (float64, bool) {
	if n == nil || depth > maxDepth {
		return 0, false
	}
	switch v := n.(type) {
	case *ast.Literal:
		if v.Type == ast.LiteralNumber {
			return v.Number, true
		}
	case *ast.Unary:
		switch v.Operator {
		case "-":
			if lit, ok := v.Argument.(*ast.Literal); ok && lit.Type == ast.LiteralNumber {
				return -lit.Number, true
			}
		case "+":
			if lit, ok := v.Argument.(*ast.Literal); ok && lit.Type == ast.LiteralNumber {
				return lit.Number, true
			}
		}
	case *ast.Identifier:
		if m == nil {
			return 0, false
		}
		init := constantInit(m.Resolve(v))
		if init == nil {
			return 0, false
		}
		return number(init, m, depth+1)
	}
	return 0, false
}

// constantInit returns the initializer of a variable that has exactly one
// definition and is never reassigned.
func constantInit(v *scope.Variable) ast.Node {
	if v == nil || len(v.Defs) != 1 {
		return nil
	}
	def := v.Defs[0]
	if def.Type != scope.DefVariable || def.Declarator == nil {
		return nil
	}
	if def.DeclKind != "const" && v.Writes > 0 {
		return nil
	}
	if _, ok := def.Declarator.Name.(*ast.Identifier); !ok {
		return nil
	}
	return def.Declarator.Init
}
