package sentinel

import "github.com/wharflab/sentinel/internal/ast"

// booleanAncestor climbs from n through `!` operators and single-argument
// Boolean() calls. It returns the outermost node reached and whether an odd
// number of negations was crossed.
func booleanAncestor(n ast.Node) (ast.Node, bool) {
	negated := false
	for {
		switch {
		case isLogicNotArgument(n):
			negated = !negated
			n = n.Parent()
		case isBooleanCallArgument(n):
			n = n.Parent()
		default:
			return n, negated
		}
	}
}

// isBooleanNode reports whether only the truthiness of n is observed.
func isBooleanNode(n ast.Node) bool {
	for {
		if isLogicNot(n) || isLogicNotArgument(n) || isBooleanCall(n) || isBooleanCallArgument(n) {
			return true
		}
		switch p := n.Parent().(type) {
		case *ast.If:
			return p.Test == n
		case *ast.Conditional:
			return p.Test == n
		case *ast.While:
			return p.Test == n
		case *ast.DoWhile:
			return p.Test == n
		case *ast.For:
			return p.Test == n
		case *ast.Logical:
			if !isAndOr(p) {
				return false
			}
			n = p
		default:
			return false
		}
	}
}

func isAndOr(n ast.Node) bool {
	l, ok := n.(*ast.Logical)
	return ok && (l.Operator == "&&" || l.Operator == "||")
}

func isLogicNot(n ast.Node) bool {
	u, ok := n.(*ast.Unary)
	return ok && u.Operator == "!"
}

func isLogicNotArgument(n ast.Node) bool {
	u, ok := n.Parent().(*ast.Unary)
	return ok && u.Operator == "!" && u.Argument == n
}

// isBooleanCall matches `Boolean(x)` with exactly one argument.
func isBooleanCall(n ast.Node) bool {
	call, ok := n.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return false
	}
	id, ok := call.Callee.(*ast.Identifier)
	return ok && id.Name == "Boolean"
}

func isBooleanCallArgument(n ast.Node) bool {
	p := n.Parent()
	if p == nil || !isBooleanCall(p) {
		return false
	}
	return p.(*ast.Call).Args[0] == n
}
