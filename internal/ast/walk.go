package ast

// Link sets the parent of every node reachable from root.
func Link(root Node) {
	Inspect(root, func(n Node) bool {
		for _, c := range n.Children() {
			c.base().parent = n
		}
		return true
	})
}

// Inspect traverses the tree in document order. Children of n are skipped
// when f returns false.
func Inspect(root Node, f func(Node) bool) {
	if root == nil || !f(root) {
		return
	}
	for _, c := range root.Children() {
		Inspect(c, f)
	}
}

// Visitor receives enter and exit events from Walk.
type Visitor interface {
	Enter(n Node)
	Exit(n Node)
}

// Walk visits every node in document order, calling Enter before the
// children of a node and Exit after them.
func Walk(root Node, v Visitor) {
	if root == nil {
		return
	}
	v.Enter(root)
	for _, c := range root.Children() {
		Walk(c, v)
	}
	v.Exit(root)
}

// IsFunction reports whether n introduces a function scope.
func IsFunction(n Node) bool {
	switch n.Kind() {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethod:
		return true
	}
	return false
}

// WrapParens records one more pair of parentheses around n. outer is the
// range of that pair, including the parentheses themselves.
func WrapParens(n Node, outer Range) {
	b := n.base()
	b.ParenCount++
	b.ParenSpan = outer
}
