// Package ast defines the syntax tree the rules operate on.
//
// The tree is ESTree-shaped: expressions and statements the rules inspect
// have dedicated node types, everything else is kept as a Generic node so
// that traversal and parent links still cover the whole file. Parentheses
// do not produce nodes; instead each node records how many pairs of
// parentheses wrap it and the range of the outermost pair.
package ast

// Range is a half-open byte range [Start, End) into the source.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether other lies within r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Node is implemented by every syntax tree node.
type Node interface {
	// Kind returns the node type used for listener selectors.
	Kind() Kind
	// Range returns the byte range of the node, excluding wrapping parentheses.
	Range() Range
	// Parent returns the enclosing node, or nil for the Program.
	Parent() Node
	// Parens returns how many pairs of parentheses wrap the node.
	Parens() int
	// ParenRange returns the range including all wrapping parentheses.
	ParenRange() Range
	// Children returns the direct child nodes in source order.
	Children() []Node

	base() *Base
}

// Base carries the position data shared by all nodes.
type Base struct {
	Span Range

	// ParenCount is the number of parentheses pairs around the node that
	// are not part of the enclosing statement syntax (if/while/switch tests
	// and call argument lists do not count).
	ParenCount int
	// ParenSpan is the range of the outermost counted parentheses pair.
	ParenSpan Range

	parent Node
}

func (b *Base) Range() Range { return b.Span }
func (b *Base) Parent() Node { return b.parent }
func (b *Base) Parens() int  { return b.ParenCount }
func (b *Base) base() *Base  { return b }

func (b *Base) ParenRange() Range {
	if b.ParenCount == 0 {
		return b.Span
	}
	return b.ParenSpan
}

// Program is the root of a file.
type Program struct {
	Base
	Body []Node
}

// Identifier is a name reference or binding.
type Identifier struct {
	Base
	Name string
}

// This is the `this` expression.
type This struct {
	Base
}

// LiteralType distinguishes literal values.
type LiteralType int

const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBoolean
	LiteralNull
	LiteralRegExp
	LiteralBigInt
)

// Literal is a number, string, boolean, null, bigint or regular expression literal.
type Literal struct {
	Base
	Type LiteralType
	Raw  string

	// Number holds the value of numeric literals.
	Number float64
	// Str holds the unquoted value of string literals.
	Str string
	// Bool holds the value of boolean literals.
	Bool bool
}

// IsNumber reports whether the literal is numeric and equals v.
func (l *Literal) IsNumber(v float64) bool {
	return l.Type == LiteralNumber && l.Number == v
}

// Call is a call expression.
type Call struct {
	Base
	Callee   Node
	Args     []Node
	Optional bool
}

// New is a `new` expression.
type New struct {
	Base
	Callee Node
	Args   []Node
}

// Member is a property access; Computed marks `a[b]` forms.
type Member struct {
	Base
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

// Unary is a prefix operator expression such as `!x` or `typeof x`.
type Unary struct {
	Base
	Operator string
	Argument Node
}

// Update is `x++`, `--x` and friends.
type Update struct {
	Base
	Operator string
	Prefix   bool
	Argument Node
}

// Binary is a non-logical binary expression.
type Binary struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

// Logical is `&&`, `||` or `??`.
type Logical struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

// Assignment covers `=` and compound assignment operators.
type Assignment struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

// Conditional is the ternary `test ? consequent : alternate`.
type Conditional struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

// Await is an `await` expression.
type Await struct {
	Base
	Argument Node
}

// Sequence is a comma expression.
type Sequence struct {
	Base
	Expressions []Node
}

// As is `expr as T` or, when Satisfies is set, `expr satisfies T`.
// Type is nil for `as const`.
type As struct {
	Base
	Expression Node
	Type       *TypeRef
	Satisfies  bool
}

// TypeAssertion is the angle-bracket form `<T>expr`.
type TypeAssertion struct {
	Base
	Type       *TypeRef
	Expression Node
}

// NonNull is `expr!`.
type NonNull struct {
	Base
	Expression Node
}

// TypeRef is a type annotation. Only its text is retained.
type TypeRef struct {
	Base
	// Syntax is the grammar kind of the type (predefined_type, type_identifier, ...).
	Syntax string
	Text   string
}

// IsNumber reports whether the type is the number primitive or the Number wrapper.
func (t *TypeRef) IsNumber() bool {
	if t == nil {
		return false
	}
	switch t.Syntax {
	case "predefined_type":
		return t.Text == "number"
	case "type_identifier":
		return t.Text == "Number"
	}
	return false
}

// If is an if statement.
type If struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

// While is a while loop.
type While struct {
	Base
	Test Node
	Body Node
}

// DoWhile is a do...while loop.
type DoWhile struct {
	Base
	Body Node
	Test Node
}

// For is a C-style for loop. Any of Init, Test and Update may be nil.
type For struct {
	Base
	Init   Node
	Test   Node
	Update Node
	Body   Node
}

// ForIn is `for (left in right)` or, when Of is set, `for (left of right)`.
type ForIn struct {
	Base
	// DeclKind is "var", "let", "const" or empty when Left is an existing target.
	DeclKind string
	Left     Node
	Right    Node
	Body     Node
	Of       bool
}

// Block is a braced statement list.
type Block struct {
	Base
	Body []Node
}

// VarDecl is a var, let or const declaration.
type VarDecl struct {
	Base
	DeclKind    string
	Declarators []*Declarator
}

// Declarator is a single binding of a VarDecl.
type Declarator struct {
	Base
	Name Node
	Type *TypeRef
	Init Node
}

// Function covers declarations, expressions, arrows and methods.
type Function struct {
	Base
	kind   Kind
	Name   *Identifier
	Params []*Parameter
	Body   Node
}

// NewFunction returns a Function node of the given kind.
func NewFunction(kind Kind) *Function {
	return &Function{kind: kind}
}

// Parameter is a formal parameter with optional type annotation and default.
type Parameter struct {
	Base
	Pattern  Node
	Type     *TypeRef
	Default  Node
	Optional bool
}

// Catch is a catch clause.
type Catch struct {
	Base
	Param Node
	Body  Node
}

// Generic holds any construct without a dedicated type. Syntax is the
// grammar kind, which is also what Kind returns.
type Generic struct {
	Base
	Syntax string
	Nodes  []Node
}
