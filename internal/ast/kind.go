package ast

// Kind names a node type. Dedicated node types use ESTree names; Generic
// nodes use the grammar kind of the construct they wrap.
type Kind string

const (
	KindProgram             Kind = "Program"
	KindIdentifier          Kind = "Identifier"
	KindThis                Kind = "ThisExpression"
	KindLiteral             Kind = "Literal"
	KindCall                Kind = "CallExpression"
	KindNew                 Kind = "NewExpression"
	KindMember              Kind = "MemberExpression"
	KindUnary               Kind = "UnaryExpression"
	KindUpdate              Kind = "UpdateExpression"
	KindBinary              Kind = "BinaryExpression"
	KindLogical             Kind = "LogicalExpression"
	KindAssignment          Kind = "AssignmentExpression"
	KindConditional         Kind = "ConditionalExpression"
	KindAwait               Kind = "AwaitExpression"
	KindSequence            Kind = "SequenceExpression"
	KindAs                  Kind = "TSAsExpression"
	KindSatisfies           Kind = "TSSatisfiesExpression"
	KindTypeAssertion       Kind = "TSTypeAssertion"
	KindNonNull             Kind = "TSNonNullExpression"
	KindTypeRef             Kind = "TSTypeReference"
	KindIf                  Kind = "IfStatement"
	KindWhile               Kind = "WhileStatement"
	KindDoWhile             Kind = "DoWhileStatement"
	KindFor                 Kind = "ForStatement"
	KindForIn               Kind = "ForInStatement"
	KindForOf               Kind = "ForOfStatement"
	KindBlock               Kind = "BlockStatement"
	KindVariableDeclaration Kind = "VariableDeclaration"
	KindVariableDeclarator  Kind = "VariableDeclarator"
	KindFunctionDeclaration Kind = "FunctionDeclaration"
	KindFunctionExpression  Kind = "FunctionExpression"
	KindArrowFunction       Kind = "ArrowFunctionExpression"
	KindMethod              Kind = "MethodDefinition"
	KindParameter           Kind = "Parameter"
	KindCatch               Kind = "CatchClause"
)

// Exit returns the selector for the exit event of k.
func (k Kind) Exit() string {
	return string(k) + ":exit"
}

func (*Program) Kind() Kind       { return KindProgram }
func (*Identifier) Kind() Kind    { return KindIdentifier }
func (*This) Kind() Kind          { return KindThis }
func (*Literal) Kind() Kind       { return KindLiteral }
func (*Call) Kind() Kind          { return KindCall }
func (*New) Kind() Kind           { return KindNew }
func (*Member) Kind() Kind        { return KindMember }
func (*Unary) Kind() Kind         { return KindUnary }
func (*Update) Kind() Kind        { return KindUpdate }
func (*Binary) Kind() Kind        { return KindBinary }
func (*Logical) Kind() Kind       { return KindLogical }
func (*Assignment) Kind() Kind    { return KindAssignment }
func (*Conditional) Kind() Kind   { return KindConditional }
func (*Await) Kind() Kind         { return KindAwait }
func (*Sequence) Kind() Kind      { return KindSequence }
func (*TypeAssertion) Kind() Kind { return KindTypeAssertion }
func (*NonNull) Kind() Kind       { return KindNonNull }
func (*TypeRef) Kind() Kind       { return KindTypeRef }
func (*If) Kind() Kind            { return KindIf }
func (*While) Kind() Kind         { return KindWhile }
func (*DoWhile) Kind() Kind       { return KindDoWhile }
func (*For) Kind() Kind           { return KindFor }
func (*Block) Kind() Kind         { return KindBlock }
func (*VarDecl) Kind() Kind       { return KindVariableDeclaration }
func (*Declarator) Kind() Kind    { return KindVariableDeclarator }
func (*Parameter) Kind() Kind     { return KindParameter }
func (*Catch) Kind() Kind         { return KindCatch }
func (f *Function) Kind() Kind    { return f.kind }
func (g *Generic) Kind() Kind     { return Kind(g.Syntax) }

func (a *As) Kind() Kind {
	if a.Satisfies {
		return KindSatisfies
	}
	return KindAs
}

func (f *ForIn) Kind() Kind {
	if f.Of {
		return KindForOf
	}
	return KindForIn
}

// collect drops nil entries, keeping source order.
func collect(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *TypeRef:
		return v == nil
	case *Identifier:
		return v == nil
	}
	return false
}

func (p *Program) Children() []Node     { return p.Body }
func (*Identifier) Children() []Node    { return nil }
func (*This) Children() []Node          { return nil }
func (*Literal) Children() []Node       { return nil }
func (*TypeRef) Children() []Node       { return nil }
func (m *Member) Children() []Node      { return collect(m.Object, m.Property) }
func (u *Unary) Children() []Node       { return collect(u.Argument) }
func (u *Update) Children() []Node      { return collect(u.Argument) }
func (b *Binary) Children() []Node      { return collect(b.Left, b.Right) }
func (l *Logical) Children() []Node     { return collect(l.Left, l.Right) }
func (a *Assignment) Children() []Node  { return collect(a.Left, a.Right) }
func (c *Conditional) Children() []Node { return collect(c.Test, c.Consequent, c.Alternate) }
func (a *Await) Children() []Node       { return collect(a.Argument) }
func (s *Sequence) Children() []Node    { return s.Expressions }
func (a *As) Children() []Node          { return collect(a.Expression, a.Type) }
func (t *TypeAssertion) Children() []Node {
	return collect(t.Type, t.Expression)
}
func (n *NonNull) Children() []Node { return collect(n.Expression) }
func (i *If) Children() []Node      { return collect(i.Test, i.Consequent, i.Alternate) }
func (w *While) Children() []Node   { return collect(w.Test, w.Body) }
func (d *DoWhile) Children() []Node { return collect(d.Body, d.Test) }
func (f *For) Children() []Node     { return collect(f.Init, f.Test, f.Update, f.Body) }
func (f *ForIn) Children() []Node   { return collect(f.Left, f.Right, f.Body) }
func (b *Block) Children() []Node   { return b.Body }
func (c *Catch) Children() []Node   { return collect(c.Param, c.Body) }
func (g *Generic) Children() []Node { return g.Nodes }

func (c *Call) Children() []Node {
	return append(collect(c.Callee), c.Args...)
}

func (n *New) Children() []Node {
	return append(collect(n.Callee), n.Args...)
}

func (v *VarDecl) Children() []Node {
	out := make([]Node, 0, len(v.Declarators))
	for _, d := range v.Declarators {
		out = append(out, d)
	}
	return out
}

func (d *Declarator) Children() []Node {
	return collect(d.Name, d.Type, d.Init)
}

func (f *Function) Children() []Node {
	out := collect(f.Name)
	for _, p := range f.Params {
		out = append(out, p)
	}
	return append(out, collect(f.Body)...)
}

func (p *Parameter) Children() []Node {
	return collect(p.Pattern, p.Type, p.Default)
}
