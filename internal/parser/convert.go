package parser

import (
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/wharflab/sentinel/internal/ast"
)

type converter struct {
	src []byte
}

func span(n *tree_sitter.Node) ast.Range {
	return ast.Range{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func base(n *tree_sitter.Node) ast.Base {
	return ast.Base{Span: span(n)}
}

func (c *converter) text(n *tree_sitter.Node) string {
	return n.Utf8Text(c.src)
}

func isComment(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "comment", "html_comment", "hash_bang_line":
		return true
	}
	return false
}

// named returns the named, non-comment children of n.
func named(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	var out []*tree_sitter.Node
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		if child == nil || isComment(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *tree_sitter.Node) *tree_sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasChild reports whether n has a direct child of the given kind.
func hasChild(n *tree_sitter.Node, kind string) bool {
	for i := range n.ChildCount() {
		if child := n.Child(i); child != nil && child.Kind() == kind {
			return true
		}
	}
	return false
}

// list converts every named child of n.
func (c *converter) list(n *tree_sitter.Node) []ast.Node {
	var out []ast.Node
	for _, child := range named(n) {
		if conv := c.node(child); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

// field converts the child stored under name, or returns nil.
func (c *converter) field(n *tree_sitter.Node, name string) ast.Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return c.node(child)
}

// condition converts the parenthesized test of if/while/do/switch. Those
// parentheses belong to the statement and are not counted on the node.
func (c *converter) condition(n *tree_sitter.Node, name string) ast.Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	if child.Kind() == "parenthesized_expression" {
		return c.node(firstNamed(child))
	}
	return c.node(child)
}

func (c *converter) typeRef(n *tree_sitter.Node) *ast.TypeRef {
	if n == nil {
		return nil
	}
	if n.Kind() == "type_annotation" {
		n = firstNamed(n)
		if n == nil {
			return nil
		}
	}
	return &ast.TypeRef{Base: base(n), Syntax: n.Kind(), Text: c.text(n)}
}

// node lowers a single grammar node. Comments yield nil.
func (c *converter) node(n *tree_sitter.Node) ast.Node {
	if n == nil || isComment(n) {
		return nil
	}

	switch n.Kind() {
	case "parenthesized_expression":
		return c.parenthesized(n)
	case "identifier", "property_identifier", "private_property_identifier",
		"shorthand_property_identifier", "shorthand_property_identifier_pattern",
		"statement_identifier", "undefined":
		return &ast.Identifier{Base: base(n), Name: c.text(n)}
	case "this":
		return &ast.This{Base: base(n)}
	case "number", "string", "true", "false", "null", "regex":
		return c.literal(n)
	case "call_expression":
		return c.call(n)
	case "new_expression":
		return &ast.New{
			Base:   base(n),
			Callee: c.field(n, "constructor"),
			Args:   c.list(n.ChildByFieldName("arguments")),
		}
	case "member_expression":
		return &ast.Member{
			Base:     base(n),
			Object:   c.field(n, "object"),
			Property: c.field(n, "property"),
			Optional: n.ChildByFieldName("optional_chain") != nil || hasChild(n, "optional_chain"),
		}
	case "subscript_expression":
		return &ast.Member{
			Base:     base(n),
			Object:   c.field(n, "object"),
			Property: c.field(n, "index"),
			Computed: true,
			Optional: n.ChildByFieldName("optional_chain") != nil || hasChild(n, "optional_chain"),
		}
	case "unary_expression":
		return &ast.Unary{
			Base:     base(n),
			Operator: c.operator(n),
			Argument: c.field(n, "argument"),
		}
	case "update_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		return &ast.Update{
			Base:     base(n),
			Operator: c.operator(n),
			Prefix:   op != nil && arg != nil && op.StartByte() < arg.StartByte(),
			Argument: c.node(arg),
		}
	case "binary_expression":
		return c.binary(n)
	case "assignment_expression":
		return &ast.Assignment{
			Base:     base(n),
			Operator: "=",
			Left:     c.field(n, "left"),
			Right:    c.field(n, "right"),
		}
	case "augmented_assignment_expression":
		return &ast.Assignment{
			Base:     base(n),
			Operator: c.operator(n),
			Left:     c.field(n, "left"),
			Right:    c.field(n, "right"),
		}
	case "ternary_expression":
		return &ast.Conditional{
			Base:       base(n),
			Test:       c.field(n, "condition"),
			Consequent: c.field(n, "consequence"),
			Alternate:  c.field(n, "alternative"),
		}
	case "await_expression":
		return &ast.Await{Base: base(n), Argument: c.node(firstNamed(n))}
	case "sequence_expression":
		return &ast.Sequence{Base: base(n), Expressions: c.sequence(n, nil)}
	case "as_expression", "satisfies_expression":
		return c.as(n)
	case "type_assertion":
		kids := named(n)
		out := &ast.TypeAssertion{Base: base(n)}
		if len(kids) == 2 {
			if args := named(kids[0]); len(args) > 0 {
				out.Type = c.typeRef(args[0])
			}
			out.Expression = c.node(kids[1])
		}
		return out
	case "non_null_expression":
		return &ast.NonNull{Base: base(n), Expression: c.node(firstNamed(n))}
	case "if_statement":
		out := &ast.If{
			Base:       base(n),
			Test:       c.condition(n, "condition"),
			Consequent: c.field(n, "consequence"),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Kind() == "else_clause" {
				out.Alternate = c.node(firstNamed(alt))
			} else {
				out.Alternate = c.node(alt)
			}
		}
		return out
	case "while_statement":
		return &ast.While{
			Base: base(n),
			Test: c.condition(n, "condition"),
			Body: c.field(n, "body"),
		}
	case "do_statement":
		return &ast.DoWhile{
			Base: base(n),
			Body: c.field(n, "body"),
			Test: c.condition(n, "condition"),
		}
	case "for_statement":
		return c.forStatement(n)
	case "for_in_statement":
		return c.forIn(n)
	case "statement_block":
		return &ast.Block{Base: base(n), Body: c.list(n)}
	case "lexical_declaration", "variable_declaration":
		return c.varDecl(n)
	case "variable_declarator":
		return c.declarator(n)
	case "function_declaration", "generator_function_declaration":
		return c.function(n, ast.KindFunctionDeclaration)
	case "function_expression", "function", "generator_function":
		return c.function(n, ast.KindFunctionExpression)
	case "arrow_function":
		return c.function(n, ast.KindArrowFunction)
	case "method_definition":
		return c.function(n, ast.KindMethod)
	case "required_parameter", "optional_parameter":
		return c.parameter(n)
	case "catch_clause":
		out := &ast.Catch{Base: base(n), Body: c.field(n, "body")}
		if p := n.ChildByFieldName("parameter"); p != nil {
			out.Param = c.node(p)
		}
		return out
	}

	return c.generic(n)
}

func (c *converter) generic(n *tree_sitter.Node) ast.Node {
	g := &ast.Generic{Base: base(n), Syntax: n.Kind()}
	for _, child := range named(n) {
		var conv ast.Node
		// switch and with keep their own parentheses around the discriminant
		if child.Kind() == "parenthesized_expression" &&
			(n.Kind() == "switch_statement" || n.Kind() == "with_statement") {
			conv = c.node(firstNamed(child))
		} else {
			conv = c.node(child)
		}
		if conv != nil {
			g.Nodes = append(g.Nodes, conv)
		}
	}
	return g
}

func (c *converter) parenthesized(n *tree_sitter.Node) ast.Node {
	inner := c.node(firstNamed(n))
	if inner == nil {
		return c.generic(n)
	}
	ast.WrapParens(inner, span(n))
	return inner
}

// operator returns the text of the operator field of n.
func (c *converter) operator(n *tree_sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return c.text(op)
	}
	return ""
}

func (c *converter) binary(n *tree_sitter.Node) ast.Node {
	op := c.operator(n)
	left, right := c.field(n, "left"), c.field(n, "right")
	switch op {
	case "&&", "||", "??":
		return &ast.Logical{Base: base(n), Operator: op, Left: left, Right: right}
	}
	return &ast.Binary{Base: base(n), Operator: op, Left: left, Right: right}
}

func (c *converter) call(n *tree_sitter.Node) ast.Node {
	out := &ast.Call{
		Base:     base(n),
		Callee:   c.field(n, "function"),
		Optional: n.ChildByFieldName("optional_chain") != nil || hasChild(n, "optional_chain"),
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		if args.Kind() == "arguments" {
			out.Args = c.list(args)
		} else {
			// tagged template
			out.Args = []ast.Node{c.node(args)}
		}
	}
	return out
}

func (c *converter) as(n *tree_sitter.Node) ast.Node {
	kids := named(n)
	out := &ast.As{Base: base(n), Satisfies: n.Kind() == "satisfies_expression"}
	if len(kids) > 0 {
		out.Expression = c.node(kids[0])
	}
	if len(kids) > 1 {
		out.Type = c.typeRef(kids[len(kids)-1])
	}
	return out
}

// sequence flattens nested comma expressions into one list.
func (c *converter) sequence(n *tree_sitter.Node, acc []ast.Node) []ast.Node {
	for _, child := range named(n) {
		if child.Kind() == "sequence_expression" {
			acc = c.sequence(child, acc)
			continue
		}
		if conv := c.node(child); conv != nil {
			acc = append(acc, conv)
		}
	}
	return acc
}

func (c *converter) literal(n *tree_sitter.Node) ast.Node {
	raw := c.text(n)
	lit := &ast.Literal{Base: base(n), Raw: raw}
	switch n.Kind() {
	case "number":
		if strings.HasSuffix(raw, "n") && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
			lit.Type = ast.LiteralBigInt
			return lit
		}
		lit.Type = ast.LiteralNumber
		lit.Number = parseNumber(raw)
	case "string":
		lit.Type = ast.LiteralString
		if len(raw) >= 2 {
			lit.Str = raw[1 : len(raw)-1]
		}
	case "true", "false":
		lit.Type = ast.LiteralBoolean
		lit.Bool = raw == "true"
	case "null":
		lit.Type = ast.LiteralNull
	case "regex":
		lit.Type = ast.LiteralRegExp
	}
	return lit
}

// parseNumber evaluates a JavaScript numeric literal.
func parseNumber(raw string) float64 {
	s := strings.ReplaceAll(raw, "_", "")
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		if v, err := strconv.ParseUint(lower, 0, 64); err == nil {
			return float64(v)
		}
		return 0
	}
	// legacy octal such as 017
	if len(s) > 1 && s[0] == '0' && !strings.ContainsAny(s, ".eE") {
		if v, err := strconv.ParseUint(s[1:], 8, 64); err == nil {
			return float64(v)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *converter) forStatement(n *tree_sitter.Node) ast.Node {
	out := &ast.For{Base: base(n), Body: c.field(n, "body")}
	if init := n.ChildByFieldName("initializer"); init != nil && init.Kind() != "empty_statement" {
		out.Init = c.unwrapStatement(init)
	}
	if cond := n.ChildByFieldName("condition"); cond != nil && cond.Kind() != "empty_statement" && cond.Kind() != ";" {
		out.Test = c.unwrapStatement(cond)
	}
	if inc := n.ChildByFieldName("increment"); inc != nil {
		out.Update = c.node(inc)
	}
	return out
}

// unwrapStatement returns the expression of an expression_statement, or
// converts n unchanged.
func (c *converter) unwrapStatement(n *tree_sitter.Node) ast.Node {
	if n.Kind() == "expression_statement" {
		return c.node(firstNamed(n))
	}
	return c.node(n)
}

func (c *converter) forIn(n *tree_sitter.Node) ast.Node {
	out := &ast.ForIn{
		Base:  base(n),
		Left:  c.field(n, "left"),
		Right: c.field(n, "right"),
		Body:  c.field(n, "body"),
	}
	if kind := n.ChildByFieldName("kind"); kind != nil {
		out.DeclKind = c.text(kind)
	}
	if op := n.ChildByFieldName("operator"); op != nil {
		out.Of = c.text(op) == "of"
	}
	return out
}

func (c *converter) varDecl(n *tree_sitter.Node) ast.Node {
	out := &ast.VarDecl{Base: base(n), DeclKind: "var"}
	if kind := n.ChildByFieldName("kind"); kind != nil {
		out.DeclKind = c.text(kind)
	} else if first := n.Child(0); first != nil && !first.IsNamed() {
		out.DeclKind = c.text(first)
	}
	for _, child := range named(n) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		out.Declarators = append(out.Declarators, c.declarator(child))
	}
	return out
}

func (c *converter) declarator(n *tree_sitter.Node) *ast.Declarator {
	return &ast.Declarator{
		Base: base(n),
		Name: c.field(n, "name"),
		Type: c.typeRef(n.ChildByFieldName("type")),
		Init: c.field(n, "value"),
	}
}

func (c *converter) function(n *tree_sitter.Node, kind ast.Kind) ast.Node {
	fn := ast.NewFunction(kind)
	fn.Base = base(n)
	if name := n.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
		fn.Name = &ast.Identifier{Base: base(name), Name: c.text(name)}
	}
	if single := n.ChildByFieldName("parameter"); single != nil {
		fn.Params = []*ast.Parameter{{
			Base:    base(single),
			Pattern: c.node(single),
		}}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range named(params) {
			switch p.Kind() {
			case "required_parameter", "optional_parameter":
				fn.Params = append(fn.Params, c.parameter(p))
			default:
				fn.Params = append(fn.Params, &ast.Parameter{Base: base(p), Pattern: c.node(p)})
			}
		}
	}
	fn.Body = c.field(n, "body")
	return fn
}

func (c *converter) parameter(n *tree_sitter.Node) *ast.Parameter {
	return &ast.Parameter{
		Base:     base(n),
		Pattern:  c.field(n, "pattern"),
		Type:     c.typeRef(n.ChildByFieldName("type")),
		Default:  c.field(n, "value"),
		Optional: n.Kind() == "optional_parameter",
	}
}
