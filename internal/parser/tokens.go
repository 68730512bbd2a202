package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/wharflab/sentinel/internal/ast"
)

// atomic grammar kinds are emitted as a single token even though the
// grammar gives them children.
var atomic = map[string]ast.TokenType{
	"string":         ast.TokenString,
	"regex":          ast.TokenRegExp,
	"comment":        ast.TokenComment,
	"html_comment":   ast.TokenComment,
	"hash_bang_line": ast.TokenComment,
	"number":         ast.TokenNumeric,
}

var identifierKinds = map[string]struct{}{
	"identifier":                            {},
	"property_identifier":                   {},
	"private_property_identifier":           {},
	"shorthand_property_identifier":         {},
	"shorthand_property_identifier_pattern": {},
	"statement_identifier":                  {},
	"type_identifier":                       {},
	"undefined":                             {},
}

// tokenize flattens the leaves of the concrete tree into a token stream.
func tokenize(root *tree_sitter.Node, src []byte) []ast.Token {
	var out []ast.Token
	var walk func(n *tree_sitter.Node, inTemplate bool)
	walk = func(n *tree_sitter.Node, inTemplate bool) {
		if n.IsMissing() || n.EndByte() <= n.StartByte() {
			return
		}
		kind := n.Kind()
		if typ, ok := atomic[kind]; ok {
			out = append(out, ast.Token{Type: typ, Value: n.Utf8Text(src), Range: span(n)})
			return
		}
		if n.ChildCount() == 0 {
			out = append(out, leafToken(n, kind, inTemplate, src))
			return
		}
		template := inTemplate || kind == "template_string"
		if kind == "template_substitution" {
			template = false
		}
		for i := range n.ChildCount() {
			walk(n.Child(i), template)
		}
	}
	walk(root, false)
	return out
}

func leafToken(n *tree_sitter.Node, kind string, inTemplate bool, src []byte) ast.Token {
	text := n.Utf8Text(src)
	tok := ast.Token{Value: text, Range: span(n)}
	switch {
	case inTemplate:
		tok.Type = ast.TokenTemplate
	case kind == "true" || kind == "false":
		tok.Type = ast.TokenBoolean
	case kind == "null":
		tok.Type = ast.TokenNull
	case ast.IsKeyword(text):
		tok.Type = ast.TokenKeyword
	case isWord(text):
		tok.Type = ast.TokenIdentifier
	default:
		if _, ok := identifierKinds[kind]; ok {
			tok.Type = ast.TokenIdentifier
		} else {
			tok.Type = ast.TokenPunctuator
		}
	}
	return tok
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}
