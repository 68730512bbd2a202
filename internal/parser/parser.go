// Package parser turns TypeScript source into the ast package's tree.
//
// Parsing is done by the tree-sitter TypeScript grammar. The concrete
// syntax tree is then lowered into ESTree-shaped nodes: parentheses are
// folded into paren counts, logical operators get their own node type and
// constructs the rules do not inspect are kept as generic nodes.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/wharflab/sentinel/internal/ast"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// SyntaxError describes the first error node of a failed parse.
type SyntaxError struct {
	Path   string
	Line   int // 1-based
	Column int // 0-based
	Near   string
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column+1)
	if e.Near != "" {
		msg += fmt.Sprintf(" near %q", e.Near)
	}
	return msg
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// IsTSX reports whether path should be parsed with the TSX dialect.
func IsTSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tsx")
}

func language(path string) *tree_sitter.Language {
	if IsTSX(path) {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	}
	return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
}

// Parse parses src as TypeScript (TSX for .tsx paths).
func Parse(path string, src []byte) (*ast.File, error) {
	p := tree_sitter.NewParser()
	defer p.Close()

	if err := p.SetLanguage(language(path)); err != nil {
		return nil, fmt.Errorf("set typescript language: %w", err)
	}

	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: parser returned no tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(path, src, root)
	}

	c := &converter{src: src}
	prog := &ast.Program{Base: ast.Base{Span: ast.Range{Start: 0, End: len(src)}}}
	prog.Body = c.list(root)
	ast.Link(prog)

	return &ast.File{
		Path:    path,
		Source:  src,
		Program: prog,
		Tokens:  tokenize(root, src),
	}, nil
}

// syntaxError locates the first error or missing node below root.
func syntaxError(path string, src []byte, root *tree_sitter.Node) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPosition()
	near := bad.Utf8Text(src)
	if len(near) > 20 {
		near = near[:20]
	}
	return &SyntaxError{Path: path, Line: int(pos.Row) + 1, Column: int(pos.Column), Near: near}
}

func firstError(n *tree_sitter.Node) *tree_sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := range n.ChildCount() {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
