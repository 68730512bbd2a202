package ast

import "slices"

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenPunctuator TokenType = iota
	TokenKeyword
	TokenIdentifier
	TokenNumeric
	TokenString
	TokenTemplate
	TokenRegExp
	TokenBoolean
	TokenNull
	TokenComment
)

// Token is one lexical token of the source, comments included.
type Token struct {
	Type  TokenType
	Value string
	Range Range
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Type == TokenComment
}

var keywords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {},
	"continue": {}, "debugger": {}, "default": {}, "delete": {}, "do": {},
	"else": {}, "export": {}, "extends": {}, "finally": {}, "for": {},
	"function": {}, "if": {}, "import": {}, "in": {}, "instanceof": {},
	"new": {}, "return": {}, "super": {}, "switch": {}, "this": {},
	"throw": {}, "try": {}, "typeof": {}, "var": {}, "void": {},
	"while": {}, "with": {}, "yield": {},
}

// IsKeyword reports whether word is a reserved keyword token.
// Contextual words such as `of`, `await`, `let` and `as` are identifiers.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// File is a parsed source file together with its token stream.
type File struct {
	Path    string
	Source  []byte
	Program *Program
	// Tokens are sorted by start offset and include comments.
	Tokens []Token
}

// Text returns the source text of n, excluding wrapping parentheses.
func (f *File) Text(n Node) string {
	return f.Slice(n.Range())
}

// Slice returns the source text of r.
func (f *File) Slice(r Range) string {
	if r.Start < 0 || r.End > len(f.Source) || r.Start > r.End {
		return ""
	}
	return string(f.Source[r.Start:r.End])
}

// Comments returns the comment tokens in source order.
func (f *File) Comments() []Token {
	var out []Token
	for _, t := range f.Tokens {
		if t.IsComment() {
			out = append(out, t)
		}
	}
	return out
}

// TokenBefore returns the last token ending at or before the start of n.
func (f *File) TokenBefore(n Node, includeComments bool) (Token, bool) {
	return f.TokenBeforeRange(n.Range(), includeComments)
}

// TokenAfter returns the first token starting at or after the end of n.
func (f *File) TokenAfter(n Node, includeComments bool) (Token, bool) {
	return f.TokenAfterRange(n.Range(), includeComments)
}

// TokenBeforeRange returns the last token ending at or before r.Start.
func (f *File) TokenBeforeRange(r Range, includeComments bool) (Token, bool) {
	start := r.Start
	i, _ := slices.BinarySearchFunc(f.Tokens, start, func(t Token, off int) int {
		return t.Range.Start - off
	})
	for i--; i >= 0; i-- {
		t := f.Tokens[i]
		if t.Range.End > start {
			continue
		}
		if !includeComments && t.IsComment() {
			continue
		}
		return t, true
	}
	return Token{}, false
}

// TokenAfterRange returns the first token starting at or after r.End.
func (f *File) TokenAfterRange(r Range, includeComments bool) (Token, bool) {
	end := r.End
	i, _ := slices.BinarySearchFunc(f.Tokens, end, func(t Token, off int) int {
		return t.Range.Start - off
	})
	for ; i < len(f.Tokens); i++ {
		t := f.Tokens[i]
		if !includeComments && t.IsComment() {
			continue
		}
		return t, true
	}
	return Token{}, false
}
