package lint

import "github.com/wharflab/sentinel/internal/ast"

// Fixer builds edits against the original source of the file.
type Fixer struct {
	file *ast.File
}

// File returns the file the edits apply to.
func (f *Fixer) File() *ast.File { return f.file }

// ReplaceText replaces n, excluding wrapping parentheses.
func (f *Fixer) ReplaceText(n ast.Node, text string) Edit {
	return f.ReplaceRange(n.Range(), text)
}

// ReplaceRange replaces the source covered by r.
func (f *Fixer) ReplaceRange(r ast.Range, text string) Edit {
	return Edit{Range: r, Text: text}
}

// InsertTextBeforeRange inserts text at r.Start.
func (f *Fixer) InsertTextBeforeRange(r ast.Range, text string) Edit {
	return Edit{Range: ast.Range{Start: r.Start, End: r.Start}, Text: text}
}

// InsertTextAfterRange inserts text at r.End.
func (f *Fixer) InsertTextAfterRange(r ast.Range, text string) Edit {
	return Edit{Range: ast.Range{Start: r.End, End: r.End}, Text: text}
}
