package lspserver

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-lsp"

	"github.com/wharflab/sentinel/internal/fix"
)

// handleFormatting answers textDocument/formatting with the safe fixes of
// the document folded into one edit.
func (s *Server) handleFormatting(params *lsp.DocumentFormattingParams) (any, error) {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil //nolint:nilnil // null means no edits
	}
	if edits := s.computeFixEdits(doc.URI, []byte(doc.Content), fix.FixSafe); len(edits) > 0 {
		return edits, nil
	}
	return nil, nil //nolint:nilnil
}

func minimalTextEdit(original, modified []byte) []lsp.TextEdit {
	start, end, replacement, ok := minimalReplacement(original, modified)
	if !ok {
		return nil
	}
	return []lsp.TextEdit{{
		Range: lsp.Range{
			Start: positionAtOffset(original, start),
			End:   positionAtOffset(original, end),
		},
		NewText: string(replacement),
	}}
}

// minimalReplacement returns the byte span of original that differs from
// modified and its replacement. The common prefix and suffix are measured in
// runes so a span never splits a UTF-8 sequence.
func minimalReplacement(original, modified []byte) (start, end int, replacement []byte, ok bool) {
	if bytes.Equal(original, modified) {
		return 0, 0, nil, false
	}
	dmp := diffmatchpatch.New()
	a, b := []rune(string(original)), []rune(string(modified))

	prefix := dmp.DiffCommonPrefix(string(a), string(b))
	suffix := dmp.DiffCommonSuffix(string(a[prefix:]), string(b[prefix:]))

	start = len(string(a[:prefix]))
	end = len(original) - len(string(a[len(a)-suffix:]))
	modEnd := len(modified) - len(string(b[len(b)-suffix:]))
	return start, end, modified[start:modEnd], true
}

// positionAtOffset converts a byte offset into an LSP position, whose
// character is counted in UTF-16 code units. offset is clamped to content.
func positionAtOffset(content []byte, offset int) lsp.Position {
	offset = min(max(offset, 0), len(content))
	before := content[:offset]
	lineStart := bytes.LastIndexByte(before, '\n') + 1

	units := 0
	for rest := before[lineStart:]; len(rest) > 0; {
		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size <= 1 && !utf8.FullRune(rest) {
			break // offset cuts a rune
		}
		units += max(utf16.RuneLen(r), 1)
		rest = rest[size:]
	}
	return lsp.Position{Line: bytes.Count(before, []byte{'\n'}), Character: units}
}
