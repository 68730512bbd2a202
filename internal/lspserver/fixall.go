package lspserver

import (
	"context"

	"github.com/sourcegraph/go-lsp"

	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/linter"
	"github.com/wharflab/sentinel/internal/lsp/protocol"
)

const fixAllCodeActionKind = protocol.CodeActionKindSourceFixAll + ".sentinel"

func (s *Server) fixAllCodeAction(doc *Document) *protocol.CodeAction {
	edits := s.computeFixEdits(doc.URI, []byte(doc.Content), fix.FixSafe)
	if len(edits) == 0 {
		return nil
	}

	return &protocol.CodeAction{
		Title:       "Fix all auto-fixable issues",
		Kind:        fixAllCodeActionKind,
		IsPreferred: true,
		Edit: &lsp.WorkspaceEdit{
			Changes: map[string][]lsp.TextEdit{string(doc.URI): edits},
		},
	}
}

// computeFixEdits runs the multi-pass fixer over content and returns a
// single minimal edit, or nil when nothing changes.
func (s *Server) computeFixEdits(uri lsp.DocumentURI, content []byte, safety fix.FixSafety) []lsp.TextEdit {
	input := s.lintInput(uri, content)
	result, err := linter.FixFile(context.Background(), input, linter.FixOptions{SafetyThreshold: safety})
	if err != nil {
		s.log.WithError(err).WithField("file", input.FilePath).Debug("lsp: fix failed")
		return nil
	}
	if !result.Changed() {
		return nil
	}
	return minimalTextEdit(content, result.Content)
}
