package lspserver

import (
	"strings"

	"github.com/sourcegraph/go-lsp"

	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/rules"
)

// codeActionsForDocument returns quick-fix code actions for the given range.
// Suggestions become quick fixes too; only the violation's own fix is preferred.
func (s *Server) codeActionsForDocument(doc *Document, params *protocol.CodeActionParams) []protocol.CodeAction {
	includeQuickFix := kindRequested(params.Context.Only, lsp.CAKQuickFix)
	includeFixAll := kindRequested(params.Context.Only, fixAllCodeActionKind)

	content := []byte(doc.Content)
	violations := s.violationsFor(doc)

	actions := make([]protocol.CodeAction, 0, len(violations)+1)

	if includeQuickFix {
		for _, v := range violations {
			if !rangesOverlap(violationRange(content, v), params.Range) {
				continue
			}
			matched := matchingDiagnostics(content, v, params.Context.Diagnostics)

			fixes := make([]*rules.SuggestedFix, 0, 1+len(v.Suggestions))
			if v.SuggestedFix != nil {
				fixes = append(fixes, v.SuggestedFix)
			}
			fixes = append(fixes, v.Suggestions...)

			for i, sf := range fixes {
				edits := convertTextEdits(content, sf.Edits)
				if len(edits) == 0 {
					continue
				}
				preferred := i == 0 && v.SuggestedFix != nil &&
					(sf.IsPreferred || sf.Safety == rules.FixSafe)
				actions = append(actions, protocol.CodeAction{
					Title:       sf.Description,
					Kind:        lsp.CAKQuickFix,
					Diagnostics: matched,
					IsPreferred: preferred,
					Edit: &lsp.WorkspaceEdit{
						Changes: map[string][]lsp.TextEdit{string(doc.URI): edits},
					},
				})
			}
		}
	}

	if includeFixAll {
		if action := s.fixAllCodeAction(doc); action != nil {
			actions = append(actions, *action)
		}
	}

	return actions
}

// kindRequested reports whether kind passes the client's "only" filter.
// A requested kind also matches its sub-kinds.
func kindRequested(only []lsp.CodeActionKind, kind lsp.CodeActionKind) bool {
	if only == nil {
		return true
	}
	for _, requested := range only {
		if requested == kind {
			return true
		}
		if requested != "" && strings.HasPrefix(string(kind), string(requested)+".") {
			return true
		}
	}
	return false
}

// convertTextEdits converts rule edits to LSP TextEdits.
func convertTextEdits(content []byte, edits []rules.TextEdit) []lsp.TextEdit {
	result := make([]lsp.TextEdit, 0, len(edits))
	for _, e := range edits {
		if e.Location.IsFileLevel() {
			continue
		}
		result = append(result, lsp.TextEdit{
			Range:   locationRange(content, e.Location),
			NewText: e.NewText,
		})
	}
	return result
}

// rangesOverlap checks if two LSP ranges overlap.
// LSP ranges are half-open [start, end), so touching ranges (a.End == b.Start)
// are not considered overlapping. An empty request range is a cursor and
// matches the ranges that contain it.
func rangesOverlap(a, b lsp.Range) bool {
	if b.Start == b.End {
		return !positionBefore(b.Start, a.Start) && positionBefore(b.Start, a.End)
	}
	if !positionBefore(b.Start, a.End) {
		return false
	}
	return positionBefore(a.Start, b.End)
}

func positionBefore(a, b lsp.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// matchingDiagnostics finds diagnostics that match a violation by message and range.
func matchingDiagnostics(content []byte, v rules.Violation, diagnostics []lsp.Diagnostic) []lsp.Diagnostic {
	vRange := violationRange(content, v)
	var matched []lsp.Diagnostic
	for _, d := range diagnostics {
		if d.Range.Start.Line == vRange.Start.Line && d.Message == v.Message {
			matched = append(matched, d)
		}
	}
	return matched
}
