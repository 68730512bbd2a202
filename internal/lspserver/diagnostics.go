package lspserver

import (
	"bytes"
	"context"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/wharflab/sentinel/internal/linter"
	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/rules"
)

// violationsFor returns the processed violations of doc, linting it when the
// cache has no entry for its version.
func (s *Server) violationsFor(doc *Document) []rules.Violation {
	if violations, ok := s.lintCache.get(doc.URI, doc.Version); ok {
		return violations
	}
	violations := s.lintContent(doc.URI, []byte(doc.Content))
	s.lintCache.set(doc.URI, doc.Version, violations)
	return violations
}

// publishDiagnostics sends the diagnostics of doc's current version.
func (s *Server) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, doc *Document) {
	violations := s.violationsFor(doc)
	version := doc.Version
	params := &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: convertDiagnostics([]byte(doc.Content), violations),
	}
	if err := conn.Notify(ctx, protocol.MethodPublishDiagnostics, params); err != nil {
		s.log.WithError(err).WithField("uri", doc.URI).Warn("lsp: failed to publish diagnostics")
	}
}

// clearDiagnostics publishes an empty list for uri.
func (s *Server) clearDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, uri lsp.DocumentURI) {
	params := &protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: []lsp.Diagnostic{}}
	if err := conn.Notify(ctx, protocol.MethodPublishDiagnostics, params); err != nil {
		s.log.WithError(err).WithField("uri", uri).Warn("lsp: failed to clear diagnostics")
	}
}

// lintInput builds a linter.Input for the given document. Config is
// discovered from disk next to the document's path.
func (s *Server) lintInput(uri lsp.DocumentURI, content []byte) linter.Input {
	return linter.Input{
		FilePath: protocol.URIToPath(uri),
		Content:  content,
		Log:      s.log,
	}
}

// lintContent runs the shared lint pipeline and processor chain.
func (s *Server) lintContent(uri lsp.DocumentURI, content []byte) []rules.Violation {
	input := s.lintInput(uri, content)
	result, err := linter.LintFile(input)
	if err != nil {
		s.log.WithError(err).WithField("file", input.FilePath).Debug("lsp: lint failed")
		return nil
	}
	return linter.ProcessFile(input.FilePath, result)
}

// convertDiagnostics converts violations to LSP diagnostics.
func convertDiagnostics(content []byte, violations []rules.Violation) []lsp.Diagnostic {
	diagnostics := make([]lsp.Diagnostic, 0, len(violations))
	for _, v := range violations {
		diagnostics = append(diagnostics, lsp.Diagnostic{
			Range:    violationRange(content, v),
			Severity: severityToLSP(v.Severity),
			Code:     v.RuleCode,
			Source:   serverName,
			Message:  v.Message,
		})
	}
	return diagnostics
}

// violationRange converts a violation location to an LSP range.
// Point locations extend to the end of the line so editors underline them.
func violationRange(content []byte, v rules.Violation) lsp.Range {
	r := locationRange(content, v.Location)
	if r.Start == r.End && !v.Location.IsFileLevel() {
		r.End = positionAtOffset(content, lineEnd(content, offsetAt(content, v.Location.Start)))
	}
	return r
}

// locationRange converts a location to an LSP range. Locations use 1-based
// lines and 0-based byte columns; LSP uses 0-based lines and UTF-16 characters.
func locationRange(content []byte, loc rules.Location) lsp.Range {
	if loc.IsFileLevel() {
		return lsp.Range{}
	}
	start := offsetAt(content, loc.Start)
	end := start
	if !loc.IsPointLocation() {
		end = max(offsetAt(content, loc.End), start)
	}
	return lsp.Range{Start: positionAtOffset(content, start), End: positionAtOffset(content, end)}
}

// offsetAt returns the byte offset of p, preferring its recorded offset.
func offsetAt(content []byte, p rules.Position) int {
	if p.Offset >= 0 {
		return min(p.Offset, len(content))
	}
	offset := 0
	for line := 1; line < p.Line; line++ {
		i := bytes.IndexByte(content[offset:], '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}
	return min(offset+max(p.Column, 0), lineEnd(content, offset))
}

func lineEnd(content []byte, offset int) int {
	if i := bytes.IndexByte(content[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(content)
}

// severityToLSP converts a Severity to an LSP DiagnosticSeverity.
func severityToLSP(s rules.Severity) lsp.DiagnosticSeverity {
	switch s {
	case rules.SeverityError:
		return lsp.Error
	case rules.SeverityInfo:
		return lsp.Information
	case rules.SeverityStyle:
		return lsp.Hint
	default:
		return lsp.Warning
	}
}
