package lspserver

import (
	"os"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/wharflab/sentinel/internal/fix"
	"github.com/wharflab/sentinel/internal/lsp/protocol"
)

const applyAllFixesCommand = "sentinel.applyAllFixes"

// handleExecuteCommand runs sentinel.applyAllFixes, which takes either
// (uri, unsafe?) or one {"uri": ..., "unsafe": ...} object. unsafe widens the
// applied fixes to every safety level.
func (s *Server) handleExecuteCommand(params *lsp.ExecuteCommandParams) (any, error) {
	if params.Command != applyAllFixesCommand {
		return nil, invalidParams("unknown command: " + params.Command)
	}
	uri, unsafe, ok := parseApplyAllFixesArgs(params.Arguments)
	if !ok {
		return nil, invalidParams("invalid command arguments")
	}

	content, err := s.contentForURI(uri)
	if err != nil {
		return nil, nil //nolint:nilnil,nilerr // unreadable file: no edits
	}
	safety := fix.FixSafe
	if unsafe {
		safety = fix.FixUnsafe
	}
	edits := s.computeFixEdits(uri, content, safety)
	if len(edits) == 0 {
		return nil, nil //nolint:nilnil
	}
	return &lsp.WorkspaceEdit{Changes: map[string][]lsp.TextEdit{string(uri): edits}}, nil
}

func invalidParams(msg string) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: msg}
}

func parseApplyAllFixesArgs(args []any) (uri lsp.DocumentURI, unsafe, ok bool) {
	if len(args) == 0 {
		return "", false, false
	}
	var raw string
	switch first := args[0].(type) {
	case string:
		raw = first
		if len(args) > 1 {
			unsafe, _ = args[1].(bool)
		}
	case map[string]any:
		raw, _ = first["uri"].(string)
		unsafe, _ = first["unsafe"].(bool)
	}
	if raw == "" {
		return "", false, false
	}
	return lsp.DocumentURI(raw), unsafe, true
}

// contentForURI prefers the open buffer over the file on disk.
func (s *Server) contentForURI(uri lsp.DocumentURI) ([]byte, error) {
	if doc := s.documents.Get(uri); doc != nil {
		return []byte(doc.Content), nil
	}
	return os.ReadFile(protocol.URIToPath(uri))
}
