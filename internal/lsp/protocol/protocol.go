// Package protocol holds the LSP 3.17 messages the server needs that
// github.com/sourcegraph/go-lsp does not model, plus URI helpers.
package protocol

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sourcegraph/go-lsp"
)

// Methods handled or sent by the server.
const (
	MethodInitialize             = "initialize"
	MethodInitialized            = "initialized"
	MethodShutdown               = "shutdown"
	MethodExit                   = "exit"
	MethodSetTrace               = "$/setTrace"
	MethodCancelRequest          = "$/cancelRequest"
	MethodDidOpen                = "textDocument/didOpen"
	MethodDidChange              = "textDocument/didChange"
	MethodDidSave                = "textDocument/didSave"
	MethodDidClose               = "textDocument/didClose"
	MethodCodeAction             = "textDocument/codeAction"
	MethodFormatting             = "textDocument/formatting"
	MethodPublishDiagnostics     = "textDocument/publishDiagnostics"
	MethodExecuteCommand         = "workspace/executeCommand"
	MethodDidChangeConfiguration = "workspace/didChangeConfiguration"
)

// CodeActionKindSourceFixAll is the LSP 3.15 fix-all kind.
const CodeActionKindSourceFixAll lsp.CodeActionKind = "source.fixAll"

// DidSaveTextDocumentParams carries the saved text when the server asked
// for it with SaveOptions.IncludeText.
type DidSaveTextDocumentParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Text         *string                    `json:"text,omitempty"`
}

// CodeActionContext adds the kind filter of LSP 3.15.
type CodeActionContext struct {
	Diagnostics []lsp.Diagnostic     `json:"diagnostics"`
	Only        []lsp.CodeActionKind `json:"only,omitempty"`
}

// CodeActionParams is the request of textDocument/codeAction.
type CodeActionParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Range        lsp.Range                  `json:"range"`
	Context      CodeActionContext          `json:"context"`
}

// CodeAction is a literal code action carrying a workspace edit.
type CodeAction struct {
	Title       string             `json:"title"`
	Kind        lsp.CodeActionKind `json:"kind,omitempty"`
	Diagnostics []lsp.Diagnostic   `json:"diagnostics,omitempty"`
	IsPreferred bool               `json:"isPreferred,omitempty"`
	Edit        *lsp.WorkspaceEdit `json:"edit,omitempty"`
}

// CodeActionOptions advertises the code action kinds the server returns.
type CodeActionOptions struct {
	CodeActionKinds []lsp.CodeActionKind `json:"codeActionKinds,omitempty"`
}

// ServerCapabilities replaces the boolean code action provider of
// lsp.ServerCapabilities with CodeActionOptions.
type ServerCapabilities struct {
	TextDocumentSync           *lsp.TextDocumentSyncOptionsOrKind `json:"textDocumentSync,omitempty"`
	CodeActionProvider         *CodeActionOptions                 `json:"codeActionProvider,omitempty"`
	DocumentFormattingProvider bool                               `json:"documentFormattingProvider,omitempty"`
	ExecuteCommandProvider     *lsp.ExecuteCommandOptions         `json:"executeCommandProvider,omitempty"`
}

// ServerInfo names the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the response to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// PublishDiagnosticsParams adds the document version of LSP 3.15.
type PublishDiagnosticsParams struct {
	URI         lsp.DocumentURI  `json:"uri"`
	Version     *int             `json:"version,omitempty"`
	Diagnostics []lsp.Diagnostic `json:"diagnostics"`
}

// URIToPath converts a file:// URI to a local file path.
func URIToPath(uri lsp.DocumentURI) string {
	parsed, err := url.Parse(string(uri))
	if err != nil {
		return strings.TrimPrefix(string(uri), "file://")
	}
	path := parsed.Path
	if runtime.GOOS == "windows" {
		// UNC paths: file://server/share/path → \\server\share\path
		if parsed.Host != "" {
			path = `//` + parsed.Host + path
		}
		// Drive-letter paths: file:///C:/path → Path is /C:/path, strip leading /.
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
	}
	return filepath.FromSlash(path)
}

// PathToURI converts an absolute file path to a file:// URI.
func PathToURI(path string) lsp.DocumentURI {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return lsp.DocumentURI((&url.URL{Scheme: "file", Path: slashed}).String())
}
