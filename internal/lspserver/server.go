// Package lspserver implements a Language Server Protocol server for sentinel.
//
// The server publishes lint diagnostics for open TypeScript documents, offers
// quick-fix and fix-all code actions, and formats documents by applying safe
// fixes. It reuses the CLI lint pipeline (parse, scope analysis, rules,
// processors, fixer).
//
// Transport: stdio. Protocol: types from github.com/sourcegraph/go-lsp plus
// internal/lsp/protocol, JSON-RPC via github.com/sourcegraph/jsonrpc2.
package lspserver

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/rules"
	"github.com/wharflab/sentinel/internal/version"
)

const serverName = "sentinel"

// Server is the sentinel LSP server.
type Server struct {
	documents *DocumentStore
	lintCache *versionCache[[]rules.Violation]
	log       logrus.FieldLogger
	routes    map[string]route
}

// route handles one JSON-RPC method.
type route func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error)

// New creates a server. A nil log discards server logs.
func New(log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Server{
		documents: NewDocumentStore(),
		lintCache: newVersionCache[[]rules.Violation](),
		log:       log,
	}
	s.routes = s.buildRoutes()
	return s
}

func (s *Server) buildRoutes() map[string]route {
	ignore := func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
		return nil, nil //nolint:nilnil // notifications and shutdown answer null
	}
	return map[string]route{
		protocol.MethodInitialize:     request(s.handleInitialize),
		protocol.MethodInitialized:    ignore,
		protocol.MethodSetTrace:       ignore,
		protocol.MethodCancelRequest:  ignore,
		protocol.MethodShutdown:       ignore,
		protocol.MethodExit: func(_ context.Context, conn *jsonrpc2.Conn, _ *jsonrpc2.Request) (any, error) {
			return nil, conn.Close()
		},

		protocol.MethodDidOpen:   notification(s.handleDidOpen),
		protocol.MethodDidChange: notification(s.handleDidChange),
		protocol.MethodDidSave:   notification(s.handleDidSave),
		protocol.MethodDidClose:  notification(s.handleDidClose),

		protocol.MethodCodeAction:             request(s.handleCodeAction),
		protocol.MethodFormatting:             request(s.handleFormatting),
		protocol.MethodExecuteCommand:         request(s.handleExecuteCommand),
		protocol.MethodDidChangeConfiguration: notification(s.handleDidChangeConfiguration),
	}
}

// RunStdio serves on stdin and stdout until the client disconnects or ctx
// is done.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Serve(ctx, stdioReadWriteCloser{})
}

// Serve speaks the protocol over rwc until the peer disconnects or ctx is
// done.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.DisconnectNotify():
		return nil
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	r, ok := s.routes[req.Method]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
	}
	return r(ctx, conn, req)
}

func decodeParams[T any](req *jsonrpc2.Request) (*T, error) {
	params := new(T)
	if req.Params == nil {
		return params, nil
	}
	if err := json.Unmarshal(*req.Params, params); err != nil {
		return nil, invalidParams(err.Error())
	}
	return params, nil
}

// request adapts a handler that answers with a result.
func request[T any](fn func(*T) (any, error)) route {
	return func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		params, err := decodeParams[T](req)
		if err != nil {
			return nil, err
		}
		return fn(params)
	}
}

// notification adapts a handler that only acts, possibly publishing back
// over conn.
func notification[T any](fn func(context.Context, *jsonrpc2.Conn, *T)) route {
	return func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		params, err := decodeParams[T](req)
		if err != nil {
			return nil, err
		}
		fn(ctx, conn, params)
		return nil, nil //nolint:nilnil
	}
}

// handleDidChangeConfiguration drops cached results and re-lints every open
// document. Settings themselves come from .sentinel.toml.
func (s *Server) handleDidChangeConfiguration(ctx context.Context, conn *jsonrpc2.Conn, _ *lsp.DidChangeConfigurationParams) {
	s.lintCache.clear()
	for _, doc := range s.documents.All() {
		s.publishDiagnostics(ctx, conn, doc)
	}
}

// handleInitialize responds to the initialize request with server capabilities.
func (s *Server) handleInitialize(params *lsp.InitializeParams) (any, error) {
	s.log.WithField("pid", params.ProcessID).Info("lsp: initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
					Save:      &lsp.SaveOptions{IncludeText: true},
				},
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []lsp.CodeActionKind{lsp.CAKQuickFix, fixAllCodeActionKind},
			},
			DocumentFormattingProvider: true,
			ExecuteCommandProvider: &lsp.ExecuteCommandOptions{
				Commands: []string{applyAllFixesCommand},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.RawVersion(),
		},
	}, nil
}

func (s *Server) handleDidOpen(ctx context.Context, conn *jsonrpc2.Conn, params *lsp.DidOpenTextDocumentParams) {
	item := params.TextDocument
	s.documents.Open(item.URI, item.LanguageID, item.Version, item.Text)
	if doc := s.documents.Get(item.URI); doc != nil {
		s.publishDiagnostics(ctx, conn, doc)
	}
}

// handleDidChange replaces the text; with full sync the last change carries
// the whole document.
func (s *Server) handleDidChange(ctx context.Context, conn *jsonrpc2.Conn, params *lsp.DidChangeTextDocumentParams) {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		s.documents.Update(uri, params.TextDocument.Version, change.Text)
	}

	if doc := s.documents.Get(uri); doc != nil {
		s.publishDiagnostics(ctx, conn, doc)
	}
}

// handleDidSave re-lints from scratch since config files may have changed
// on disk.
func (s *Server) handleDidSave(ctx context.Context, conn *jsonrpc2.Conn, params *protocol.DidSaveTextDocumentParams) {
	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}
	if params.Text != nil && *params.Text != doc.Content {
		s.documents.Update(uri, doc.Version, *params.Text)
		doc = s.documents.Get(uri)
	}
	s.lintCache.delete(uri)
	s.publishDiagnostics(ctx, conn, doc)
}

func (s *Server) handleDidClose(ctx context.Context, conn *jsonrpc2.Conn, params *lsp.DidCloseTextDocumentParams) {
	uri := params.TextDocument.URI
	s.documents.Close(uri)
	s.lintCache.delete(uri)
	s.clearDiagnostics(ctx, conn, uri)
}

// handleCodeAction offers quick fixes and fix-all; null means none.
func (s *Server) handleCodeAction(params *protocol.CodeActionParams) (any, error) {
	if doc := s.documents.Get(params.TextDocument.URI); doc != nil {
		if actions := s.codeActionsForDocument(doc, params); len(actions) > 0 {
			return actions, nil
		}
	}
	return nil, nil //nolint:nilnil
}

// stdioReadWriteCloser joins stdin and stdout; closing is left to the process.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
