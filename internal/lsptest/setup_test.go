package lsptest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
	bugst "go.bug.st/lsp"
	"go.bug.st/lsp/textedits"

	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/lspserver"
)

const diagTimeout = 10 * time.Second

// client is one end of a pipe whose other end serves a fresh server.
type client struct {
	conn  *jsonrpc2.Conn
	dir   string
	diags chan *protocol.PublishDiagnosticsParams
}

// Handle queues publishDiagnostics notifications for waitDiagnostics.
func (c *client) Handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != protocol.MethodPublishDiagnostics || req.Params == nil {
		return
	}
	var params protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		panic("publishDiagnostics: " + err.Error())
	}
	c.diags <- &params
}

// dial starts a server without initializing it.
func dial(t *testing.T) *client {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- lspserver.New(nil).Serve(ctx, serverSide) }()

	c := &client{dir: t.TempDir(), diags: make(chan *protocol.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), c)

	t.Cleanup(func() {
		cancel()
		if err := c.conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
			t.Logf("close: %v", err)
		}
		select {
		case <-served:
		case <-time.After(5 * time.Second):
			t.Log("server did not stop")
		}
	})
	return c
}

// connect starts a server and completes the initialize handshake.
func connect(t *testing.T) *client {
	t.Helper()
	c := dial(t)
	c.initialize(t)
	return c
}

func (c *client) initialize(t *testing.T) map[string]any {
	t.Helper()
	var result map[string]any
	c.call(t, protocol.MethodInitialize, &lsp.InitializeParams{ProcessID: 1, RootURI: protocol.PathToURI(c.dir)}, &result)
	c.notify(t, protocol.MethodInitialized, struct{}{})
	return result
}

func (c *client) uri(name string) lsp.DocumentURI {
	return protocol.PathToURI(filepath.Join(c.dir, name))
}

func (c *client) writeConfig(t *testing.T, toml string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, ".sentinel.toml"), []byte(toml), 0o644))
}

func (c *client) call(t *testing.T, method string, params, result any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), diagTimeout)
	defer cancel()
	require.NoError(t, c.conn.Call(ctx, method, params, result))
}

func (c *client) notify(t *testing.T, method string, params any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.conn.Notify(ctx, method, params))
}

func (c *client) waitDiagnostics(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(diagTimeout):
		t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

// open sends didOpen for name and returns the document URI with the
// diagnostics published for it.
func (c *client) open(t *testing.T, name, content string) (lsp.DocumentURI, *protocol.PublishDiagnosticsParams) {
	t.Helper()
	uri := c.uri(name)
	c.notify(t, protocol.MethodDidOpen, &lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "typescript", Version: 1, Text: content},
	})
	return uri, c.waitDiagnostics(t)
}

func (c *client) change(t *testing.T, uri lsp.DocumentURI, version int, content string) {
	t.Helper()
	c.notify(t, protocol.MethodDidChange, &lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: content}},
	})
}

func (c *client) save(t *testing.T, uri lsp.DocumentURI, content string) {
	t.Helper()
	c.notify(t, protocol.MethodDidSave, &protocol.DidSaveTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Text:         &content,
	})
}

func (c *client) close(t *testing.T, uri lsp.DocumentURI) {
	t.Helper()
	c.notify(t, protocol.MethodDidClose, &lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	})
}

func hasCode(diags []lsp.Diagnostic, code string) bool {
	return slices.ContainsFunc(diags, func(d lsp.Diagnostic) bool { return d.Code == code })
}

// applyEdits applies non-overlapping edits to content, last edit first.
func applyEdits(t *testing.T, content string, edits []lsp.TextEdit) string {
	t.Helper()
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b lsp.TextEdit) int {
		if d := b.Range.Start.Line - a.Range.Start.Line; d != 0 {
			return d
		}
		return b.Range.Start.Character - a.Range.Start.Character
	})
	for _, e := range sorted {
		var err error
		content, err = textedits.ApplyTextChange(content, bugst.Range{
			Start: bugst.Position{Line: e.Range.Start.Line, Character: e.Range.Start.Character},
			End:   bugst.Position{Line: e.Range.End.Line, Character: e.Range.End.Character},
		}, e.NewText)
		require.NoError(t, err)
	}
	return content
}
