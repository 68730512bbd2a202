package lsptest

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/jsonrpc2"

	"github.com/wharflab/sentinel/internal/lsp/protocol"
	"github.com/wharflab/sentinel/internal/lspserver"
)

type pipeDialer struct{ rwc io.ReadWriteCloser }

func (d pipeDialer) Dial(context.Context) (io.ReadWriteCloser, error) {
	return d.rwc, nil
}

// TestLSP_HeaderFramerClient drives the server with an independent JSON-RPC
// implementation speaking Content-Length framing.
func TestLSP_HeaderFramerClient(t *testing.T) {
	t.Parallel()

	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), diagTimeout)
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- lspserver.New(nil).Serve(ctx, serverSide) }()

	diags := make(chan protocol.PublishDiagnosticsParams, 4)
	conn, err := jsonrpc2.Dial(ctx, pipeDialer{rwc: clientSide}, jsonrpc2.ConnectionOptions{
		Framer: jsonrpc2.HeaderFramer(),
		Handler: jsonrpc2.HandlerFunc(func(_ context.Context, req *jsonrpc2.Request) (any, error) {
			if req.Method == protocol.MethodPublishDiagnostics {
				var params protocol.PublishDiagnosticsParams
				if err := json.Unmarshal(req.Params, &params); err == nil {
					diags <- params
				}
			}
			return nil, nil //nolint:nilnil
		}),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		select {
		case <-served:
		case <-time.After(5 * time.Second):
			t.Log("server did not stop")
		}
	})

	dir := t.TempDir()
	var result map[string]any
	require.NoError(t, conn.Call(ctx, protocol.MethodInitialize, &lsp.InitializeParams{
		ProcessID: 1,
		RootURI:   protocol.PathToURI(dir),
	}).Await(ctx, &result))
	assert.Contains(t, result, "capabilities")
	require.NoError(t, conn.Notify(ctx, protocol.MethodInitialized, struct{}{}))

	uri := protocol.PathToURI(filepath.Join(dir, "interop.ts"))
	require.NoError(t, conn.Notify(ctx, protocol.MethodDidOpen, &lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "typescript", Version: 1, Text: fixable},
	}))

	select {
	case d := <-diags:
		assert.Equal(t, uri, d.URI)
		require.Len(t, d.Diagnostics, 2)
		assert.Equal(t, sizeCheck, d.Diagnostics[0].Code)
	case <-ctx.Done():
		t.Fatal("timed out waiting for diagnostics")
	}

	var shutdown any
	require.NoError(t, conn.Call(ctx, protocol.MethodShutdown, nil).Await(ctx, &shutdown))
	assert.Nil(t, shutdown)
}
