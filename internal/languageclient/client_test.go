package languageclient

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editbridge/internal/transport"
)

func startedClient(t *testing.T, initOptions json.RawMessage) (*Client, *serverConn) {
	t.Helper()
	conn := newServerConn()
	rpc := transport.NewRPC(conn, nil)
	rpc.Start(context.Background())
	t.Cleanup(func() { _ = rpc.Close() })

	c := NewClient(rpc, nil)
	require.NoError(t, c.Start(context.Background(), initOptions))
	return c, conn
}

func TestClientHandshake(t *testing.T) {
	c, conn := startedClient(t, json.RawMessage(`{"trace":"off"}`))

	assert.True(t, c.IsRunning())
	assert.Equal(t, "fake-ls", c.ServerName())
	assert.JSONEq(t, `{"textDocumentSync":1}`, string(c.Capabilities()))
	assert.True(t, conn.sawMethod("initialized"))

	var req struct {
		Params struct {
			ProcessID  int `json:"processId"`
			ClientInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"clientInfo"`
			InitializationOptions json.RawMessage `json:"initializationOptions"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(conn.lastPayload("initialize"), &req))
	assert.Equal(t, clientName, req.Params.ClientInfo.Name)
	assert.Equal(t, Version, req.Params.ClientInfo.Version)
	assert.NotZero(t, req.Params.ProcessID)
	assert.JSONEq(t, `{"trace":"off"}`, string(req.Params.InitializationOptions))
}

func TestClientStopSendsShutdownAndExit(t *testing.T) {
	c, conn := startedClient(t, nil)

	require.NoError(t, c.Stop(context.Background()))
	assert.False(t, c.IsRunning())
	assert.True(t, conn.sawMethod("shutdown"))
	assert.True(t, conn.sawMethod("exit"))
}

func TestClientDocumentSync(t *testing.T) {
	c, conn := startedClient(t, nil)
	ctx := context.Background()

	require.NoError(t, c.DidOpen(ctx, "inmemory://model/1", "json", "{}"))
	require.NoError(t, c.DidChange(ctx, "inmemory://model/1", 2, "{ }"))
	require.NoError(t, c.DidClose(ctx, "inmemory://model/1"))

	var open struct {
		Params didOpenParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal(conn.lastPayload("textDocument/didOpen"), &open))
	assert.Equal(t, "inmemory://model/1", open.Params.TextDocument.URI)
	assert.Equal(t, "json", open.Params.TextDocument.LanguageID)
	assert.Equal(t, 1, open.Params.TextDocument.Version)
	assert.Equal(t, "{}", open.Params.TextDocument.Text)

	var change struct {
		Params didChangeParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal(conn.lastPayload("textDocument/didChange"), &change))
	assert.Equal(t, 2, change.Params.TextDocument.Version)
	require.Len(t, change.Params.ContentChanges, 1)
	assert.Equal(t, "{ }", change.Params.ContentChanges[0].Text)

	assert.True(t, conn.sawMethod("textDocument/didClose"))
}

func TestClientDiagnostics(t *testing.T) {
	c, conn := startedClient(t, nil)

	got := make(chan json.RawMessage, 1)
	c.OnDiagnostics(func(params json.RawMessage) { got <- params })

	conn.incoming <- []byte(`{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{"uri":"inmemory://model/1","diagnostics":[]}}`)

	select {
	case params := <-got:
		assert.Contains(t, string(params), "inmemory://model/1")
	case <-time.After(2 * time.Second):
		t.Fatal("diagnostics handler never fired")
	}
}
