package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer accepts one websocket connection and echoes messages back.
func echoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		for {
			typ, data, err := c.Read(r.Context())
			if err != nil {
				return
			}
			if err := c.Write(r.Context(), typ, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSocketRoundTrip(t *testing.T) {
	url := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := DialSocket(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	require.NoError(t, conn.WriteMessage(ctx, msg))
	got, err := conn.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDialSocketFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := DialSocket(ctx, "ws://127.0.0.1:1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket dial")
}

func TestWebSocketCloseIsIdempotent(t *testing.T) {
	url := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := DialSocket(ctx, url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	require.Error(t, conn.WriteMessage(ctx, []byte("{}")))
}

func TestWaitReachable(t *testing.T) {
	url := echoServer(t)
	require.NoError(t, WaitReachable(url, 2*time.Second))
}

func TestWaitReachableTimeout(t *testing.T) {
	err := WaitReachable("ws://127.0.0.1:1", 400*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
