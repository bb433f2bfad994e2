package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// WebSocketConn adapts a websocket connection to MessageConn. Writes are
// serialized through a mutex because the underlying connection does not
// support concurrent writers.
type WebSocketConn struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// DialSocket opens a WebSocket connection to the given ws:// or wss:// URL.
// The dial is bounded by ctx; callers get the underlying cause on failure.
func DialSocket(ctx context.Context, url string, logger *zap.Logger) (*WebSocketConn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	return NewWebSocketConn(conn, logger), nil
}

// NewWebSocketConn wraps an already-established websocket connection.
func NewWebSocketConn(conn *websocket.Conn, logger *zap.Logger) *WebSocketConn {
	if logger == nil {
		logger = zap.NewNop()
	}
	// LSP messages can exceed the library's 32KiB default.
	conn.SetReadLimit(16 * 1024 * 1024)
	return &WebSocketConn{
		conn:   conn,
		logger: logger.With(zap.String("component", "ws_conn")),
	}
}

func (w *WebSocketConn) ReadMessage(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("websocket read: %w", err)
	}
	return data, nil
}

func (w *WebSocketConn) WriteMessage(ctx context.Context, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("connection closed")
	}
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (w *WebSocketConn) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.logger.Debug("closing websocket")
	return w.conn.Close(websocket.StatusNormalClosure, "closing")
}
