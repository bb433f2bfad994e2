package transport

import "context"

// MessageConn is a single logical message channel carrying language-server
// protocol payloads. Implementations deliver whole JSON messages; framing is
// their concern (WebSocket frames, or Content-Length headers over stdio).
//
// Write is safe for concurrent use; Read is driven by a single reader
// (the RPC receive loop).
type MessageConn interface {
	ReadMessage(ctx context.Context) ([]byte, error)
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}
