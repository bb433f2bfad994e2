package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrConnClosed is returned for operations on a closed RPC channel.
var ErrConnClosed = errors.New("rpc connection closed")

// NotificationHandler handles incoming notifications from the server.
type NotificationHandler func(method string, params json.RawMessage)

// Request represents a JSON-RPC request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error from the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPC implements JSON-RPC 2.0 request/response correlation over a
// MessageConn. One RPC owns its conn: it runs the single receive loop and
// closes the conn when it closes.
type RPC struct {
	conn   MessageConn
	logger *zap.Logger

	mu       sync.Mutex
	nextID   atomic.Int64
	pending  map[int64]chan *Response
	handlers map[string]NotificationHandler
	onClose  func(err error)

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewRPC creates the correlation layer over conn.
func NewRPC(conn MessageConn, logger *zap.Logger) *RPC {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPC{
		conn:     conn,
		logger:   logger.With(zap.String("component", "rpc")),
		pending:  make(map[int64]chan *Response),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins the receive loop.
func (r *RPC) Start(ctx context.Context) {
	go r.readLoop(ctx)
}

// OnClose registers a handler invoked exactly once when the channel closes
// from the remote end (EOF or read failure). It is not invoked for local
// Close calls.
func (r *RPC) OnClose(fn func(err error)) {
	r.mu.Lock()
	r.onClose = fn
	r.mu.Unlock()
}

// OnNotification registers a handler for server notifications. "*" matches
// any method without a dedicated handler.
func (r *RPC) OnNotification(method string, handler NotificationHandler) {
	r.mu.Lock()
	r.handlers[method] = handler
	r.mu.Unlock()
}

// Call sends a request and waits for the matching response.
func (r *RPC) Call(ctx context.Context, method string, params any, result any) error {
	if r.closed.Load() {
		return ErrConnClosed
	}

	id := r.nextID.Add(1)
	ch := make(chan *Response, 1)

	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	req := &Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	if err := r.send(ctx, req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrConnClosed
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}
}

// Notify sends a notification (no response expected).
func (r *RPC) Notify(ctx context.Context, method string, params any) error {
	if r.closed.Load() {
		return ErrConnClosed
	}
	return r.send(ctx, &Request{JSONRPC: "2.0", Method: method, Params: params})
}

// Close tears down the channel locally. Pending calls are released with
// ErrConnClosed; the OnClose handler is not invoked.
func (r *RPC) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.closeOnce.Do(func() { close(r.done) })

	// Release pending callers; channels are left open so a racing
	// handleResponse cannot panic.
	r.mu.Lock()
	r.pending = make(map[int64]chan *Response)
	r.mu.Unlock()

	return r.conn.Close()
}

// IsClosed reports whether the channel has been closed from either end.
func (r *RPC) IsClosed() bool {
	return r.closed.Load()
}

func (r *RPC) send(ctx context.Context, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return r.conn.WriteMessage(ctx, data)
}

func (r *RPC) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		default:
		}

		msg, err := r.conn.ReadMessage(ctx)
		if err != nil {
			if r.closed.Load() || ctx.Err() != nil {
				return
			}
			// Remote end closed the channel.
			r.handleRemoteClose(err)
			return
		}
		r.dispatch(msg)
	}
}

// handleRemoteClose marks the channel closed and fires the close handler.
func (r *RPC) handleRemoteClose(err error) {
	if r.closed.Swap(true) {
		return
	}
	r.closeOnce.Do(func() { close(r.done) })

	r.mu.Lock()
	r.pending = make(map[int64]chan *Response)
	onClose := r.onClose
	r.mu.Unlock()

	r.logger.Debug("remote closed connection", zap.Error(err))
	_ = r.conn.Close()
	if onClose != nil {
		onClose(err)
	}
}

func (r *RPC) dispatch(data json.RawMessage) {
	var probe struct {
		ID     *int64          `json:"id"`
		Method string          `json:"method"`
		Error  *RPCError       `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}

	// An ID plus a result or error marks a response.
	if probe.ID != nil && (probe.Result != nil || probe.Error != nil) {
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return
		}
		r.handleResponse(&resp)
		return
	}

	if probe.Method != "" {
		var notif notification
		if err := json.Unmarshal(data, &notif); err != nil {
			return
		}
		r.handleNotification(&notif)
	}
}

func (r *RPC) handleResponse(resp *Response) {
	if r.closed.Load() {
		return
	}
	r.mu.Lock()
	ch, ok := r.pending[resp.ID]
	if ok {
		delete(r.pending, resp.ID)
	}
	r.mu.Unlock()

	if ok {
		select {
		case ch <- resp:
		default:
		}
	}
}

func (r *RPC) handleNotification(notif *notification) {
	r.mu.Lock()
	handler, ok := r.handlers[notif.Method]
	if !ok {
		handler, ok = r.handlers["*"]
	}
	r.mu.Unlock()

	if ok && handler != nil {
		// Run in a goroutine so a slow handler cannot block the read loop.
		go handler(notif.Method, notif.Params)
	}
}
