package languageclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"editbridge/internal/transport"
)

const clientName = "editbridge"

// Client is one logical language-server connection bound to an RPC channel.
// Start performs the initialize handshake; Stop performs the shutdown
// sequence. Document sync notifications are offered for the editor app.
type Client struct {
	rpc    *transport.RPC
	logger *zap.Logger

	mu           sync.Mutex
	running      bool
	capabilities json.RawMessage
	serverName   string
}

// NewClient binds a client to an already-started RPC channel.
func NewClient(rpc *transport.RPC, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:    rpc,
		logger: logger.With(zap.String("component", "language_client")),
	}
}

// Start performs initialize followed by the initialized notification.
// initOptions is passed through untouched.
func (c *Client) Start(ctx context.Context, initOptions json.RawMessage) error {
	params := initializeParams{
		ProcessID:             os.Getpid(),
		ClientInfo:            clientInfo{Name: clientName, Version: Version},
		RootURI:               nil,
		Capabilities:          map[string]any{},
		InitializationOptions: initOptions,
	}

	var result InitializeResult
	if err := c.rpc.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := c.rpc.Notify(ctx, "initialized", struct{}{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}

	c.mu.Lock()
	c.running = true
	c.capabilities = result.Capabilities
	if result.ServerInfo != nil {
		c.serverName = result.ServerInfo.Name
	}
	c.mu.Unlock()

	c.logger.Debug("language client started", zap.String("server", c.serverName))
	return nil
}

// Stop performs shutdown and the exit notification. The exit notification is
// sent even when shutdown fails so the server is not left hanging.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	shutdownErr := c.rpc.Call(ctx, "shutdown", nil, nil)
	if err := c.rpc.Notify(ctx, "exit", nil); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}

// IsRunning reports whether the handshake completed and Stop was not called.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Capabilities returns the raw server capabilities from initialize.
func (c *Client) Capabilities() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capabilities
}

// ServerName returns the server's self-reported name, if any.
func (c *Client) ServerName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverName
}

// DidOpen announces a document to the server.
func (c *Client) DidOpen(ctx context.Context, uri, languageID, text string) error {
	return c.rpc.Notify(ctx, "textDocument/didOpen", didOpenParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

// DidChange sends a full-document change.
func (c *Client) DidChange(ctx context.Context, uri string, version int, text string) error {
	return c.rpc.Notify(ctx, "textDocument/didChange", didChangeParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []contentChangeEvent{{Text: text}},
	})
}

// DidClose retracts a document from the server.
func (c *Client) DidClose(ctx context.Context, uri string) error {
	return c.rpc.Notify(ctx, "textDocument/didClose", didCloseParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})
}

// OnDiagnostics registers a handler for published diagnostics. Params are
// passed raw; interpretation is the caller's concern.
func (c *Client) OnDiagnostics(handler func(params json.RawMessage)) {
	c.rpc.OnNotification("textDocument/publishDiagnostics", func(_ string, params json.RawMessage) {
		handler(params)
	})
}

// Version is the client version reported during initialize.
const Version = "0.3.0"
