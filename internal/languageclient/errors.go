package languageclient

import "errors"

// Standard errors returned by the language-client wrapper. Operations
// invoked in the wrong state return these rather than panicking, so callers
// can match with errors.Is.
var (
	// ErrNoClientConfig indicates no language-client configuration exists.
	ErrNoClientConfig = errors.New("no language client config provided")

	// ErrNotRunning indicates the client is not in the running state.
	ErrNotRunning = errors.New("language client not running")

	// ErrDisposed indicates the wrapper has been disposed and is terminal.
	ErrDisposed = errors.New("language client disposed")

	// ErrNoTransport indicates the configuration names no usable transport.
	ErrNoTransport = errors.New("no transport configured")
)
