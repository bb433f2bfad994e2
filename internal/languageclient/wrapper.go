package languageclient

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"editbridge/internal/config"
	"editbridge/internal/transport"
)

// State is the wrapper's lifecycle state.
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateDisposed // terminal
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// RestartOptions steer worker handling across a restart.
type RestartOptions struct {
	// Worker replaces the current worker; the prior one is terminated.
	Worker transport.Worker
	// KeepWorker retains the existing worker handle across the restart and
	// transfers its ownership to the caller: the wrapper will no longer
	// terminate it on dispose. Ignored when Worker is set.
	KeepWorker bool
}

// Wrapper owns a single language-client connection: it picks the configured
// transport, starts/stops/restarts the client, and tracks run state. At most
// one client is running at a time; a restart fully disposes the previous
// connection before creating the next one.
type Wrapper struct {
	mu     sync.Mutex
	state  State
	cfg    *config.LanguageClientOptions
	logger *zap.Logger

	client *Client
	rpc    *transport.RPC

	worker         transport.Worker
	workerRetained bool

	// Seams for tests; production uses the transport package defaults.
	dial      func(ctx context.Context, url string, logger *zap.Logger) (transport.MessageConn, error)
	newWorker func(opts config.WorkerOptions, logger *zap.Logger) transport.Worker
}

// Option configures the wrapper.
type Option func(*Wrapper)

// WithLogger sets the wrapper logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Wrapper) { w.logger = logger }
}

// WithWorker hands an already-constructed worker to the wrapper. The wrapper
// takes ownership, as it does for workers it builds itself.
func WithWorker(worker transport.Worker) Option {
	return func(w *Wrapper) { w.worker = worker }
}

// New creates a wrapper for the given language-client configuration. cfg may
// be nil; Start and Restart then fail with ErrNoClientConfig.
func New(cfg *config.LanguageClientOptions, opts ...Option) *Wrapper {
	w := &Wrapper{
		state: StateUnstarted,
		cfg:   cfg,
		dial: func(ctx context.Context, url string, logger *zap.Logger) (transport.MessageConn, error) {
			return transport.DialSocket(ctx, url, logger)
		},
		newWorker: func(o config.WorkerOptions, logger *zap.Logger) transport.Worker {
			return transport.NewProcessWorker(o, logger)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	w.logger = w.logger.With(zap.String("component", "lc_wrapper"))
	return w
}

// State returns the current lifecycle state.
func (w *Wrapper) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// IsRunning reports whether a client is currently running.
func (w *Wrapper) IsRunning() bool {
	return w.State() == StateRunning
}

// Client returns the running client, or nil.
func (w *Wrapper) Client() *Client {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client
}

// Start builds the configured transport, constructs a client bound to it and
// performs the start handshake. Starting an already-running wrapper is a
// no-op. Failures leave the wrapper stopped and return the wrapped cause.
func (w *Wrapper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateRunning:
		return nil // idempotent
	case StateDisposed:
		return ErrDisposed
	case StateStarting, StateStopping:
		return fmt.Errorf("start rejected in state %s", w.state)
	}
	if w.cfg == nil {
		return ErrNoClientConfig
	}

	w.state = StateStarting
	conn, err := w.buildConnLocked(ctx)
	if err != nil {
		w.state = StateStopped
		return fmt.Errorf("language client start: %w", err)
	}

	rpc := transport.NewRPC(conn, w.logger)
	rpc.OnClose(w.handleRemoteClose)
	rpc.Start(context.Background())

	client := NewClient(rpc, w.logger)
	if err := client.Start(ctx, w.cfg.InitOptions); err != nil {
		_ = rpc.Close()
		w.state = StateStopped
		return fmt.Errorf("language client start: %w", err)
	}

	w.client = client
	w.rpc = rpc
	w.state = StateRunning
	w.logger.Info("language client running", zap.String("transport", w.cfg.Transport))
	if w.cfg.OnStart != nil {
		w.cfg.OnStart()
	}
	return nil
}

// buildConnLocked resolves the transport family and opens the message
// channel. The worker is created lazily and reused if already present.
func (w *Wrapper) buildConnLocked(ctx context.Context) (transport.MessageConn, error) {
	switch w.cfg.Transport {
	case config.TransportSocket:
		endpoint := w.cfg.Endpoint()
		if endpoint == "" {
			return nil, fmt.Errorf("%w: socket transport needs a URL or socket options", ErrNoTransport)
		}
		return w.dial(ctx, endpoint, w.logger)
	case config.TransportWorker:
		if w.worker == nil {
			if w.cfg.Worker == nil {
				return nil, fmt.Errorf("%w: worker transport needs worker options or a handle", ErrNoTransport)
			}
			w.worker = w.newWorker(*w.cfg.Worker, w.logger)
		}
		return w.worker.Conn()
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrNoTransport, w.cfg.Transport)
	}
}

// Restart disposes the current connection, optionally swapping or retaining
// the worker, and starts again. It fails when no language-client
// configuration exists.
func (w *Wrapper) Restart(ctx context.Context, opts RestartOptions) error {
	w.mu.Lock()
	if w.cfg == nil {
		w.mu.Unlock()
		return ErrNoClientConfig
	}
	if w.state == StateDisposed {
		w.mu.Unlock()
		return ErrDisposed
	}

	keepOld := opts.KeepWorker && opts.Worker == nil

	if w.state == StateRunning {
		if err := w.stopLocked(ctx, keepOld); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("restart: %w", err)
		}
	} else if !keepOld && opts.Worker != nil && w.worker != nil && !w.workerRetained {
		// Not running, but a replacement was supplied: the prior worker
		// still has to go down.
		if err := w.worker.Terminate(); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("restart: terminate worker: %w", err)
		}
		w.worker = nil
	}

	if opts.Worker != nil {
		w.worker = opts.Worker
	}
	if keepOld {
		w.workerRetained = true
	}
	w.state = StateStopped
	w.mu.Unlock()

	return w.Start(ctx)
}

// Dispose stops the running client, tears down the transport and, unless the
// worker was explicitly retained, terminates it. Disposing a wrapper that is
// not running fails with a state-mismatch error.
func (w *Wrapper) Dispose(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateDisposed {
		return ErrDisposed
	}
	if w.state != StateRunning {
		return fmt.Errorf("%w: dispose requires a running client (state %s)", ErrNotRunning, w.state)
	}
	if err := w.stopLocked(ctx, w.workerRetained); err != nil {
		return err
	}
	w.state = StateDisposed
	w.logger.Info("language client disposed")
	return nil
}

// stopLocked stops the client and closes the channel. With keepWorker false
// the worker is terminated and dropped; otherwise the handle stays for reuse.
// Must be called with mu held and state Running.
func (w *Wrapper) stopLocked(ctx context.Context, keepWorker bool) error {
	w.state = StateStopping

	var firstErr error
	if w.client != nil {
		if err := w.client.Stop(ctx); err != nil && !w.rpc.IsClosed() {
			firstErr = err
		}
	}
	if w.rpc != nil {
		if err := w.rpc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.client = nil
	w.rpc = nil

	if !keepWorker && !w.workerRetained && w.worker != nil {
		if err := w.worker.Terminate(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.worker = nil
	}

	w.state = StateStopped
	if firstErr != nil {
		return fmt.Errorf("stop language client: %w", firstErr)
	}
	return nil
}

// handleRemoteClose runs when the server side closes the channel: the client
// is stopped, the on-stop hook fires, and a status report is logged. The
// worker goes down with its connection unless the caller retained it; its
// conn is the closed channel, so the next start has to rebuild from config.
func (w *Wrapper) handleRemoteClose(cause error) {
	w.mu.Lock()
	if w.state != StateRunning {
		w.mu.Unlock()
		return
	}
	w.client = nil
	w.rpc = nil
	if w.worker != nil && !w.workerRetained {
		if err := w.worker.Terminate(); err != nil {
			w.logger.Warn("terminate worker after remote close", zap.Error(err))
		}
		w.worker = nil
	}
	w.state = StateStopped
	var onStop func()
	if w.cfg != nil {
		onStop = w.cfg.OnStop
	}
	w.mu.Unlock()

	if onStop != nil {
		onStop()
	}
	w.logger.Warn("language server closed the connection", zap.Error(cause))
}
