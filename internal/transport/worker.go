package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"editbridge/internal/config"
)

// Worker is a background language server owned by the wrapper. A worker is
// created lazily on first start and terminated on dispose unless the caller
// explicitly retains it across a restart.
type Worker interface {
	// Conn returns the message channel to the worker. Repeated calls return
	// the same channel while the worker is alive.
	Conn() (MessageConn, error)
	// Name identifies the worker in logs and status reports.
	Name() string
	// Terminate stops the worker and releases its resources. Safe to call
	// more than once; only the first call acts.
	Terminate() error
}

// ProcessWorker runs a language server as a child process and exposes its
// stdio as a MessageConn.
type ProcessWorker struct {
	opts   config.WorkerOptions
	logger *zap.Logger

	mu         sync.Mutex
	cmd        *exec.Cmd
	conn       *StdioConn
	terminated bool
}

// NewProcessWorker prepares a worker from its options. The process is not
// started until Conn is first called.
func NewProcessWorker(opts config.WorkerOptions, logger *zap.Logger) *ProcessWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := opts.Name
	if name == "" {
		name = opts.Command
	}
	return &ProcessWorker{
		opts:   opts,
		logger: logger.With(zap.String("component", "worker"), zap.String("worker", name)),
	}
}

func (p *ProcessWorker) Name() string {
	if p.opts.Name != "" {
		return p.opts.Name
	}
	return p.opts.Command
}

// Conn starts the child process on first use and returns the stdio channel.
func (p *ProcessWorker) Conn() (MessageConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminated {
		return nil, fmt.Errorf("worker %s already terminated", p.Name())
	}
	if p.conn != nil {
		return p.conn, nil
	}
	if p.opts.Command == "" {
		return nil, fmt.Errorf("worker missing command")
	}

	cmd := exec.Command(p.opts.Command, p.opts.Args...)
	cmd.SysProcAttr = sysProcAttrForGroup()
	// Inherit parent env; overrides replace keys rather than append duplicates.
	if len(p.opts.Env) > 0 {
		em := map[string]string{}
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				em[kv[:i]] = kv[i+1:]
			}
		}
		for k, v := range p.opts.Env {
			em[k] = v
		}
		env := make([]string, 0, len(em))
		for k, v := range em {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, _ := cmd.StderrPipe()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", p.Name(), err)
	}
	// Drain stderr in background so a chatty server cannot block.
	go p.pipeLogs(stderr)

	p.cmd = cmd
	p.conn = NewStdioConn(stdout, stdin, stdin)
	p.logger.Debug("worker started", zap.Int("pid", cmd.Process.Pid))
	return p.conn, nil
}

func (p *ProcessWorker) pipeLogs(r io.ReadCloser) {
	defer r.Close()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		p.logger.Debug("worker stderr", zap.String("line", line))
	}
}

// Terminate closes the stdio channel and stops the process group, escalating
// from interrupt to kill.
func (p *ProcessWorker) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminated {
		return nil
	}
	p.terminated = true
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	pid := p.cmd.Process.Pid
	p.logger.Debug("terminating worker", zap.Int("pid", pid))
	if err := killProcessGroup(pid); err != nil {
		return fmt.Errorf("terminate worker %s: %w", p.Name(), err)
	}
	// Reap; the group kill above already escalated.
	_ = p.cmd.Wait()
	return nil
}
