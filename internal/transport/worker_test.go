//go:build !windows

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editbridge/internal/config"
)

func TestProcessWorkerName(t *testing.T) {
	w := NewProcessWorker(config.WorkerOptions{Command: "gopls"}, nil)
	assert.Equal(t, "gopls", w.Name())

	w = NewProcessWorker(config.WorkerOptions{Command: "gopls", Name: "go language server"}, nil)
	assert.Equal(t, "go language server", w.Name())
}

func TestProcessWorkerMissingCommand(t *testing.T) {
	w := NewProcessWorker(config.WorkerOptions{}, nil)
	_, err := w.Conn()
	require.Error(t, err)
}

// cat echoes stdin to stdout, so a framed message comes straight back.
func TestProcessWorkerRoundTrip(t *testing.T) {
	w := NewProcessWorker(config.WorkerOptions{Command: "cat"}, nil)
	defer w.Terminate() //nolint:errcheck

	conn, err := w.Conn()
	require.NoError(t, err)

	again, err := w.Conn()
	require.NoError(t, err)
	assert.Same(t, conn, again, "repeated Conn returns the same channel")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	require.NoError(t, conn.WriteMessage(ctx, msg))
	got, err := conn.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestProcessWorkerTerminate(t *testing.T) {
	w := NewProcessWorker(config.WorkerOptions{Command: "cat"}, nil)
	_, err := w.Conn()
	require.NoError(t, err)

	require.NoError(t, w.Terminate())
	require.NoError(t, w.Terminate(), "terminate is idempotent")

	_, err = w.Conn()
	require.Error(t, err, "terminated workers stay down")
}

func TestProcessWorkerStartFailure(t *testing.T) {
	w := NewProcessWorker(config.WorkerOptions{Command: "/definitely/not/a/binary"}, nil)
	_, err := w.Conn()
	require.Error(t, err)
}
