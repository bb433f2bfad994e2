package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// StdioConn carries LSP messages over a reader/writer pair using the base
// protocol's Content-Length framing. It is the message channel for the
// worker transport, where the peer is a child process's stdio.
type StdioConn struct {
	reader *bufio.Reader

	wmu    sync.Mutex
	writer io.Writer
	closer io.Closer
	closed bool
}

// NewStdioConn frames messages over r/w. closer, if non-nil, is closed
// exactly once when the conn closes (typically the process's stdin pipe).
func NewStdioConn(r io.Reader, w io.Writer, closer io.Closer) *StdioConn {
	return &StdioConn{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
		closer: closer,
	}
}

// ReadMessage reads one framed message. The read itself is blocking; ctx is
// only consulted between messages, matching the single-reader contract.
func (s *StdioConn) ReadMessage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break // end of headers
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
					contentLength = n
				}
			}
		}
		// Content-Type and other headers are ignored.
	}
	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (s *StdioConn) WriteMessage(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.closed {
		return fmt.Errorf("connection closed")
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(s.writer, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (s *StdioConn) Close() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
