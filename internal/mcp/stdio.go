// ABOUTME: Stdio transport for MCP: spawns a process and speaks JSON-RPC over stdin/stdout
// ABOUTME: Newline-delimited JSON messages with a 10MB scanner buffer

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

const maxScannerBuffer = 10 * 1024 * 1024 // 10MB

// StdioTransport communicates with an MCP server via stdin/stdout of a
// spawned process. The client issues requests strictly sequentially, so at
// most one request is ever in flight on the pipe.
type StdioTransport struct {
	proc    *childProcess
	scanner *bufio.Scanner

	incoming  chan json.RawMessage
	pending   map[int64]chan *Response
	mu        sync.Mutex
	nextID    atomic.Int64
	done      chan struct{}
	recvDone  chan struct{}
	closeOnce sync.Once
}

// NewStdioTransport spawns the given command and wires a transport to its
// standard streams.
func NewStdioTransport(ctx context.Context, command string, args, env []string) (*StdioTransport, error) {
	proc, err := startProcess(ctx, command, args, env)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(proc.stdout)
	scanner.Buffer(make([]byte, 0, maxScannerBuffer), maxScannerBuffer)

	t := &StdioTransport{
		proc:     proc,
		scanner:  scanner,
		incoming: make(chan json.RawMessage, 64),
		pending:  make(map[int64]chan *Response),
		done:     make(chan struct{}),
		recvDone: make(chan struct{}),
	}

	go t.recvLoop()
	return t, nil
}

// Send sends a request and waits for the matching response. Request ids come
// from a monotonic counter, so an id never collides with one still in flight.
// The wait has no deadline of its own; callers bound it via ctx.
func (t *StdioTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	req.JSONRPC = jsonRPCVersion
	if req.ID == 0 {
		req.ID = t.nextID.Add(1)
	}

	ch := make(chan *Response, 1)
	t.mu.Lock()
	t.pending[req.ID] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, req.ID)
		t.mu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	data = append(data, '\n')

	if _, err := t.proc.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-ch:
		return resp, nil
	case <-t.done:
		return nil, fmt.Errorf("transport closed")
	case <-t.recvDone:
		// The server's stdout reached EOF; no response is coming.
		return nil, fmt.Errorf("server closed the connection")
	}
}

// Notify sends a notification (no response expected).
func (t *StdioTransport) Notify(_ context.Context, notif *Notification) error {
	notif.JSONRPC = jsonRPCVersion

	data, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}
	data = append(data, '\n')

	if _, err := t.proc.stdin.Write(data); err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}
	return nil
}

// Receive returns a channel of incoming notifications.
func (t *StdioTransport) Receive() <-chan json.RawMessage {
	return t.incoming
}

// Close shuts down the transport and terminates the child process. Safe to
// call multiple times.
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.proc.stop()
	})
	return nil
}

// recvLoop reads JSON-RPC messages from stdout and dispatches them. When the
// stream ends, recvDone unblocks every in-flight Send.
func (t *StdioTransport) recvLoop() {
	defer close(t.incoming)
	defer close(t.recvDone)

	for t.scanner.Scan() {
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// A message with an "id" field is a response to a pending request.
		var resp Response
		if err := json.Unmarshal(line, &resp); err == nil && resp.ID != 0 {
			t.mu.Lock()
			ch, ok := t.pending[resp.ID]
			t.mu.Unlock()
			if ok {
				ch <- &resp
			}
			continue
		}

		// Otherwise treat as notification.
		select {
		case t.incoming <- json.RawMessage(append([]byte(nil), line...)):
		default:
			// Drop if buffer full.
		}
	}
}
