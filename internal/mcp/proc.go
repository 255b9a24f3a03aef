// ABOUTME: Child process lifecycle: spawn with startup grace, idempotent termination
// ABOUTME: Owns the OS process handle and its stdin/stdout pipes for the stdio transport

package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	// startupGrace gives a freshly spawned server a moment to come up before
	// the first request. Liveness is confirmed by the initialize handshake,
	// not here.
	startupGrace = 200 * time.Millisecond

	// stopWait bounds how long stop waits for a clean exit after closing
	// stdin before killing the process.
	stopWait = 2 * time.Second
)

// childProcess holds a spawned MCP server process and its RPC pipes.
// It is owned by the stdio transport; no other component touches the pipes.
type childProcess struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stopOnce sync.Once
}

// startProcess spawns the given command with its stdin/stdout piped, waits
// the startup grace period, and returns the handle.
func startProcess(ctx context.Context, command string, args, env []string) (*childProcess, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting MCP server %q: %w", command, err)
	}

	p := &childProcess{cmd: cmd, stdin: stdin, stdout: stdout}

	select {
	case <-time.After(startupGrace):
	case <-ctx.Done():
		p.stop()
		return nil, ctx.Err()
	}

	return p, nil
}

// stop terminates the child process. Safe to call multiple times and on a
// process that already exited: stdin is closed to signal shutdown, then the
// process is killed if it does not exit within stopWait. Errors from an
// already-dead process are ignored.
func (p *childProcess) stop() {
	p.stopOnce.Do(func() {
		_ = p.stdin.Close()

		done := make(chan struct{})
		go func() {
			_ = p.cmd.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(stopWait):
			_ = p.cmd.Process.Kill()
			<-done
		}
	})
}
