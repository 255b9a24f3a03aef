// ABOUTME: MCP client implementing the initialize handshake, tool listing, and tool calling
// ABOUTME: Handshake and discovery failures surface as typed errors for built-in fallback

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mauromedda/mcp-agent-go/internal/log"
)

// handshakeTimeout bounds how long the initialize exchange may take. Without
// it an unresponsive child would hang the caller before any tool is offered.
const handshakeTimeout = 10 * time.Second

// Client communicates with a single MCP server.
type Client struct {
	name       string
	transport  Transport
	serverCaps ServerCapabilities
	serverInfo ServerInfo
	tools      []ServerTool

	mu        sync.RWMutex
	connected bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates an MCP client for the named server over the given
// transport.
func NewClient(name string, transport Transport) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		name:      name,
		transport: transport,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Name returns the configured server name.
func (c *Client) Name() string {
	return c.name
}

// Connect performs the MCP initialize handshake. A missing result, an error
// response, or a timeout yields a *HandshakeError.
func (c *Client) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	params, _ := json.Marshal(map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]string{
			"name":    "mcp-agent",
			"version": "1.0.0",
		},
	})

	resp, err := c.transport.Send(ctx, &Request{
		Method: "initialize",
		Params: params,
	})
	if err != nil {
		return &HandshakeError{Server: c.name, Err: err}
	}
	if resp.Error != nil {
		return &HandshakeError{Server: c.name, Err: resp.Error}
	}
	if len(resp.Result) == 0 {
		return &HandshakeError{Server: c.name, Err: fmt.Errorf("response missing result")}
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return &HandshakeError{Server: c.name, Err: fmt.Errorf("parsing initialize result: %w", err)}
	}

	c.mu.Lock()
	c.serverCaps = result.Capabilities
	c.serverInfo = result.ServerInfo
	c.connected = true
	c.mu.Unlock()

	if err := c.transport.Notify(ctx, &Notification{Method: "notifications/initialized"}); err != nil {
		return &HandshakeError{Server: c.name, Err: fmt.Errorf("initialized notification: %w", err)}
	}

	go c.handleNotifications()

	return nil
}

// ListTools requests the tool list from the server. A malformed or missing
// result yields a *DiscoveryError.
func (c *Client) ListTools(ctx context.Context) ([]ServerTool, error) {
	resp, err := c.transport.Send(ctx, &Request{Method: "tools/list"})
	if err != nil {
		return nil, &DiscoveryError{Server: c.name, Err: err}
	}
	if resp.Error != nil {
		return nil, &DiscoveryError{Server: c.name, Err: resp.Error}
	}

	var result struct {
		Tools []ServerTool `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &DiscoveryError{Server: c.name, Err: fmt.Errorf("parsing tools list: %w", err)}
	}
	if result.Tools == nil {
		return nil, &DiscoveryError{Server: c.name, Err: fmt.Errorf("response missing tools")}
	}

	c.mu.Lock()
	c.tools = result.Tools
	c.mu.Unlock()

	return result.Tools, nil
}

// CallTool invokes a tool on the server. A server-supplied error payload is
// returned as an error-flagged result, not as a Go error, so one failed call
// never aborts a multi-tool turn.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (ToolCallResult, error) {
	params, _ := json.Marshal(map[string]any{
		"name":      name,
		"arguments": args,
	})

	resp, err := c.transport.Send(ctx, &Request{
		Method: "tools/call",
		Params: params,
	})
	if err != nil {
		return ToolCallResult{}, fmt.Errorf("tools/call request: %w", err)
	}
	if resp.Error != nil {
		return ToolCallResult{IsError: true, Content: []ContentItem{
			{Type: "text", Text: resp.Error.Message},
		}}, nil
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return ToolCallResult{}, fmt.Errorf("parsing tool result: %w", err)
	}
	return result, nil
}

// Tools returns the cached tool list from the last discovery.
func (c *Client) Tools() []ServerTool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools
}

// ServerInfo returns the server information from the handshake.
func (c *Client) ServerInfo() ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// Close shuts down the client and transport.
func (c *Client) Close() error {
	c.cancel()
	return c.transport.Close()
}

// handleNotifications drains incoming notifications. The registry is built
// once per run and stays immutable, so a tools/list_changed is only logged;
// the new list is picked up on the next run.
func (c *Client) handleNotifications() {
	for msg := range c.transport.Receive() {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var notif Notification
		if err := json.Unmarshal(msg, &notif); err != nil {
			continue
		}

		if notif.Method == "notifications/tools/list_changed" {
			log.Debug("mcp %s: tool list changed on server; effective next run", c.name)
		}
	}
}
