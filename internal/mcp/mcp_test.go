// ABOUTME: Tests for the MCP client, server, and tool bridge
// ABOUTME: Uses an in-memory mock transport and piped server IO; no subprocesses

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

// mockTransport scripts per-method responses and records sent requests.
type mockTransport struct {
	responses map[string]*Response
	sendErr   error
	requests  []*Request
	notifs    []*Notification
	incoming  chan json.RawMessage
	closed    bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		responses: make(map[string]*Response),
		incoming:  make(chan json.RawMessage),
	}
}

func (m *mockTransport) Send(_ context.Context, msg *Request) (*Response, error) {
	m.requests = append(m.requests, msg)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	resp, ok := m.responses[msg.Method]
	if !ok {
		return nil, fmt.Errorf("no scripted response for %s", msg.Method)
	}
	return resp, nil
}

func (m *mockTransport) Notify(_ context.Context, msg *Notification) error {
	m.notifs = append(m.notifs, msg)
	return nil
}

func (m *mockTransport) Receive() <-chan json.RawMessage {
	return m.incoming
}

func (m *mockTransport) Close() error {
	m.closed = true
	close(m.incoming)
	return nil
}

func scriptResult(t *testing.T, v any) *Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return &Response{JSONRPC: jsonRPCVersion, Result: data}
}

func initResponse(t *testing.T) *Response {
	t.Helper()
	return scriptResult(t, InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: "test-server", Version: "0.1.0"},
	})
}

func TestClient_ConnectHandshake(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["initialize"] = initResponse(t)

	c := NewClient("srv", tr)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.ServerInfo().Name; got != "test-server" {
		t.Errorf("server info name: got %q", got)
	}

	// initialize request then the initialized notification
	if len(tr.requests) != 1 || tr.requests[0].Method != "initialize" {
		t.Fatalf("requests: %+v", tr.requests)
	}
	var params map[string]any
	if err := json.Unmarshal(tr.requests[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if params["protocolVersion"] != protocolVersion {
		t.Errorf("protocol version: got %v", params["protocolVersion"])
	}
	if len(tr.notifs) != 1 || tr.notifs[0].Method != "notifications/initialized" {
		t.Errorf("notifications: %+v", tr.notifs)
	}
}

func TestClient_ConnectTransportFailure(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.sendErr = errors.New("broken pipe")

	c := NewClient("srv", tr)
	err := c.Connect(context.Background())

	var hErr *HandshakeError
	if !errors.As(err, &hErr) {
		t.Fatalf("got %T, want *HandshakeError", err)
	}
	if hErr.Server != "srv" {
		t.Errorf("server name: got %q", hErr.Server)
	}
}

func TestClient_ConnectRPCError(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["initialize"] = &Response{
		JSONRPC: jsonRPCVersion,
		Error:   &RPCError{Code: -32600, Message: "unsupported protocol"},
	}

	c := NewClient("srv", tr)
	var hErr *HandshakeError
	if err := c.Connect(context.Background()); !errors.As(err, &hErr) {
		t.Fatalf("got %T, want *HandshakeError", err)
	}
}

func TestClient_ConnectMissingResult(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["initialize"] = &Response{JSONRPC: jsonRPCVersion}

	c := NewClient("srv", tr)
	var hErr *HandshakeError
	if err := c.Connect(context.Background()); !errors.As(err, &hErr) {
		t.Fatalf("got %T, want *HandshakeError", err)
	}
}

func TestClient_ListTools(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["tools/list"] = scriptResult(t, map[string]any{
		"tools": []ServerTool{
			{Name: "search", Description: "searches", InputSchema: json.RawMessage(`{"type":"object","properties":{}}`)},
			{Name: "fetch", Description: "fetches"},
		},
	})

	c := NewClient("srv", tr)
	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools) != 2 || tools[0].Name != "search" || tools[1].Name != "fetch" {
		t.Errorf("tools: %+v", tools)
	}
	if got := c.Tools(); len(got) != 2 {
		t.Errorf("cached tools: %+v", got)
	}
}

func TestClient_ListToolsFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*mockTransport)
	}{
		{"transport error", func(tr *mockTransport) { tr.sendErr = errors.New("pipe closed") }},
		{"rpc error", func(tr *mockTransport) {
			tr.responses["tools/list"] = &Response{Error: &RPCError{Code: -32601, Message: "nope"}}
		}},
		{"malformed result", func(tr *mockTransport) {
			tr.responses["tools/list"] = &Response{Result: json.RawMessage(`"not an object"`)}
		}},
		{"missing tools key", func(tr *mockTransport) {
			tr.responses["tools/list"] = &Response{Result: json.RawMessage(`{}`)}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newMockTransport()
			tt.setup(tr)

			c := NewClient("srv", tr)
			_, err := c.ListTools(context.Background())

			var dErr *DiscoveryError
			if !errors.As(err, &dErr) {
				t.Fatalf("got %T (%v), want *DiscoveryError", err, err)
			}
			if dErr.Server != "srv" {
				t.Errorf("server name: got %q", dErr.Server)
			}
		})
	}
}

func TestClient_CallTool(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["tools/call"] = scriptResult(t, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: "42 results"}},
	})

	c := NewClient("srv", tr)
	result, err := c.CallTool(context.Background(), "search", map[string]any{"q": "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text() != "42 results" {
		t.Errorf("got %q", result.Text())
	}

	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(tr.requests[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if params.Name != "search" || params.Arguments["q"] != "go" {
		t.Errorf("params: %+v", params)
	}
}

func TestClient_CallToolServerErrorBecomesResult(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["tools/call"] = &Response{
		Error: &RPCError{Code: -32000, Message: "tool exploded"},
	}

	c := NewClient("srv", tr)
	result, err := c.CallTool(context.Background(), "search", nil)
	if err != nil {
		t.Fatalf("server error should not be a Go error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error-flagged result")
	}
	if result.Text() != "tool exploded" {
		t.Errorf("got %q", result.Text())
	}
}

func TestToolCallResult_TextReturnsFirstTextBlock(t *testing.T) {
	t.Parallel()

	result := ToolCallResult{Content: []ContentItem{
		{Type: "image"},
		{Type: "text", Text: "first"},
		{Type: "text", Text: "second"},
	}}
	if got := result.Text(); got != "first" {
		t.Errorf("got %q, want %q", got, "first")
	}
	if got := (ToolCallResult{}).Text(); got != "" {
		t.Errorf("empty result: got %q", got)
	}
}

func TestBridgeTool(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["tools/call"] = scriptResult(t, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: "bridged output"}},
	})
	c := NewClient("my-server", tr)

	tool := BridgeTool("my-server", ServerTool{
		Name:        "do.thing",
		Description: "does a thing",
		InputSchema: json.RawMessage(`{"type":"object","required":["x"],"properties":{"x":{"type":"string"}}}`),
	}, c)

	if tool.Name != "mcp__my_server__do_thing" {
		t.Errorf("name: got %q", tool.Name)
	}
	if tool.Description != "does a thing" {
		t.Errorf("description: got %q", tool.Description)
	}

	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(tool.Parameters, &schema); err != nil {
		t.Fatalf("normalized schema invalid: %v", err)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "x" {
		t.Errorf("required: %v", schema.Required)
	}

	result, err := tool.Execute(context.Background(), "id", map[string]any{"x": "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "bridged output" {
		t.Errorf("got %q", result.Content)
	}
}

func TestBridgeAllTools_PreservesDiscoveryOrder(t *testing.T) {
	t.Parallel()

	tr := newMockTransport()
	tr.responses["tools/list"] = scriptResult(t, map[string]any{
		"tools": []ServerTool{{Name: "zeta"}, {Name: "alpha"}, {Name: "mid"}},
	})
	c := NewClient("srv", tr)
	if _, err := c.ListTools(context.Background()); err != nil {
		t.Fatal(err)
	}

	tools := BridgeAllTools("srv", c)
	want := []string{"mcp__srv__zeta", "mcp__srv__alpha", "mcp__srv__mid"}
	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("tool %d: got %q, want %q", i, tool.Name, want[i])
		}
	}
}

// serveOnce runs a server over pipes, sends one request line, and returns the
// decoded response.
func serveOnce(t *testing.T, tools []*agent.Tool, reqLine string) *Response {
	t.Helper()

	in := strings.NewReader(reqLine + "\n")
	outR, outW := io.Pipe()
	srv := NewServerIO(tools, in, outW)

	go func() {
		_ = srv.Serve(context.Background())
		outW.Close()
	}()

	scanner := bufio.NewScanner(outR)
	if !scanner.Scan() {
		t.Fatal("no response from server")
	}
	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	return &resp
}

func echoServerTool() *agent.Tool {
	return &agent.Tool{
		Name:        "echo",
		Description: "echoes msg",
		Parameters:  json.RawMessage(`{"type":"object","required":["msg"],"properties":{"msg":{"type":"string"}}}`),
		Execute: func(_ context.Context, _ string, params map[string]any) (agent.ToolResult, error) {
			msg, _ := params["msg"].(string)
			return agent.ToolResult{Content: "echo: " + msg}, nil
		},
	}
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	resp := serveOnce(t, nil, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.ProtocolVersion != protocolVersion {
		t.Errorf("protocol version: got %q", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "mcp-agent" {
		t.Errorf("server name: got %q", result.ServerInfo.Name)
	}
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	resp := serveOnce(t, []*agent.Tool{echoServerTool()}, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var result struct {
		Tools []ServerTool `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Tools) != 1 || result.Tools[0].Name != "echo" {
		t.Errorf("tools: %+v", result.Tools)
	}
}

func TestServer_ToolsCall(t *testing.T) {
	t.Parallel()

	resp := serveOnce(t, []*agent.Tool{echoServerTool()},
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"msg":"hi"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatal(err)
	}
	if result.Text() != "echo: hi" {
		t.Errorf("got %q", result.Text())
	}
}

func TestServer_UnknownToolAndMethod(t *testing.T) {
	t.Parallel()

	resp := serveOnce(t, nil, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"ghost"}}`)
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "unknown tool") {
		t.Errorf("got %v, want unknown tool error", resp.Error)
	}

	resp = serveOnce(t, nil, `{"jsonrpc":"2.0","id":5,"method":"bogus/method"}`)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("got %v, want method-not-found", resp.Error)
	}
}

func TestServer_ParseErrorRespondsWithNullID(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("{this is not json\n")
	outR, outW := io.Pipe()
	srv := NewServerIO(nil, in, outW)

	go func() {
		_ = srv.Serve(context.Background())
		outW.Close()
	}()

	scanner := bufio.NewScanner(outR)
	if !scanner.Scan() {
		t.Fatal("no response from server")
	}
	raw := scanner.Text()

	if !strings.Contains(raw, `"id":null`) {
		t.Errorf("parse error response must carry a null id: %s", raw)
	}

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32700 {
		t.Errorf("got %v, want parse error code -32700", resp.Error)
	}
}

func TestLoadConfig_MergeOrder(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	project := t.TempDir()

	writeJSON := func(path string, v any) {
		t.Helper()
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	writeJSON(home+"/.mcp-agent/settings.json", map[string]any{
		"mcpServers": map[string]ServerConfig{
			"shared": {Command: "home-cmd"},
			"only-home": {Command: "home-only"},
		},
	})
	writeJSON(project+"/.mcp.json", MCPConfig{
		MCPServers: map[string]ServerConfig{
			"shared": {Command: "project-cmd", Args: []string{"-x"}},
		},
	})

	cfg := LoadConfig(project, home)
	if got := cfg["shared"].Command; got != "project-cmd" {
		t.Errorf("shared: got %q, want project override", got)
	}
	if got := cfg["only-home"].Command; got != "home-only" {
		t.Errorf("only-home: got %q", got)
	}
}

func TestServerConfigEnv(t *testing.T) {
	t.Parallel()

	env := ServerConfigEnv(ServerConfig{Env: map[string]string{"API_KEY": "abc"}})
	if len(env) != 1 || env[0] != "API_KEY=abc" {
		t.Errorf("got %v", env)
	}
	if ServerConfigEnv(ServerConfig{}) != nil {
		t.Error("empty env should return nil")
	}
}

func TestChildProcess_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	p, err := startProcess(context.Background(), "cat", nil, nil)
	if err != nil {
		t.Fatalf("starting cat: %v", err)
	}

	done := make(chan struct{})
	go func() {
		p.stop()
		p.stop() // second call must not panic or block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not complete")
	}
}
