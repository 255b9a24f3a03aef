// ABOUTME: MCP server exposing agent tools via JSON-RPC over stdin/stdout
// ABOUTME: Handles initialize, tools/list, and tools/call; serves `mcp-agent serve`

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

// Server exposes a set of agent tools as an MCP server.
type Server struct {
	tools  []*agent.Tool
	byName map[string]*agent.Tool
	reader *bufio.Scanner
	writer io.Writer
}

// NewServer creates an MCP server backed by the given tools, speaking over
// the process's own stdin/stdout.
func NewServer(tools []*agent.Tool) *Server {
	return NewServerIO(tools, os.Stdin, os.Stdout)
}

// NewServerIO creates an MCP server over arbitrary streams. Used by tests
// and by callers embedding the server behind pipes.
func NewServerIO(tools []*agent.Tool, r io.Reader, w io.Writer) *Server {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxScannerBuffer), maxScannerBuffer)

	byName := make(map[string]*agent.Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}

	return &Server{
		tools:  tools,
		byName: byName,
		reader: scanner,
		writer: w,
	}
}

// Serve reads JSON-RPC messages and dispatches them until EOF or ctx cancel.
func (s *Server) Serve(ctx context.Context) error {
	for s.reader.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := s.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			// No id is recoverable from an unparseable request, so the
			// error response carries a null id per JSON-RPC 2.0.
			s.writeError(nil, -32700, "Parse error")
			continue
		}

		s.handleRequest(ctx, &req)
	}

	return s.reader.Err()
}

func (s *Server) handleRequest(ctx context.Context, req *Request) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "notifications/initialized":
		// ACK; no response needed
	default:
		s.writeError(&req.ID, -32601, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    "mcp-agent",
			Version: "1.0.0",
		},
	}
	s.writeResult(req.ID, result)
}

func (s *Server) handleToolsList(req *Request) {
	tools := make([]ServerTool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, ServerTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	s.writeResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeError(&req.ID, -32602, "invalid params")
		return
	}

	tool, ok := s.byName[params.Name]
	if !ok {
		s.writeError(&req.ID, -32602, fmt.Sprintf("unknown tool: %s", params.Name))
		return
	}

	result, err := tool.Execute(ctx, fmt.Sprintf("%d", req.ID), params.Arguments)
	if err != nil {
		s.writeError(&req.ID, -32000, err.Error())
		return
	}

	s.writeResult(req.ID, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: result.Content}},
		IsError: result.IsError,
	})
}

func (s *Server) writeResult(id int64, result any) {
	data, _ := json.Marshal(result)
	resp := Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  data,
	}
	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.writer, "%s\n", out)
}

// writeError writes a JSON-RPC error response. A nil id marshals as null,
// used when the request id could not be parsed.
func (s *Server) writeError(id *int64, code int, message string) {
	resp := struct {
		JSONRPC string    `json:"jsonrpc"`
		ID      *int64    `json:"id"`
		Error   *RPCError `json:"error"`
	}{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.writer, "%s\n", out)
}
