// ABOUTME: read_file tool: returns file contents as text
// ABOUTME: Detects binary files and truncates large outputs (>100KB)

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

const (
	maxReadOutput    = 100 * 1024 // 100KB
	binaryCheckBytes = 512
)

// NewReadFileTool creates a read-only tool that returns file contents.
func NewReadFileTool() *agent.Tool {
	return &agent.Tool{
		Name:        "read_file",
		Label:       "Read File",
		Description: "Read the contents of a text file at the given path.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"required": ["path"],
			"properties": {
				"path": {"type": "string", "description": "Path to the file"}
			}
		}`),
		ReadOnly: true,
		Execute:  executeReadFile,
	}
}

func executeReadFile(_ context.Context, _ string, params map[string]any) (agent.ToolResult, error) {
	path, err := requireStringParam(params, "path")
	if err != nil {
		return errResult(err), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errResult(fmt.Errorf("reading file %s: %w", path, err)), nil
	}

	if isBinary(data) {
		return agent.ToolResult{Content: fmt.Sprintf("binary file detected: %s", path), IsError: true}, nil
	}

	return agent.ToolResult{Content: truncateOutput(string(data), maxReadOutput)}, nil
}

// isBinary checks for null bytes in the first binaryCheckBytes of data.
func isBinary(data []byte) bool {
	limit := len(data)
	if limit > binaryCheckBytes {
		limit = binaryCheckBytes
	}
	for _, b := range data[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}
