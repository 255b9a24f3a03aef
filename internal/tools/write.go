// ABOUTME: write_file tool: creates or overwrites files with given content
// ABOUTME: Automatically creates parent directories

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

// NewWriteFileTool creates a tool that writes content to a file.
func NewWriteFileTool() *agent.Tool {
	return &agent.Tool{
		Name:        "write_file",
		Label:       "Write File",
		Description: "Write content to a file, creating parent directories if needed.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"required": ["path", "content"],
			"properties": {
				"path":    {"type": "string", "description": "Path to the file"},
				"content": {"type": "string", "description": "Content to write"}
			}
		}`),
		ReadOnly: false,
		Execute:  executeWriteFile,
	}
}

func executeWriteFile(_ context.Context, _ string, params map[string]any) (agent.ToolResult, error) {
	path, err := requireStringParam(params, "path")
	if err != nil {
		return errResult(err), nil
	}

	content, err := requireStringParam(params, "content")
	if err != nil {
		return errResult(err), nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errResult(fmt.Errorf("creating directory %s: %w", dir, err)), nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errResult(fmt.Errorf("writing file %s: %w", path, err)), nil
	}

	return agent.ToolResult{Content: fmt.Sprintf("wrote %d bytes to %s", len(content), path)}, nil
}
