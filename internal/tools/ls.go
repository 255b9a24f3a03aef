// ABOUTME: list_files tool: lists directory entries with name, size, and mod time
// ABOUTME: Read-only wrapper around os.ReadDir with formatted output; path defaults to "."

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

// NewListFilesTool creates a read-only tool that lists directory contents.
func NewListFilesTool() *agent.Tool {
	return &agent.Tool{
		Name:        "list_files",
		Label:       "List Files",
		Description: "List the contents of a directory with name, size, and modification time. Defaults to the current directory.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Path to the directory", "default": "."}
			}
		}`),
		ReadOnly: true,
		Execute:  executeListFiles,
	}
}

func executeListFiles(_ context.Context, _ string, params map[string]any) (agent.ToolResult, error) {
	path := stringParam(params, "path", ".")

	entries, err := os.ReadDir(path)
	if err != nil {
		return errResult(fmt.Errorf("reading directory %s: %w", path, err)), nil
	}

	return agent.ToolResult{Content: formatEntries(entries)}, nil
}

// formatEntries formats directory entries as a human-readable listing.
func formatEntries(entries []os.DirEntry) string {
	if len(entries) == 0 {
		return "(empty directory)"
	}

	var b strings.Builder
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			fmt.Fprintf(&b, "%s  (info unavailable)\n", e.Name())
			continue
		}

		prefix := " "
		if e.IsDir() {
			prefix = "d"
		}

		fmt.Fprintf(&b, "%s %10d  %s  %s\n", prefix, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"), e.Name())
	}
	return b.String()
}
