// ABOUTME: Converts discovered MCP server tools into agent.Tool instances
// ABOUTME: Names tools mcp__<server>__<tool>; normalizes schemas at registration time

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauromedda/mcp-agent-go/internal/agent"
)

// BridgeTool converts a ServerTool from a named server into an agent.Tool
// whose Execute forwards over the client's transport. The tool result is the
// first text content block of the server response; remote failures come back
// as error-flagged results, never as Go errors.
func BridgeTool(serverName string, tool ServerTool, client *Client) *agent.Tool {
	name := fmt.Sprintf("mcp__%s__%s", sanitizeName(serverName), sanitizeName(tool.Name))

	return &agent.Tool{
		Name:        name,
		Label:       tool.Name,
		Description: tool.Description,
		Parameters:  agent.NormalizeSchema(tool.InputSchema),
		ReadOnly:    false,
		Execute: func(ctx context.Context, _ string, params map[string]any) (agent.ToolResult, error) {
			result, err := client.CallTool(ctx, tool.Name, params)
			if err != nil {
				return agent.ToolResult{Content: err.Error(), IsError: true}, nil
			}

			text := result.Text()
			if text == "" && result.IsError {
				text = fmt.Sprintf("tool %s reported an error without detail", tool.Name)
			}

			return agent.ToolResult{Content: text, IsError: result.IsError}, nil
		},
	}
}

// BridgeAllTools converts every cached tool from a client into agent tools,
// preserving discovery order.
func BridgeAllTools(serverName string, client *Client) []*agent.Tool {
	tools := client.Tools()
	result := make([]*agent.Tool, len(tools))
	for i, tool := range tools {
		result[i] = BridgeTool(serverName, tool, client)
	}
	return result
}

// sanitizeName replaces characters not safe for tool names.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}
