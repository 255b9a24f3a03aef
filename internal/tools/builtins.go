// ABOUTME: Builtin tool set constructor
// ABOUTME: Returns the default tools in stable registration order

package tools

import "github.com/mauromedda/mcp-agent-go/internal/agent"

// Builtins returns the builtin tool set in stable order. The order here
// determines registry order and the order tools appear in chat requests.
func Builtins() []*agent.Tool {
	return []*agent.Tool{
		NewReadFileTool(),
		NewWriteFileTool(),
		NewListFilesTool(),
		NewExecuteShellTool(),
	}
}
