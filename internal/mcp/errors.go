// ABOUTME: Typed errors for MCP initialization and tool discovery failures
// ABOUTME: Callers branch on these to degrade to built-in tools instead of aborting

package mcp

import "fmt"

// HandshakeError reports that a server did not complete the initialize
// handshake. Fatal to MCP usage of that server, not to the agent: the caller
// falls back to built-in tools.
type HandshakeError struct {
	Server string
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("mcp server %s: handshake failed: %v", e.Server, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// DiscoveryError reports that the tool list could not be retrieved from a
// server that completed its handshake. Same fallback behavior as
// HandshakeError.
type DiscoveryError struct {
	Server string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("mcp server %s: tool discovery failed: %v", e.Server, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
