// ABOUTME: MCP server configuration loading from settings and .mcp.json files
// ABOUTME: Merges server definitions from user-global and project sources

package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServerConfig describes how to spawn and connect to an MCP server.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// MCPConfig is the top-level structure of an .mcp.json file.
type MCPConfig struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// LoadConfig loads MCP server configurations from all sources.
// Sources checked in order (later sources override):
//  1. ~/.mcp-agent/settings.json → mcpServers
//  2. <project>/.mcp.json
//  3. <project>/.mcp-agent/settings.json → mcpServers
func LoadConfig(projectDir, homeDir string) map[string]ServerConfig {
	merged := make(map[string]ServerConfig)

	if servers := loadServersFromSettings(filepath.Join(homeDir, ".mcp-agent", "settings.json")); servers != nil {
		for k, v := range servers {
			merged[k] = v
		}
	}

	if servers := loadMCPJSON(filepath.Join(projectDir, ".mcp.json")); servers != nil {
		for k, v := range servers {
			merged[k] = v
		}
	}

	if servers := loadServersFromSettings(filepath.Join(projectDir, ".mcp-agent", "settings.json")); servers != nil {
		for k, v := range servers {
			merged[k] = v
		}
	}

	return merged
}

func loadServersFromSettings(path string) map[string]ServerConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s struct {
		MCPServers map[string]ServerConfig `json:"mcpServers,omitempty"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return s.MCPServers
}

func loadMCPJSON(path string) map[string]ServerConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var cfg MCPConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil
	}
	return cfg.MCPServers
}

// ServerConfigEnv returns the environment variables for a server config as a
// KEY=VALUE slice.
func ServerConfigEnv(cfg ServerConfig) []string {
	if len(cfg.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(cfg.Env))
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
