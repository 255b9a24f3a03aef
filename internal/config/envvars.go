// ABOUTME: Environment variable expansion and overrides for settings fields
// ABOUTME: Replaces ${VAR} patterns, then applies MCP_AGENT_* variables on top

package config

import (
	"os"
	"regexp"
	"strconv"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.Model = expandEnv(s.Model)
	s.BaseURL = expandEnv(s.BaseURL)
	s.APIKey = expandEnv(s.APIKey)
	s.Agent = expandEnv(s.Agent)

	for k, v := range s.Env {
		s.Env[k] = expandEnv(v)
	}
}

// ApplyEnvOverrides applies MCP_AGENT_* environment variables on top of the
// merged settings. OPENAI_API_KEY is honored as a fallback for the API key.
func ApplyEnvOverrides(s *Settings) {
	if v := os.Getenv("MCP_AGENT_MODEL"); v != "" {
		s.Model = v
	}
	if v := os.Getenv("MCP_AGENT_BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv("MCP_AGENT_API_KEY"); v != "" {
		s.APIKey = v
	}
	if s.APIKey == "" {
		s.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("MCP_AGENT_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxIterations = n
		}
	}
	if v := os.Getenv("MCP_AGENT_DISABLE_MCP"); v != "" {
		disabled := v == "1" || v == "true"
		enabled := !disabled
		s.MCPEnabled = &enabled
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
