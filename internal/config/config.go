// ABOUTME: Settings loading with global + project config deep merge
// ABOUTME: JSON-based configuration; env-var expansion and overrides applied after merge

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings holds the merged configuration.
type Settings struct {
	Model         string            `json:"model,omitempty"`
	BaseURL       string            `json:"base_url,omitempty"`
	APIKey        string            `json:"api_key,omitempty"`
	MaxIterations int               `json:"max_iterations,omitempty"`
	MCPEnabled    *bool             `json:"mcp_enabled,omitempty"`
	Agent         string            `json:"agent,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
}

// MCPIsEnabled reports whether MCP tool discovery is on. Defaults to true
// when unset.
func (s *Settings) MCPIsEnabled() bool {
	return s.MCPEnabled == nil || *s.MCPEnabled
}

// Load reads and merges global and project-local settings, then applies
// ${VAR} expansion and environment overrides. Project settings override
// global settings; environment variables override both.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalSettingsFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global settings: %w", err)
	}

	project, err := loadFile(ProjectSettingsFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project settings: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	ApplyEnvOverrides(merged)
	return merged, nil
}

// loadFile reads Settings from a JSON file. Returns zero Settings if the file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Model != "" {
		result.Model = project.Model
	}
	if project.BaseURL != "" {
		result.BaseURL = project.BaseURL
	}
	if project.APIKey != "" {
		result.APIKey = project.APIKey
	}
	if project.MaxIterations != 0 {
		result.MaxIterations = project.MaxIterations
	}
	if project.MCPEnabled != nil {
		result.MCPEnabled = project.MCPEnabled
	}
	if project.Agent != "" {
		result.Agent = project.Agent
	}

	if len(project.Env) > 0 {
		if result.Env == nil {
			result.Env = make(map[string]string)
		}
		for k, v := range project.Env {
			result.Env[k] = v
		}
	}

	return &result
}
