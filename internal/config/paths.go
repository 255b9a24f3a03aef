// ABOUTME: Standard filesystem paths for mcp-agent configuration
// ABOUTME: Resolves ~/.mcp-agent/ for global and .mcp-agent/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".mcp-agent"
	projectDirName = ".mcp-agent"
)

// GlobalDir returns the user-global config directory (~/.mcp-agent/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.mcp-agent/ in the
// project root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalSettingsFile returns the path to the global settings file.
func GlobalSettingsFile() string {
	return filepath.Join(GlobalDir(), "settings.json")
}

// ProjectSettingsFile returns the path to the project-local settings file.
func ProjectSettingsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "settings.json")
}
