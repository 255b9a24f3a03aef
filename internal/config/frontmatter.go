// ABOUTME: YAML frontmatter extraction for agent definition files
// ABOUTME: Splits --- delimited headers from Markdown bodies into typed values

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// ParseFrontmatter splits content into a typed YAML header and the Markdown
// body that follows. CRLF line endings are normalized first. Content without
// a leading --- line comes back unchanged with a zero header; an opening
// delimiter without a closing one is an error.
func ParseFrontmatter[T any](content string) (T, string, error) {
	var header T

	text := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(text, fmDelim+"\n") {
		return header, content, nil
	}

	rest := text[len(fmDelim)+1:]

	var yamlPart, body string
	switch {
	case rest == fmDelim:
		// closing delimiter at EOF: empty header, empty body
	case strings.HasPrefix(rest, fmDelim+"\n"):
		body = rest[len(fmDelim)+1:]
	default:
		idx := strings.Index(rest, "\n"+fmDelim)
		if idx < 0 {
			return header, "", errors.New("frontmatter not closed with ---")
		}
		yamlPart = rest[:idx]
		body = strings.TrimPrefix(rest[idx+1+len(fmDelim):], "\n")
	}

	if err := yaml.Unmarshal([]byte(yamlPart), &header); err != nil {
		var zero T
		return zero, "", fmt.Errorf("frontmatter YAML: %w", err)
	}

	return header, body, nil
}
