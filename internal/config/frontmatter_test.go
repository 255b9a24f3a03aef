// ABOUTME: Tests for YAML frontmatter parsing and stripping
// ABOUTME: Covers missing, empty, unterminated, and CRLF-normalized frontmatter

package config

import (
	"strings"
	"testing"
)

type testFM struct {
	Name  string   `yaml:"name"`
	Tools []string `yaml:"tools"`
}

func TestParseFrontmatter(t *testing.T) {
	t.Parallel()

	content := `---
name: example
tools:
  - read_file
---
Body text here.`

	fm, body, err := ParseFrontmatter[testFM](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Name != "example" {
		t.Errorf("name: got %q", fm.Name)
	}
	if len(fm.Tools) != 1 || fm.Tools[0] != "read_file" {
		t.Errorf("tools: %v", fm.Tools)
	}
	if body != "Body text here." {
		t.Errorf("body: got %q", body)
	}
}

func TestParseFrontmatter_NoFrontmatter(t *testing.T) {
	t.Parallel()

	content := "Just some markdown.\n"
	fm, body, err := ParseFrontmatter[testFM](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Name != "" {
		t.Errorf("expected zero frontmatter, got %+v", fm)
	}
	if body != content {
		t.Errorf("body: got %q", body)
	}
}

func TestParseFrontmatter_Empty(t *testing.T) {
	t.Parallel()

	_, body, err := ParseFrontmatter[testFM]("---\n---\nBody.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "Body." {
		t.Errorf("body: got %q", body)
	}
}

func TestParseFrontmatter_Unterminated(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseFrontmatter[testFM]("---\nname: x\nno closing"); err == nil {
		t.Fatal("expected error for unterminated frontmatter")
	}
}

func TestParseFrontmatter_CRLF(t *testing.T) {
	t.Parallel()

	content := strings.ReplaceAll("---\nname: crlf\n---\nBody.", "\n", "\r\n")
	fm, body, err := ParseFrontmatter[testFM](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Name != "crlf" {
		t.Errorf("name: got %q", fm.Name)
	}
	if body != "Body." {
		t.Errorf("body: got %q", body)
	}
}

func TestParseFrontmatter_BadYAML(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseFrontmatter[testFM]("---\nname: [unclosed\n---\nBody."); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestParseFrontmatter_ClosingDelimiterAtEOF(t *testing.T) {
	t.Parallel()

	fm, body, err := ParseFrontmatter[testFM]("---\nname: tail\n---")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Name != "tail" {
		t.Errorf("name: got %q", fm.Name)
	}
	if body != "" {
		t.Errorf("body: got %q, want empty", body)
	}
}
