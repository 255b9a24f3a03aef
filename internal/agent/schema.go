// ABOUTME: Parameter schema normalization for discovered tools
// ABOUTME: Parses a native JSON Schema into the shared object-schema shape and re-emits it

package agent

import (
	"encoding/json"
	"fmt"
)

// ParamSchema is the shared shape for a tool's parameters: an object schema
// with named properties and a required list.
type ParamSchema struct {
	Type       string               `json:"type"`
	Properties map[string]ParamSpec `json:"properties,omitempty"`
	Required   []string             `json:"required,omitempty"`
}

// ParamSpec describes a single parameter.
type ParamSpec struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`

	// Enum and Items pass through so enum/array parameters survive normalization.
	Enum  []any           `json:"enum,omitempty"`
	Items json.RawMessage `json:"items,omitempty"`
}

// emptyObjectSchema is used when a tool declares no parameters or its schema
// cannot be parsed.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// ParseParamSchema parses a native tool input schema into the shared shape.
func ParseParamSchema(raw json.RawMessage) (*ParamSchema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &ParamSchema{Type: "object"}, nil
	}

	var s ParamSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing parameter schema: %w", err)
	}
	if s.Type == "" {
		s.Type = "object"
	}
	return &s, nil
}

// NormalizeSchema converts a discovered tool's native input schema into the
// shared shape and re-emits it as JSON. Name-irrelevant schema extensions are
// dropped; type, description, required flags, defaults, and enums survive.
// A malformed schema degrades to an empty object schema rather than failing
// registration.
func NormalizeSchema(raw json.RawMessage) json.RawMessage {
	s, err := ParseParamSchema(raw)
	if err != nil {
		return emptyObjectSchema
	}
	if s.Properties == nil {
		s.Properties = map[string]ParamSpec{}
	}

	out, err := json.Marshal(s)
	if err != nil {
		return emptyObjectSchema
	}
	return out
}
