/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator reflects Go input types into inline tool schemas.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator constructs a generator for tool input schemas. Schemas are
// inlined so each tool declaration is self-contained, and required fields
// come from the `jsonschema:"required"` tag rather than from omitempty.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			DoNotReference:             true,
		},
	}
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	s := g.reflector.Reflect(v)
	// Provider APIs reject the meta-schema keywords.
	s.Version = ""
	s.ID = ""
	return s
}

// For reflects the input type T.
func For[T any]() *jsonschema.Schema {
	var zero T
	return NewGenerator().Reflect(&zero)
}

// ToMap converts a schema into its generic JSON object form, as expected by
// the Anthropic and OpenAI tool declarations.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return map[string]any{"type": "object"}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	return out, nil
}
