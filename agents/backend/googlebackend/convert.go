/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlebackend

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"chainguard.dev/codereview/agents/llm"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// contents converts the conversation history into Gemini contents. Tool
// results are sent back as a user turn of function responses.
func contents(messages []llm.Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, &genai.Content{
				Role:  roleUser,
				Parts: []*genai.Part{{Text: msg.Text}},
			})

		case llm.RoleModel:
			if native, ok := msg.Native.(*genai.Content); ok && native != nil {
				out = append(out, native)
				continue
			}
			c := &genai.Content{Role: roleModel}
			if msg.Text != "" {
				c.Parts = append(c.Parts, &genai.Part{Text: msg.Text})
			}
			for _, call := range msg.ToolCalls {
				args, err := arguments(call.Input)
				if err != nil {
					return nil, fmt.Errorf("tool call %s: %w", call.Name, err)
				}
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: args,
				}})
			}
			out = append(out, c)

		case llm.RoleTool:
			c := &genai.Content{Role: roleUser}
			for _, r := range msg.Results {
				key := "output"
				if r.IsError {
					key = "error"
				}
				c.Parts = append(c.Parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       r.CallID,
					Name:     r.Name,
					Response: map[string]any{key: r.Content},
				}})
			}
			out = append(out, c)

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func arguments(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decoding arguments: %w", err)
	}
	return args, nil
}

func declarations(tools []llm.Tool) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaToGenai(t.Schema),
		})
	}
	return out
}

func schemaToGenai(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Title:       s.Title,
		Format:      s.Format,
		Pattern:     s.Pattern,
		Default:     s.Default,
		Type:        schemaType(s.Type),
	}

	for _, v := range s.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(v))
	}
	out.Required = append(out.Required, s.Required...)

	out.MaxLength = count(s.MaxLength)
	out.MinLength = count(s.MinLength)
	out.MaxItems = count(s.MaxItems)
	out.MinItems = count(s.MinItems)
	out.Maximum = number(s.Maximum)
	out.Minimum = number(s.Minimum)

	if s.Properties != nil {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = schemaToGenai(pair.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}
	if s.Items != nil {
		out.Items = schemaToGenai(s.Items)
	}
	for _, child := range s.AnyOf {
		out.AnyOf = append(out.AnyOf, schemaToGenai(child))
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "null":
		return genai.TypeNULL
	default:
		return ""
	}
}

func count(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func number(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}
