/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudebackend

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/schema"
)

func messages(history []llm.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Text)},
			})

		case llm.RoleModel:
			if native, ok := msg.Native.(anthropic.MessageParam); ok {
				out = append(out, native)
				continue
			}
			p := anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant}
			if msg.Text != "" {
				p.Content = append(p.Content, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				input := call.Input
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				p.Content = append(p.Content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: input,
					},
				})
			}
			out = append(out, p)

		case llm.RoleTool:
			p := anthropic.MessageParam{Role: anthropic.MessageParamRoleUser}
			for _, r := range msg.Results {
				block := &anthropic.ToolResultBlockParam{
					ToolUseID: r.CallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{{
						OfText: &anthropic.TextBlockParam{Text: r.Content},
					}},
				}
				if r.IsError {
					block.IsError = anthropic.Bool(true)
				}
				p.Content = append(p.Content, anthropic.ContentBlockParamUnion{OfToolResult: block})
			}
			out = append(out, p)

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func tools(decls []llm.Tool) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, t := range decls {
		m, err := schema.ToMap(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		input := anthropic.ToolInputSchemaParam{Properties: m["properties"]}
		if t.Schema != nil {
			input.Required = t.Schema.Required
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: input,
			},
		})
	}
	return out, nil
}
