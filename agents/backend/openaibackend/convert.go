/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaibackend

import (
	"fmt"

	"github.com/openai/openai-go"

	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/schema"
)

func messages(system string, history []llm.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, openai.UserMessage(msg.Text))

		case llm.RoleModel:
			p := openai.ChatCompletionAssistantMessageParam{}
			if msg.Text != "" {
				p.Content.OfString = openai.String(msg.Text)
			}
			for _, call := range msg.ToolCalls {
				args := string(call.Input)
				if args == "" {
					args = "{}"
				}
				p.ToolCalls = append(p.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &p})

		case llm.RoleTool:
			for _, r := range msg.Results {
				content := r.Content
				if r.IsError {
					content = "error: " + content
				}
				out = append(out, openai.ToolMessage(content, r.CallID))
			}

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func tools(decls []llm.Tool) ([]openai.ChatCompletionToolParam, error) {
	out := make([]openai.ChatCompletionToolParam, 0, len(decls))
	for _, t := range decls {
		params, err := schema.ToMap(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(params),
			},
		})
	}
	return out, nil
}
