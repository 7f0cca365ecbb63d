/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaibackend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"

	"chainguard.dev/codereview/agents/llm"
)

type chunkStream interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

type streamFunc func(ctx context.Context, params openai.ChatCompletionNewParams) chunkStream

// Model generates turns with an OpenAI chat model.
type Model struct {
	stream      streamFunc
	model       string
	temperature float64
	maxTokens   int64
}

var _ llm.Model = (*Model)(nil)

// New creates a Model backed by client.
func New(client openai.Client, opts ...Option) (*Model, error) {
	return newModel(func(ctx context.Context, params openai.ChatCompletionNewParams) chunkStream {
		return client.Chat.Completions.NewStreaming(ctx, params)
	}, opts...)
}

func newModel(stream streamFunc, opts ...Option) (*Model, error) {
	m := &Model{
		stream:      stream,
		model:       DefaultModel,
		temperature: 0.1,
		maxTokens:   8192,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return m, nil
}

// Name implements llm.Model.
func (m *Model) Name() string {
	return m.model
}

// Generate implements llm.Model.
func (m *Model) Generate(ctx context.Context, req llm.Request, onText llm.TextFunc) (llm.Turn, error) {
	params, err := m.params(req)
	if err != nil {
		return llm.Turn{}, err
	}

	stream := m.stream(ctx, params)
	defer stream.Close()

	var (
		acc  openai.ChatCompletionAccumulator
		turn llm.Turn
	)
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if chunk.Usage.TotalTokens > 0 {
			turn.Usage = llm.Usage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
			}
		}
		for _, choice := range chunk.Choices {
			if choice.Index != 0 || choice.Delta.Content == "" {
				continue
			}
			if err := onText(choice.Delta.Content); err != nil {
				return llm.Turn{}, err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return llm.Turn{}, err
	}

	if len(acc.Choices) > 0 {
		msg := acc.Choices[0].Message
		turn.Text = msg.Content
		for _, call := range msg.ToolCalls {
			turn.ToolCalls = append(turn.ToolCalls, llm.ToolCall{
				ID:    call.ID,
				Name:  call.Function.Name,
				Input: json.RawMessage(call.Function.Arguments),
			})
		}
	}

	clog.FromContext(ctx).With("model", m.model).
		With("tool_calls", len(turn.ToolCalls)).
		Debug("Received turn")
	return turn, nil
}

func (m *Model) params(req llm.Request) (openai.ChatCompletionNewParams, error) {
	history, err := messages(req.System, req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	toolDefs, err := tools(req.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(m.model),
		Messages:            history,
		Temperature:         openai.Float(m.temperature),
		MaxCompletionTokens: openai.Int(m.maxTokens),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if len(toolDefs) > 0 {
		params.Tools = toolDefs
	}
	return params, nil
}
