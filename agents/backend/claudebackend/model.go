/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudebackend

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"chainguard.dev/codereview/agents/llm"
)

// eventStream is the subset of the SDK's server-sent event stream we consume.
type eventStream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

type streamFunc func(ctx context.Context, params anthropic.MessageNewParams) eventStream

// Model generates turns with a Claude model.
type Model struct {
	stream      streamFunc
	model       string
	temperature float64
	maxTokens   int64
}

var _ llm.Model = (*Model)(nil)

// New creates a Model backed by client.
func New(client anthropic.Client, opts ...Option) (*Model, error) {
	return newModel(func(ctx context.Context, params anthropic.MessageNewParams) eventStream {
		return client.Messages.NewStreaming(ctx, params)
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

	var message anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return llm.Turn{}, fmt.Errorf("failed to accumulate event: %w", err)
		}
		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				if err := onText(delta.Text); err != nil {
					return llm.Turn{}, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return llm.Turn{}, err
	}

	turn := llm.Turn{
		Usage: llm.Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		},
		Native: message.ToParam(),
	}
	var text strings.Builder
	for _, content := range message.Content {
		switch content.Type {
		case "text":
			text.WriteString(content.Text)
		case "tool_use":
			turn.ToolCalls = append(turn.ToolCalls, llm.ToolCall{
				ID:    content.ID,
				Name:  content.Name,
				Input: content.Input,
			})
		}
	}
	turn.Text = text.String()

	clog.FromContext(ctx).With("model", m.model).
		With("stop_reason", string(message.StopReason)).
		With("tool_calls", len(turn.ToolCalls)).
		Debug("Received turn")
	return turn, nil
}

func (m *Model) params(req llm.Request) (anthropic.MessageNewParams, error) {
	history, err := messages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	toolDefs, err := tools(req.Tools)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.model),
		MaxTokens:   m.maxTokens,
		Messages:    history,
		Temperature: anthropic.Float(m.temperature),
	}
	if len(toolDefs) > 0 {
		params.Tools = toolDefs
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}
