/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlebackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"chainguard.dev/codereview/agents/llm"
)

// ErrMalformedFunctionCall is returned when Gemini stops a turn because it
// produced an unparseable function call. It is retryable.
var ErrMalformedFunctionCall = errors.New("model produced a malformed function call")

type streamFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

// Model generates turns with a Gemini model.
type Model struct {
	stream          streamFunc
	model           string
	temperature     float32
	maxOutputTokens int32
}

var _ llm.Model = (*Model)(nil)

// New creates a Model backed by client.
func New(client *genai.Client, opts ...Option) (*Model, error) {
	if client == nil {
		return nil, errors.New("genai client cannot be nil")
	}
	return newModel(client.Models.GenerateContentStream, opts...)
}

func newModel(stream streamFunc, opts ...Option) (*Model, error) {
	m := &Model{
		stream:          stream,
		model:           DefaultModel,
		temperature:     0.1,
		maxOutputTokens: 8192,
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
	log := clog.FromContext(ctx).With("model", m.model)

	history, err := contents(req.Messages)
	if err != nil {
		return llm.Turn{}, err
	}

	var (
		turn    llm.Turn
		text    strings.Builder
		content = &genai.Content{Role: roleModel}
	)
	for resp, err := range m.stream(ctx, m.model, history, m.config(req)) {
		if err != nil {
			return llm.Turn{}, err
		}
		if resp == nil {
			continue
		}
		if u := resp.UsageMetadata; u != nil {
			turn.Usage = llm.Usage{
				InputTokens:  int64(u.PromptTokenCount),
				OutputTokens: int64(u.CandidatesTokenCount),
			}
		}
		if len(resp.Candidates) == 0 {
			continue
		}

		candidate := resp.Candidates[0]
		if candidate.FinishReason == genai.FinishReasonMalformedFunctionCall {
			log.With("finish_message", candidate.FinishMessage).Warn("Model attempted a malformed function call")
			return llm.Turn{}, ErrMalformedFunctionCall
		}
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			content.Parts = append(content.Parts, part)
			switch {
			case part.Thought:
				log.With("thinking_length", len(part.Text)).Debug("Found thought part")
			case part.FunctionCall != nil:
				call := part.FunctionCall
				if call.ID == "" {
					call.ID = uuid.NewString()
				}
				input, err := json.Marshal(call.Args)
				if err != nil {
					return llm.Turn{}, fmt.Errorf("encoding arguments of %s: %w", call.Name, err)
				}
				turn.ToolCalls = append(turn.ToolCalls, llm.ToolCall{ID: call.ID, Name: call.Name, Input: input})
			case part.Text != "":
				if err := onText(part.Text); err != nil {
					return llm.Turn{}, err
				}
				text.WriteString(part.Text)
			}
		}
	}

	turn.Text = text.String()
	turn.Native = content
	log.With("text_length", text.Len()).With("tool_calls", len(turn.ToolCalls)).Debug("Received turn")
	return turn, nil
}

func (m *Model) config(req llm.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     ptr(m.temperature),
		MaxOutputTokens: m.maxOutputTokens,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{
			FunctionDeclarations: declarations(req.Tools),
		}}
	}
	return config
}

func ptr[T any](v T) *T {
	return &v
}
