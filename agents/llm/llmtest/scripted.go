/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"chainguard.dev/codereview/agents/llm"
)

// Reply scripts one model turn.
type Reply struct {
	// Fragments are streamed in order and joined into the turn's text.
	Fragments []string
	Calls     []llm.ToolCall
	Usage     llm.Usage
	// Err is returned after the fragments have been streamed.
	Err error
	// Block waits for the context to be done before replying.
	Block bool
	// OnRequest, when set, runs when the turn is requested.
	OnRequest func()
}

// Model replays Replies in order. Once the script is exhausted it answers
// with an empty turn. It is safe for concurrent use.
type Model struct {
	ModelName string

	mu       sync.Mutex
	replies  []Reply
	requests []llm.Request
}

var _ llm.Model = (*Model)(nil)

// New creates a Model that plays replies.
func New(replies ...Reply) *Model {
	return &Model{ModelName: "scripted", replies: replies}
}

// Call is a convenience constructor for a tool call.
func Call(id, name, input string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Input: json.RawMessage(input)}
}

// Name implements llm.Model.
func (m *Model) Name() string { return m.ModelName }

// Generate implements llm.Model.
func (m *Model) Generate(ctx context.Context, req llm.Request, onText llm.TextFunc) (llm.Turn, error) {
	m.mu.Lock()
	req.Messages = slices.Clone(req.Messages)
	m.requests = append(m.requests, req)
	var r Reply
	if len(m.replies) > 0 {
		r, m.replies = m.replies[0], m.replies[1:]
	}
	m.mu.Unlock()

	if r.OnRequest != nil {
		r.OnRequest()
	}
	if r.Block {
		<-ctx.Done()
		return llm.Turn{}, ctx.Err()
	}

	var sb strings.Builder
	for _, f := range r.Fragments {
		if err := ctx.Err(); err != nil {
			return llm.Turn{}, err
		}
		if err := onText(f); err != nil {
			return llm.Turn{}, err
		}
		sb.WriteString(f)
	}
	if r.Err != nil {
		return llm.Turn{}, r.Err
	}
	return llm.Turn{Text: sb.String(), ToolCalls: r.Calls, Usage: r.Usage}, nil
}

// Requests returns the requests received so far.
func (m *Model) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}
