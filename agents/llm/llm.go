/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a tool requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult is the observation returned to the model for a ToolCall.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

// Message is one entry of the conversation history.
type Message struct {
	Role Role
	// Text is the prompt for user messages and the generated text for model
	// messages.
	Text string
	// ToolCalls are the calls made by a model message.
	ToolCalls []ToolCall
	// Results answer the ToolCalls of the preceding model message.
	Results []ToolResult
	// Native is the backend's own encoding of a model message, replayed
	// verbatim when present so provider metadata such as thought signatures
	// survives. Backends ignore values they did not produce.
	Native any
}

// Tool declares a callable tool to the model.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Request is everything a backend needs for the next turn.
type Request struct {
	System   string
	Messages []Message
	Tools    []Tool
}

// Usage counts tokens consumed by a turn.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add returns the sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// Turn is the model's complete answer to one request.
type Turn struct {
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
	Native    any
}

// TextFunc receives text fragments in generation order. Returning an error
// stops generation and the error is returned from Generate unchanged.
type TextFunc func(fragment string) error

// Model generates turns for a conversation.
type Model interface {
	// Name returns the model identifier used for logs and metrics.
	Name() string
	// Generate produces the next turn, streaming its text to onText.
	Generate(ctx context.Context, req Request, onText TextFunc) (Turn, error)
}

// TransportError reports a failed exchange with a model backend.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// WrapTransport wraps err in a *TransportError unless it is nil, a context
// error or already wrapped.
func WrapTransport(model string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Model: model, Err: err}
}
