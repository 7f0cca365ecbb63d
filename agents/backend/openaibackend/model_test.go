/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaibackend

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"

	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/schema"
)

type fakeStream struct {
	chunks []openai.ChatCompletionChunk
	err    error
	pos    int
	closed bool
}

func (f *fakeStream) Next() bool {
	if f.pos >= len(f.chunks) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeStream) Current() openai.ChatCompletionChunk { return f.chunks[f.pos-1] }
func (f *fakeStream) Err() error                          { return f.err }
func (f *fakeStream) Close() error                        { f.closed = true; return nil }

func chunks(t *testing.T, raw ...string) []openai.ChatCompletionChunk {
	t.Helper()
	out := make([]openai.ChatCompletionChunk, 0, len(raw))
	for _, r := range raw {
		var c openai.ChatCompletionChunk
		if err := json.Unmarshal([]byte(r), &c); err != nil {
			t.Fatalf("decoding chunk %s: %v", r, err)
		}
		out = append(out, c)
	}
	return out
}

var toolTurn = []string{
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[{"index":0,"delta":{"role":"assistant","content":"Let me "},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[{"index":0,"delta":{"content":"look."},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"write_markdown","arguments":"{\"path\":"}}]},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"a.md\"}"}}]},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4.1","choices":[],"usage":{"prompt_tokens":9,"completion_tokens":14,"total_tokens":23}}`,
}

func TestGenerate(t *testing.T) {
	fake := &fakeStream{chunks: chunks(t, toolTurn...)}
	var params openai.ChatCompletionNewParams
	m, err := newModel(func(_ context.Context, p openai.ChatCompletionNewParams) chunkStream {
		params = p
		return fake
	})
	if err != nil {
		t.Fatalf("newModel() = %v", err)
	}

	var fragments []string
	turn, err := m.Generate(context.Background(), llm.Request{
		System:   "be terse",
		Messages: []llm.Message{{Role: llm.RoleUser, Text: "review"}},
		Tools:    []llm.Tool{{Name: "write_markdown", Description: "Write"}},
	}, func(f string) error {
		fragments = append(fragments, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}

	if diff := cmp.Diff([]string{"Let me ", "look."}, fragments); diff != "" {
		t.Errorf("fragments (-want +got):\n%s", diff)
	}
	if turn.Text != "Let me look." {
		t.Errorf("Text: got = %q, wanted = %q", turn.Text, "Let me look.")
	}
	if len(turn.ToolCalls) != 1 {
		t.Fatalf("ToolCalls: got = %d, wanted = 1", len(turn.ToolCalls))
	}
	if call := turn.ToolCalls[0]; call.ID != "call_1" || call.Name != "write_markdown" || string(call.Input) != `{"path":"a.md"}` {
		t.Errorf("call: got = %s/%s %s", call.ID, call.Name, call.Input)
	}
	if want := (llm.Usage{InputTokens: 9, OutputTokens: 14}); turn.Usage != want {
		t.Errorf("Usage: got = %+v, wanted = %+v", turn.Usage, want)
	}
	if !fake.closed {
		t.Error("stream was not closed")
	}
	if len(params.Messages) != 2 || params.Messages[0].OfSystem == nil {
		t.Errorf("Messages: got = %d, wanted system and user", len(params.Messages))
	}
	if len(params.Tools) != 1 || params.Tools[0].Function.Name != "write_markdown" {
		t.Errorf("Tools: got = %+v", params.Tools)
	}
	if !params.StreamOptions.IncludeUsage.Value {
		t.Error("usage was not requested")
	}
}

func TestGenerateErrors(t *testing.T) {
	errBoom := errors.New("boom")
	errStop := errors.New("stop")

	tests := []struct {
		name    string
		stream  *fakeStream
		onText  llm.TextFunc
		wantErr error
	}{{
		name:    "stream error",
		stream:  &fakeStream{err: errBoom},
		wantErr: errBoom,
	}, {
		name:    "callback error is returned unchanged",
		stream:  &fakeStream{chunks: chunks(t, toolTurn[0])},
		onText:  func(string) error { return errStop },
		wantErr: errStop,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newModel(func(context.Context, openai.ChatCompletionNewParams) chunkStream { return tt.stream })
			if err != nil {
				t.Fatalf("newModel() = %v", err)
			}
			onText := tt.onText
			if onText == nil {
				onText = func(string) error { return nil }
			}
			if _, err := m.Generate(context.Background(), llm.Request{}, onText); err != tt.wantErr {
				t.Errorf("Generate() error: got = %v, wanted = %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	got, err := messages("", []llm.Message{
		{Role: llm.RoleUser, Text: "prompt"},
		{Role: llm.RoleModel, ToolCalls: []llm.ToolCall{{ID: "1", Name: "t"}}},
		{Role: llm.RoleTool, Results: []llm.ToolResult{
			{CallID: "1", Name: "t", Content: "ok"},
			{CallID: "2", Name: "u", Content: "bad", IsError: true},
		}},
	})
	if err != nil {
		t.Fatalf("messages() = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("messages: got = %d, wanted = 4", len(got))
	}
	if got[0].OfUser == nil {
		t.Error("first message is not a user message")
	}
	assistant := got[1].OfAssistant
	if assistant == nil || len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Function.Arguments != "{}" {
		t.Errorf("assistant: got = %+v", assistant)
	}
	if got[2].OfTool == nil || got[2].OfTool.ToolCallID != "1" {
		t.Errorf("first result: got = %+v", got[2].OfTool)
	}
	if got[3].OfTool == nil || got[3].OfTool.Content.OfString.Value != "error: bad" {
		t.Errorf("second result: got = %+v", got[3].OfTool)
	}

	if _, err := messages("", []llm.Message{{Role: "system"}}); err == nil {
		t.Error("messages() with an unknown role succeeded, wanted error")
	}
}

type lookupInput struct {
	Path string `json:"path" jsonschema:"required"`
}

func TestTools(t *testing.T) {
	got, err := tools([]llm.Tool{{Name: "lookup", Description: "Look up", Schema: schema.For[lookupInput]()}})
	if err != nil {
		t.Fatalf("tools() = %v", err)
	}
	fn := got[0].Function
	if fn.Name != "lookup" || fn.Description.Value != "Look up" {
		t.Errorf("function: got = %s/%s", fn.Name, fn.Description.Value)
	}
	if fn.Parameters["type"] != "object" {
		t.Errorf("parameters type: got = %v, wanted = object", fn.Parameters["type"])
	}
	if diff := cmp.Diff([]any{"path"}, fn.Parameters["required"]); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}
}

func TestSupports(t *testing.T) {
	for model, want := range map[string]bool{
		"gpt-4.1":          true,
		"GPT-4o":           true,
		"o3-mini":          true,
		"o1":               true,
		"openrouter":       false,
		"gemini-2.5-flash": false,
	} {
		if got := Supports(model); got != want {
			t.Errorf("Supports(%q): got = %v, wanted = %v", model, got, want)
		}
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{name: "gpt model", opt: WithModel("gpt-4o")},
		{name: "other model", opt: WithModel("claude-sonnet-4-5"), wantErr: true},
		{name: "temperature", opt: WithTemperature(1.2)},
		{name: "negative temperature", opt: WithTemperature(-1), wantErr: true},
		{name: "tokens", opt: WithMaxTokens(256)},
		{name: "no tokens", opt: WithMaxTokens(0), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newModel(nil, tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("newModel() error: got = %v, wanted error = %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "non-API error", err: errors.New("connection reset"), want: false},
		{name: "429 rate limit", err: &openai.Error{StatusCode: 429}, want: true},
		{name: "503 unavailable", err: &openai.Error{StatusCode: 503}, want: true},
		{name: "401 unauthorized", err: &openai.Error{StatusCode: 401}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(): got = %v, wanted = %v", got, tt.want)
			}
		})
	}
}
