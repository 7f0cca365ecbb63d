/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/codereview/agents/agenttrace"

// ToolCall is a single tool invocation within a trace.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input,omitempty"`
	Result    any             `json:"result,omitempty"`
	Error     error           `json:"error,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`

	trace *Trace
	mu    sync.Mutex
	span  oteltrace.Span
}

// Trace is one orchestration run from prompt to final text.
type Trace struct {
	ID          string           `json:"id"`
	InputPrompt string           `json:"input_prompt"`
	ExecContext ExecutionContext `json:"exec_context,omitempty"`
	ToolCalls   []*ToolCall      `json:"tool_calls"`
	Steps       int              `json:"steps"`
	State       string           `json:"state,omitempty"`
	Result      string           `json:"result"`
	Error       error            `json:"error,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`

	tracer Tracer
	mu     sync.Mutex
	ctx    context.Context
	span   oteltrace.Span
}

func newTrace(ctx context.Context, tracer Tracer, prompt string) *Trace {
	execCtx := GetExecutionContext(ctx)

	id := execCtx.RunID
	if id == "" {
		id = uuid.NewString()
	}

	attrs := []attribute.KeyValue{
		attribute.String("run.id", id),
		attribute.Int("agent.prompt_length", len(prompt)),
	}
	if execCtx.Root != "" {
		attrs = append(attrs, attribute.String("review.root", execCtx.Root))
	}
	if execCtx.Model != "" {
		attrs = append(attrs, attribute.String("model", execCtx.Model))
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "agent.execution", oteltrace.WithAttributes(attrs...))

	return &Trace{
		ID:          id,
		InputPrompt: prompt,
		ExecContext: execCtx,
		ToolCalls:   []*ToolCall{},
		StartTime:   time.Now(),
		tracer:      tracer,
		ctx:         ctx,
		span:        span,
	}
}

// Context returns a context carrying the trace's span, for child spans.
func (t *Trace) Context() context.Context {
	return t.ctx
}

// StartToolCall starts a tool call span beneath the trace.
func (t *Trace) StartToolCall(id, name string, input json.RawMessage) *ToolCall {
	_, span := otel.Tracer(instrumentationName).Start(t.ctx, "agent.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))

	return &ToolCall{
		ID:        id,
		Name:      name,
		Input:     input,
		StartTime: time.Now(),
		trace:     t,
		span:      span,
	}
}

// RecordTokenUsage adds token counts to the run span.
func (t *Trace) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.span != nil {
		t.span.SetAttributes(
			attribute.String("model", model),
			attribute.Int64("tokens.input", inputTokens),
			attribute.Int64("tokens.output", outputTokens),
			attribute.Int64("tokens.total", inputTokens+outputTokens),
		)
	}
}

// Complete ends the tool call and attaches it to its trace.
func (tc *ToolCall) Complete(result any, err error) {
	tc.mu.Lock()
	tc.Result = result
	tc.Error = err
	tc.EndTime = time.Now()
	trace := tc.trace
	span := tc.span
	tc.mu.Unlock()

	endSpan(span, err)

	trace.mu.Lock()
	defer trace.mu.Unlock()
	trace.ToolCalls = append(trace.ToolCalls, tc)
}

// Duration returns how long the tool call ran.
func (tc *ToolCall) Duration() time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return elapsed(tc.StartTime, tc.EndTime)
}

// Complete ends the trace and hands it to the tracer.
func (t *Trace) Complete(state string, steps int, result string, err error) {
	t.mu.Lock()
	t.State = state
	t.Steps = steps
	t.Result = result
	t.Error = err
	t.EndTime = time.Now()
	tracer := t.tracer
	span := t.span
	t.mu.Unlock()

	if span != nil {
		span.SetAttributes(
			attribute.String("run.state", state),
			attribute.Int("run.steps", steps),
		)
	}
	endSpan(span, err)

	if tracer != nil {
		tracer.RecordTrace(t)
	}
}

// Duration returns the total duration of the trace.
func (t *Trace) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return elapsed(t.StartTime, t.EndTime)
}

// String renders the trace for logs.
func (t *Trace) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	fmt.Fprintf(&sb, "Prompt: %d characters\n", len(t.InputPrompt))
	fmt.Fprintf(&sb, "Duration: %v\n", elapsed(t.StartTime, t.EndTime))
	fmt.Fprintf(&sb, "Steps: %d\n", t.Steps)

	if len(t.ToolCalls) > 0 {
		fmt.Fprintf(&sb, "\nTool Calls (%d):\n", len(t.ToolCalls))
		for i, tc := range t.ToolCalls {
			fmt.Fprintf(&sb, "  [%d] %s (ID: %s)\n", i+1, tc.Name, tc.ID)
			fmt.Fprintf(&sb, "      Duration: %v\n", elapsed(tc.StartTime, tc.EndTime))
			if len(tc.Input) > 0 {
				fmt.Fprintf(&sb, "      Input: %s\n", clip(string(tc.Input), 200))
			}
			if tc.Error != nil {
				fmt.Fprintf(&sb, "      Error: %v\n", tc.Error)
			} else if tc.Result != nil {
				fmt.Fprintf(&sb, "      Result: %s\n", clip(fmt.Sprintf("%v", tc.Result), 200))
			}
		}
	} else {
		sb.WriteString("\nNo tool calls\n")
	}

	fmt.Fprintf(&sb, "\nCompletion (%s):\n", t.State)
	if t.Error != nil {
		fmt.Fprintf(&sb, "  Error: %v\n", t.Error)
	} else {
		fmt.Fprintf(&sb, "  Result: %s\n", clip(t.Result, 500))
	}
	return sb.String()
}

func endSpan(span oteltrace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func elapsed(start, end time.Time) time.Duration {
	if end.IsZero() {
		return time.Since(start)
	}
	return end.Sub(start)
}

// clip shortens s to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
