/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"chainguard.dev/codereview/agents/agenttrace"
	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/metrics"
	"chainguard.dev/codereview/agents/toolcall"
)

// Executor runs the tool-augmented generation loop for one model and one
// set of tools. An Executor may serve several runs, but each run is strictly
// sequential.
type Executor struct {
	model         llm.Model
	registry      *toolcall.Registry
	system        string
	maxSteps      int
	maxToolErrors int
	policy        ToolErrorPolicy
	stream        io.Writer
	metrics       *metrics.GenAI
	observer      func(from, to State)
}

// New creates an Executor.
func New(model llm.Model, registry *toolcall.Registry, opts ...Option) (*Executor, error) {
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	e := &Executor{
		model:         model,
		registry:      registry,
		maxSteps:      DefaultMaxSteps,
		maxToolErrors: DefaultMaxToolErrors,
		policy:        Strict,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if e.metrics == nil {
		e.metrics = metrics.NewGenAI(metrics.MeterName)
		e.metrics.SetAttributeEnricher(func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
			return agenttrace.GetExecutionContext(ctx).EnrichAttributes(base)
		})
	}
	return e, nil
}

// Run drives the conversation for prompt until it completes or fails. The
// returned result is never nil; on failure it holds the partial transcript
// and the error is also returned.
func (e *Executor) Run(ctx context.Context, prompt string) (*RunResult, error) {
	log := clog.FromContext(ctx).With("model", e.model.Name())
	ctx = clog.WithLogger(ctx, log)

	trace := agenttrace.StartTrace(ctx, prompt)
	r := &run{
		e:     e,
		log:   log,
		trace: trace,
		state: Running,
		res: &RunResult{
			ToolOutputs: make(map[string][]any),
			State:       Running,
		},
		consecutive: make(map[string]int),
		unrecovered: make(map[string]error),
	}

	log.With("prompt_length", len(prompt)).With("tools", e.registry.Len()).Info("Starting run")
	res := r.loop(ctx, prompt)

	trace.RecordTokenUsage(e.model.Name(), res.Usage.InputTokens, res.Usage.OutputTokens)
	trace.Complete(res.State.String(), res.Steps, res.FinalText, res.Err)
	e.metrics.RecordRun(ctx, e.model.Name(), res.State.String(), res.Steps)

	l := log.With("state", res.State.String()).With("reason", string(res.Reason)).With("steps", res.Steps)
	if res.Err != nil {
		l.With("error", res.Err).Error("Run failed")
		return res, res.Err
	}
	l.Info("Run completed")
	return res, nil
}

// run is the mutable state of a single Run.
type run struct {
	e     *Executor
	log   *clog.Logger
	trace *agenttrace.Trace
	state State
	res   *RunResult
	text  strings.Builder

	messages    []llm.Message
	consecutive map[string]int
	unrecovered map[string]error
}

func (r *run) loop(ctx context.Context, prompt string) *RunResult {
	tools := make([]llm.Tool, 0, r.e.registry.Len())
	for _, s := range r.e.registry.Specs() {
		tools = append(tools, llm.Tool{Name: s.Name, Description: s.Description, Schema: s.Schema})
	}
	r.messages = []llm.Message{{Role: llm.RoleUser, Text: prompt}}

	for {
		if err := ctx.Err(); err != nil {
			return r.fail(ReasonAborted, err)
		}
		if r.res.Steps >= r.e.maxSteps {
			return r.complete(ReasonStepLimit)
		}

		r.transition(AwaitingModel)
		var turnText strings.Builder
		turn, err := r.e.model.Generate(ctx, llm.Request{
			System:   r.e.system,
			Messages: r.messages,
			Tools:    tools,
		}, func(fragment string) error {
			if fragment == "" {
				return nil
			}
			if err := r.emit(fragment); err != nil {
				return err
			}
			turnText.WriteString(fragment)
			return nil
		})
		if err != nil {
			var se *StreamError
			switch {
			case errors.As(err, &se):
				return r.fail(ReasonStream, se)
			case ctx.Err() != nil:
				return r.fail(ReasonAborted, ctx.Err())
			default:
				return r.fail(ReasonTransport, llm.WrapTransport(r.e.model.Name(), err))
			}
		}

		r.res.Usage = r.res.Usage.Add(turn.Usage)
		if turn.Usage != (llm.Usage{}) {
			r.e.metrics.RecordTokens(ctx, r.e.model.Name(), turn.Usage.InputTokens, turn.Usage.OutputTokens)
		}

		text := turnText.String()
		if text == "" && turn.Text != "" {
			// The backend did not stream.
			if err := r.emit(turn.Text); err != nil {
				return r.fail(ReasonStream, err)
			}
			text = turn.Text
		}
		if text != "" {
			r.record(TextEmission{Text: text})
		}

		if len(turn.ToolCalls) == 0 {
			r.transition(Running)
			return r.complete(ReasonFinished)
		}

		calls := slices.Clone(turn.ToolCalls)
		for i := range calls {
			if calls[i].ID == "" {
				calls[i].ID = uuid.NewString()
			}
		}
		r.messages = append(r.messages, llm.Message{
			Role:      llm.RoleModel,
			Text:      text,
			ToolCalls: calls,
			Native:    turn.Native,
		})

		r.transition(ToolPending)
		results := make([]llm.ToolResult, 0, len(calls))
		for _, call := range calls {
			if err := ctx.Err(); err != nil {
				return r.fail(ReasonAborted, err)
			}
			if r.res.Steps >= r.e.maxSteps {
				return r.complete(ReasonStepLimit)
			}
			result, done := r.invoke(ctx, call)
			if done != nil {
				return done
			}
			results = append(results, result)
		}
		r.messages = append(r.messages, llm.Message{Role: llm.RoleTool, Results: results})
		r.transition(Running)
	}
}

// invoke runs one tool call. A non-nil result means the run has ended.
func (r *run) invoke(ctx context.Context, call llm.ToolCall) (llm.ToolResult, *RunResult) {
	log := r.log.With("tool", call.Name).With("id", call.ID)
	log.Info("Executing tool call")

	tc := r.trace.StartToolCall(call.ID, call.Name, call.Input)
	input := call.Input
	normalized, err := r.e.registry.Validate(call.Name, call.Input)
	var out any
	if err == nil {
		input = normalized
		out, err = r.e.registry.Execute(ctx, call.Name, normalized)
	}
	tc.Complete(out, err)

	r.record(ToolInvocation{ID: call.ID, Tool: call.Name, Input: input, Output: out, Err: err})
	r.e.metrics.RecordToolCall(ctx, r.e.model.Name(), call.Name, err == nil)

	if err == nil {
		r.consecutive[call.Name] = 0
		delete(r.unrecovered, call.Name)
		r.res.ToolOutputs[call.Name] = append(r.res.ToolOutputs[call.Name], out)
		return llm.ToolResult{CallID: call.ID, Name: call.Name, Content: render(out)}, nil
	}

	var unknown *toolcall.UnknownToolError
	switch {
	case errors.As(err, &unknown):
		return llm.ToolResult{}, r.fail(ReasonUnknownTool, err)
	case ctx.Err() != nil:
		return llm.ToolResult{}, r.fail(ReasonAborted, ctx.Err())
	}

	r.consecutive[call.Name]++
	r.unrecovered[call.Name] = err
	log.With("error", err).With("consecutive", r.consecutive[call.Name]).Warn("Tool call failed")

	if n := r.consecutive[call.Name]; n >= r.e.maxToolErrors {
		return llm.ToolResult{}, r.fail(ReasonToolErrors, &ToolErrorLimitError{Tool: call.Name, Count: n, Err: err})
	}
	return llm.ToolResult{CallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}, nil
}

func (r *run) emit(fragment string) error {
	if r.e.stream != nil {
		if _, err := io.WriteString(r.e.stream, fragment); err != nil {
			return &StreamError{Err: err}
		}
	}
	r.text.WriteString(fragment)
	return nil
}

func (r *run) record(s Step) {
	r.res.Transcript = append(r.res.Transcript, s)
	r.res.Steps++
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.res.State = to
	r.log.With("from", from.String()).With("to", to.String()).Debug("State transition")
	if r.e.observer != nil {
		r.e.observer(from, to)
	}
}

// complete ends the run successfully. Under Strict, a model that stops on
// its own while a tool failure is still unanswered fails the run; hitting
// the step ceiling always returns the accumulated text.
func (r *run) complete(reason Reason) *RunResult {
	names := make([]string, 0, len(r.unrecovered))
	for name := range r.unrecovered {
		names = append(names, name)
	}
	slices.Sort(names)

	switch reason {
	case ReasonFinished:
		if r.e.policy == Strict && len(names) > 0 {
			return r.fail(ReasonUnrecoveredTool, &UnrecoveredToolError{Tool: names[0], Err: r.unrecovered[names[0]]})
		}
	case ReasonStepLimit:
		l := r.log.With("max_steps", r.e.maxSteps)
		if len(names) > 0 {
			l = l.With("unrecovered", strings.Join(names, ","))
		}
		l.Warn("Step ceiling reached, returning accumulated text")
	}
	r.transition(Completed)
	r.res.Reason = reason
	r.res.FinalText = r.text.String()
	return r.res
}

func (r *run) fail(reason Reason, err error) *RunResult {
	r.transition(Failed)
	r.res.Reason = reason
	r.res.Err = err
	r.res.FinalText = r.text.String()
	return r.res
}

// render encodes a tool output as the observation sent to the model.
func render(out any) string {
	switch v := out.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("%v", out)
	}
	return string(b)
}
