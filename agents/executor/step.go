/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/codereview/agents/llm"
)

// State is a position in the orchestration state machine.
type State int

const (
	Running State = iota
	AwaitingModel
	ToolPending
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingModel:
		return "awaiting_model"
	case ToolPending:
		return "tool_pending"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// Reason explains why a run reached its terminal state.
type Reason string

const (
	// ReasonFinished means the model stopped requesting tools.
	ReasonFinished Reason = "finished"
	// ReasonStepLimit means the step ceiling was reached.
	ReasonStepLimit Reason = "step_limit"
	// ReasonAborted means the context was cancelled or timed out.
	ReasonAborted Reason = "aborted"
	// ReasonTransport means the model backend failed.
	ReasonTransport Reason = "transport"
	// ReasonUnknownTool means the model called a tool that is not registered.
	ReasonUnknownTool Reason = "unknown_tool"
	// ReasonToolErrors means a tool kept failing.
	ReasonToolErrors Reason = "tool_errors"
	// ReasonUnrecoveredTool means the run ended with a failed tool call that
	// was never retried successfully.
	ReasonUnrecoveredTool Reason = "unrecovered_tool"
	// ReasonStream means the stream writer failed.
	ReasonStream Reason = "stream"
)

// Step is one entry of a run's transcript: a TextEmission or a ToolInvocation.
type Step interface {
	isStep()
}

// TextEmission is the text produced by one model turn.
type TextEmission struct {
	Text string
}

// ToolInvocation is one tool call and its outcome.
type ToolInvocation struct {
	ID   string
	Tool string
	// Input is the validated input with defaults applied, or the raw input
	// when validation failed.
	Input  json.RawMessage
	Output any
	Err    error
}

func (TextEmission) isStep()   {}
func (ToolInvocation) isStep() {}

// RunResult is the outcome of a run. It is not modified after Run returns.
type RunResult struct {
	Transcript []Step
	// FinalText is every text fragment of the run, concatenated.
	FinalText string
	// ToolOutputs holds the successful outputs of each tool in call order.
	ToolOutputs map[string][]any
	State       State
	Reason      Reason
	Steps       int
	Usage       llm.Usage
	Err         error
}

// Invocations returns the transcript's ToolInvocations of tool, or all of
// them when tool is empty.
func (r *RunResult) Invocations(tool string) []ToolInvocation {
	var out []ToolInvocation
	for _, s := range r.Transcript {
		switch s := s.(type) {
		case ToolInvocation:
			if tool == "" || s.Tool == tool {
				out = append(out, s)
			}
		case TextEmission:
		}
	}
	return out
}

// LastOutput returns the most recent successful output of tool.
func (r *RunResult) LastOutput(tool string) (any, bool) {
	outs := r.ToolOutputs[tool]
	if len(outs) == 0 {
		return nil, false
	}
	return outs[len(outs)-1], true
}
