/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"errors"
	"fmt"
	"io"

	"chainguard.dev/codereview/agents/metrics"
)

const (
	// DefaultMaxSteps bounds the steps of a run.
	DefaultMaxSteps = 20
	// DefaultMaxToolErrors is how many consecutive failures of one tool end a run.
	DefaultMaxToolErrors = 3
)

// ToolErrorPolicy decides how a run that ends with a failed tool call is reported.
type ToolErrorPolicy int

const (
	// Strict fails a run when a tool's latest call failed.
	Strict ToolErrorPolicy = iota
	// Lenient completes the run regardless; failures stay in the transcript.
	Lenient
)

// Option is a functional option for configuring an Executor.
type Option func(*Executor) error

// WithMaxSteps sets the step ceiling.
func WithMaxSteps(n int) Option {
	return func(e *Executor) error {
		if n <= 0 {
			return fmt.Errorf("max steps must be positive, got %d", n)
		}
		e.maxSteps = n
		return nil
	}
}

// WithMaxToolErrors sets how many consecutive failures of one tool end a run.
func WithMaxToolErrors(n int) Option {
	return func(e *Executor) error {
		if n <= 0 {
			return fmt.Errorf("max tool errors must be positive, got %d", n)
		}
		e.maxToolErrors = n
		return nil
	}
}

// WithToolErrorPolicy sets how unrecovered tool failures are reported.
func WithToolErrorPolicy(p ToolErrorPolicy) Option {
	return func(e *Executor) error {
		switch p {
		case Strict, Lenient:
			e.policy = p
			return nil
		default:
			return fmt.Errorf("unknown tool error policy %d", p)
		}
	}
}

// WithStream forwards generated text to w as it arrives.
func WithStream(w io.Writer) Option {
	return func(e *Executor) error {
		if w == nil {
			return errors.New("stream writer cannot be nil")
		}
		e.stream = w
		return nil
	}
}

// WithSystemInstructions sets the system instructions sent with every turn.
func WithSystemInstructions(s string) Option {
	return func(e *Executor) error {
		e.system = s
		return nil
	}
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m *metrics.GenAI) Option {
	return func(e *Executor) error {
		if m == nil {
			return errors.New("metrics cannot be nil")
		}
		e.metrics = m
		return nil
	}
}

// WithStateObserver calls fn on every state transition.
func WithStateObserver(fn func(from, to State)) Option {
	return func(e *Executor) error {
		e.observer = fn
		return nil
	}
}
