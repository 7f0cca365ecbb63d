/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the meter shared by every review run. The model is recorded
// as a dimension rather than in the meter name.
const MeterName = "chainguard.dev/codereview"

// GenAI provides OpenTelemetry metrics for orchestration runs: token usage,
// tool calls, steps and terminal run states. Counters that fail to initialize
// degrade to no-ops.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	steps            metric.Int64Counter
	runs             metric.Int64Counter
	attrEnricher     AttributeEnricher
}

// NewGenAI creates a GenAI metrics instance on the named meter.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metric will be disabled", "error", err, "meter", meterName, "counter", name)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "The number of tool calls made during execution", "{calls}"),
		steps:            counter("genai.run.steps", "The number of steps taken by orchestration runs", "{steps}"),
		runs:             counter("genai.runs", "The number of orchestration runs by terminal state", "{runs}"),
	}
}

// SetAttributeEnricher sets a hook that adds contextual attributes before
// each measurement.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.MeasurementOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall records a tool invocation and whether it succeeded.
func (m *GenAI) RecordToolCall(ctx context.Context, model, toolName string, ok bool, attrs ...attribute.KeyValue) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.toolCalls.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
		attribute.String("outcome", outcome),
	}, attrs))
}

// RecordRun records the terminal state of a run and the steps it took.
func (m *GenAI) RecordRun(ctx context.Context, model, state string, steps int, attrs ...attribute.KeyValue) {
	opt := m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("state", state),
	}, attrs)
	m.runs.Add(ctx, 1, opt)
	m.steps.Add(ctx, int64(steps), opt)
}
