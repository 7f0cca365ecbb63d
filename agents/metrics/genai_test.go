/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGenAIRecords(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m := NewGenAI(MeterName)
	m.SetAttributeEnricher(func(_ context.Context, base []attribute.KeyValue) []attribute.KeyValue {
		return append(base, attribute.String("project", "demo"))
	})

	m.RecordTokens(ctx, "gemini-2.5-flash", 10, 4)
	m.RecordToolCall(ctx, "gemini-2.5-flash", "get_file_changes", true)
	m.RecordToolCall(ctx, "gemini-2.5-flash", "write_markdown", false)
	m.RecordRun(ctx, "gemini-2.5-flash", "completed", 5)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() = %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: data = %T, wanted Sum[int64]", md.Name, md.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("project"); !ok || v.AsString() != "demo" {
					t.Errorf("%s: missing enriched project attribute", md.Name)
				}
				totals[md.Name] += dp.Value
			}
		}
	}

	want := map[string]int64{
		"genai.token.prompt":     10,
		"genai.token.completion": 4,
		"genai.tool.calls":       2,
		"genai.run.steps":        5,
		"genai.runs":             1,
	}
	for name, v := range want {
		if totals[name] != v {
			t.Errorf("%s: got = %d, wanted = %d", name, totals[name], v)
		}
	}
}
