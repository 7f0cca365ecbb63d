/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer creates a tracer that logs completed traces to clog at
// debug level.
func NewDefaultTracer(ctx context.Context) Tracer {
	logger := clog.FromContext(ctx)

	return ByCode(func(trace *Trace) {
		logger.With(
			"trace_id", trace.ID,
			"duration_ms", trace.Duration().Milliseconds(),
			"tool_calls", len(trace.ToolCalls),
			"state", trace.State,
		).Debug("Agent trace completed", "trace", trace.String())
	})
}
