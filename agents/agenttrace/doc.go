/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records orchestration runs as OpenTelemetry spans.

A Trace covers one run from prompt to final text and holds a ToolCall for
every tool the model invoked. Completed traces are handed to the Tracer found
in the context; without one, traces are logged through clog.

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Root:  "/src/project",
		Model: "gemini-2.5-flash",
	})
	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(func(t *agenttrace.Trace) {
		log.Printf("run %s took %s", t.ID, t.Duration())
	}))

	trace := agenttrace.StartTrace(ctx, prompt)
	tc := trace.StartToolCall("call-1", "get_file_changes", nil)
	tc.Complete(records, nil)
	trace.Complete("completed", 2, text, nil)
*/
package agenttrace
