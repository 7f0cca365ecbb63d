/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall declares the tools a model may call and dispatches those
// calls.
//
// Each tool has one static input type. New reflects a JSON schema from it,
// and the Registry validates every call against that schema before the
// tool's operation runs:
//
//	type input struct {
//		Path string `json:"path" jsonschema:"required"`
//	}
//
//	reg, err := toolcall.NewRegistry(
//		toolcall.New("read", "Read a file", func(ctx context.Context, in input) (string, error) {
//			return read(in.Path)
//		}),
//	)
//	out, err := reg.Invoke(ctx, "read", json.RawMessage(`{"path":"a.go"}`))
//
// Invoke reports failures with typed errors. A *ValidationError means the
// operation never ran; a *ToolExecutionError wraps what the operation
// returned. Calls naming an unregistered tool fail with *UnknownToolError.
package toolcall
