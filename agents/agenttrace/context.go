/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies the review a run belongs to.
type ExecutionContext struct {
	RunID string `json:"run_id,omitempty"`
	Root  string `json:"root,omitempty"` // Reviewed directory
	Model string `json:"model,omitempty"`
}

// Project returns the base name of the reviewed directory.
func (e ExecutionContext) Project() string {
	if e.Root == "" {
		return ""
	}
	return filepath.Base(filepath.Clean(e.Root))
}

// EnrichAttributes adds bounded execution context attributes to baseAttrs.
// The run ID is left to traces since every run would create a new series.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+1)
	copy(attrs, baseAttrs)

	if p := e.Project(); p != "" {
		attrs = append(attrs, attribute.String("project", p))
	}
	return attrs
}

type contextKey string

const executionContextKey contextKey = "execution_context"

// WithExecutionContext adds execution context to the Go context.
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context.
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if execCtx, ok := ctx.Value(executionContextKey).(ExecutionContext); ok {
		return execCtx
	}
	return ExecutionContext{}
}
