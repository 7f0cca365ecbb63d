/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import "fmt"

// UnknownToolError is returned when a call names a tool that was never registered.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Tool)
}

// DuplicateToolError is returned when a name is registered twice.
type DuplicateToolError struct {
	Tool string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Tool)
}

// ValidationError is returned when a tool input does not match its schema.
// The tool's operation has not run.
type ValidationError struct {
	Tool   string
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid input for %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("invalid input for %s: %s: %s", e.Tool, e.Path, e.Reason)
}

// ToolExecutionError wraps a failure raised by a tool's operation.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
