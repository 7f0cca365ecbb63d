/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import "fmt"

// ToolErrorLimitError ends a run when the same tool fails too many times in
// a row.
type ToolErrorLimitError struct {
	Tool  string
	Count int
	Err   error
}

func (e *ToolErrorLimitError) Error() string {
	return fmt.Sprintf("tool %s failed %d times in a row: %v", e.Tool, e.Count, e.Err)
}

func (e *ToolErrorLimitError) Unwrap() error { return e.Err }

// UnrecoveredToolError ends a run whose last call of a tool failed and was
// never followed by a successful call.
type UnrecoveredToolError struct {
	Tool string
	Err  error
}

func (e *UnrecoveredToolError) Error() string {
	return fmt.Sprintf("tool %s did not recover: %v", e.Tool, e.Err)
}

func (e *UnrecoveredToolError) Unwrap() error { return e.Err }

// StreamError reports a failure to forward text to the stream writer.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("writing stream: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
