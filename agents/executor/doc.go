/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package executor implements the bounded tool-augmented generation loop.
//
// A run alternates between asking the model for a turn and invoking the tools
// that turn requested, feeding each tool's output (or error) back to the model
// as an observation. The run moves through the states
//
//	Running -> AwaitingModel -> (Running | ToolPending) -> ... -> Completed | Failed
//
// Every turn that produced text and every tool call counts as one step;
// reaching the step ceiling completes the run with the text produced so far.
// Text fragments are forwarded to the stream writer in generation order as
// they arrive.
//
// Validation and execution failures of tools are observations the model can
// react to. A call to an unregistered tool, a backend failure, cancellation of
// the context, or the same tool failing MaxToolErrors times in a row fails the
// run. Under the Strict policy a run also fails if a tool's last call failed.
//
//	ex, err := executor.New(model, registry,
//		executor.WithStream(os.Stdout),
//		executor.WithMaxSteps(20),
//	)
//	res, err := ex.Run(ctx, prompt)
package executor
