/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaibackend adapts OpenAI chat completion models to llm.Model,
// streaming content deltas and accumulating tool calls across chunks.
package openaibackend
