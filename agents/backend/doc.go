/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package backend selects the model backend for a model name and wraps it with
transport retries.

Model names are routed by prefix:
  - "gemini-" uses googlebackend (Gemini API key or Vertex AI)
  - "claude-" uses claudebackend (Anthropic API key or Vertex AI)
  - "gpt-" and "o<N>" use openaibackend

	model, err := backend.Open(ctx, backend.Config{
		Model:        "gemini-2.5-flash",
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Retry:        retry.DefaultConfig(),
	})
*/
package backend
