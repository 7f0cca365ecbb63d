/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package claudebackend adapts Anthropic Claude models to llm.Model.

Each turn is a streamed Messages request. Text deltas are forwarded as they
arrive while the events are accumulated into the final message, which is
replayed verbatim on the next request.

	client := anthropic.NewClient(option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))
	model, err := claudebackend.New(client, claudebackend.WithModel("claude-sonnet-4-5"))
*/
package claudebackend
