/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googlebackend adapts Gemini models to llm.Model.

Turns are generated with streaming so text reaches the caller as it is
produced. Tool declarations are derived from the registry's reflected JSON
schemas, and function calls without an ID get one so their responses can be
matched up.

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return err
	}
	model, err := googlebackend.New(client, googlebackend.WithModel("gemini-2.5-flash"))
*/
package googlebackend
