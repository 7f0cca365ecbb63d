/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"chainguard.dev/codereview/agents/schema"
)

// InvokeFunc runs a tool against an input that already passed validation.
type InvokeFunc func(ctx context.Context, input json.RawMessage) (any, error)

// Spec declares a tool the model may call.
type Spec struct {
	Name        string
	Description string
	// Schema describes the input object. A nil schema accepts any input.
	Schema *jsonschema.Schema
	Invoke InvokeFunc
}

// New declares a tool whose input is decoded into In. The schema is
// reflected from In, so struct tags drive both the declaration sent to the
// model and validation of what comes back.
func New[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) Spec {
	return Spec{
		Name:        name,
		Description: description,
		Schema:      schema.For[In](),
		Invoke: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var in In
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, &ValidationError{Tool: name, Reason: err.Error()}
			}
			return fn(ctx, in)
		},
	}
}
