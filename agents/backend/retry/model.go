/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/codereview/agents/llm"
)

// Model retries turns of an inner model that fail with a retryable error.
// A turn is only retried while none of its text has been streamed, so no
// fragment is ever delivered twice.
type Model struct {
	inner     llm.Model
	cfg       Config
	retryable func(error) bool
}

var _ llm.Model = (*Model)(nil)

// Wrap returns m with retries. retryable classifies backend errors.
func Wrap(m llm.Model, cfg Config, retryable func(error) bool) (*Model, error) {
	if m == nil {
		return nil, errors.New("model cannot be nil")
	}
	if retryable == nil {
		return nil, errors.New("retryable classifier cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return &Model{inner: m, cfg: cfg, retryable: retryable}, nil
}

// Name implements llm.Model.
func (m *Model) Name() string {
	return m.inner.Name()
}

// Generate implements llm.Model.
func (m *Model) Generate(ctx context.Context, req llm.Request, onText llm.TextFunc) (llm.Turn, error) {
	return Do(ctx, m.cfg, "generate", m.retryable, func(a *Attempt) (llm.Turn, error) {
		return m.inner.Generate(ctx, req, func(fragment string) error {
			if fragment != "" {
				a.Deliver()
			}
			return onText(fragment)
		})
	})
}
