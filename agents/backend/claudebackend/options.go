/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudebackend

import (
	"fmt"
	"strings"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// Option configures a Model.
type Option func(*Model) error

// WithModel sets the Claude model to use.
func WithModel(model string) Option {
	return func(m *Model) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q does not appear to be a Claude model (expected claude-* format)", model)
		}
		m.model = model
		return nil
	}
}

// WithTemperature sets the sampling temperature. Claude accepts 0.0 to 1.0.
func WithTemperature(temperature float64) Option {
	return func(m *Model) error {
		if temperature < 0.0 || temperature > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temperature)
		}
		m.temperature = temperature
		return nil
	}
}

// WithMaxTokens sets the per-turn output token limit.
func WithMaxTokens(tokens int64) Option {
	return func(m *Model) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		if tokens > 64000 {
			return fmt.Errorf("max tokens %d exceeds maximum of 64000", tokens)
		}
		m.maxTokens = tokens
		return nil
	}
}
