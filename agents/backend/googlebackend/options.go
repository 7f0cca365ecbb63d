/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googlebackend

import (
	"fmt"
	"strings"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Option configures a Model.
type Option func(*Model) error

// WithModel sets the Gemini model to use.
func WithModel(model string) Option {
	return func(m *Model) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q does not appear to be a Gemini model (expected gemini-* format)", model)
		}
		m.model = model
		return nil
	}
}

// WithTemperature sets the sampling temperature. Gemini accepts 0.0 to 2.0.
func WithTemperature(temperature float32) Option {
	return func(m *Model) error {
		if temperature < 0.0 || temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temperature)
		}
		m.temperature = temperature
		return nil
	}
}

// WithMaxOutputTokens sets the per-turn output token limit.
func WithMaxOutputTokens(tokens int32) Option {
	return func(m *Model) error {
		if tokens <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", tokens)
		}
		if tokens > 65536 {
			return fmt.Errorf("max output tokens %d exceeds maximum of 65536", tokens)
		}
		m.maxOutputTokens = tokens
		return nil
	}
}
