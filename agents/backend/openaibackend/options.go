/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaibackend

import (
	"fmt"
	"strings"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1"

// Option configures a Model.
type Option func(*Model) error

// Supports reports whether model names an OpenAI chat model.
func Supports(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gpt-") || (len(m) > 1 && m[0] == 'o' && m[1] >= '0' && m[1] <= '9')
}

// WithModel sets the OpenAI model to use.
func WithModel(model string) Option {
	return func(m *Model) error {
		if !Supports(model) {
			return fmt.Errorf("model %q does not appear to be an OpenAI model (expected gpt-* or o<N>* format)", model)
		}
		m.model = model
		return nil
	}
}

// WithTemperature sets the sampling temperature. OpenAI accepts 0.0 to 2.0.
func WithTemperature(temperature float64) Option {
	return func(m *Model) error {
		if temperature < 0.0 || temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temperature)
		}
		m.temperature = temperature
		return nil
	}
}

// WithMaxTokens sets the per-turn completion token limit.
func WithMaxTokens(tokens int64) Option {
	return func(m *Model) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		m.maxTokens = tokens
		return nil
	}
}
