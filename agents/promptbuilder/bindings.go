/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how structured data is encoded into a prompt.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the Format named by s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected json or yaml)", s)
	}
}

// encode renders data in format f.
func (f Format) encode(data any) (string, error) {
	switch f {
	case JSON:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(b), nil
	case YAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return strings.TrimSuffix(string(b), "\n"), nil
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// value is what a placeholder resolves to at Build time. A nil value is an
// unbound placeholder.
type value func() (string, error)

func literal(s string) value {
	return func() (string, error) { return s, nil }
}

func encoded(f Format, data any) value {
	return func() (string, error) { return f.encode(data) }
}
