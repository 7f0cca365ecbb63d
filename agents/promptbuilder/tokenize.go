/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// walkTemplate copies template, replacing each {{name}} with resolve(name).
func walkTemplate(template string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	for {
		open := strings.Index(template, "{{")
		if open < 0 {
			out.WriteString(template)
			return out.String(), nil
		}
		out.WriteString(template[:open])

		rest := template[open+2:]
		closing := strings.Index(rest, "}}")
		if closing < 0 {
			return "", errors.New("unclosed binding: missing '}}'")
		}
		name := strings.TrimSpace(rest[:closing])
		if !isValidIdentifier(name) {
			return "", fmt.Errorf("invalid binding identifier %q", name)
		}
		s, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(s)
		template = rest[closing+2:]
	}
}

// isValidIdentifier reports whether s starts with a letter and continues with
// letters, digits or underscores.
func isValidIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}
