/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPrompt(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
		wantErr  string
	}{
		{name: "no placeholders", template: "plain text"},
		{name: "single", template: "Review {{changes}}", want: []string{"changes"}},
		{name: "repeated", template: "{{a}} then {{b}} then {{a}}", want: []string{"a", "b"}},
		{name: "spaces trimmed", template: "{{ message }}", want: []string{"message"}},
		{name: "unclosed", template: "Review {{changes", wantErr: "unclosed binding"},
		{name: "empty name", template: "{{}}", wantErr: "invalid binding identifier"},
		{name: "hyphen", template: "{{file-name}}", wantErr: "invalid binding identifier"},
		{name: "leading digit", template: "{{1st}}", wantErr: "invalid binding identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPrompt(stringLiteral(tt.template))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("NewPrompt() error: got = %v, wanted containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPrompt() = %v", err)
			}
			if diff := cmp.Diff(tt.want, p.Placeholders()); diff != "" {
				t.Errorf("Placeholders() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"a", "Z", "test123", "snake_case", "CamelCase", "a1b2c3", "ünïcode"} {
		if !isValidIdentifier(s) {
			t.Errorf("isValidIdentifier(%q): got = false, wanted = true", s)
		}
	}
	for _, s := range []string{"", " ", "123test", "_test", "test-case", "test.case", "test case", "test!", "a{b"} {
		if isValidIdentifier(s) {
			t.Errorf("isValidIdentifier(%q): got = true, wanted = false", s)
		}
	}
}

func TestWalkTemplate(t *testing.T) {
	var seen []string
	got, err := walkTemplate("a {{x}} b {{ y }} c", func(name string) (string, error) {
		seen = append(seen, name)
		return strings.ToUpper(name), nil
	})
	if err != nil {
		t.Fatalf("walkTemplate() = %v", err)
	}
	if want := "a X b Y c"; got != want {
		t.Errorf("walkTemplate(): got = %q, wanted = %q", got, want)
	}
	if diff := cmp.Diff([]string{"x", "y"}, seen); diff != "" {
		t.Errorf("resolved names (-want +got):\n%s", diff)
	}
}
