/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commitmsg

import (
	"fmt"
	"path"
	"strings"

	"chainguard.dev/codereview/agents/changes"
)

// Style selects how a commit message is rendered.
type Style string

const (
	StyleConventional Style = "conventional"
	StyleSimple       Style = "simple"
	StyleDetailed     Style = "detailed"
)

const (
	// DefaultStyle is used when no style is supplied.
	DefaultStyle = StyleConventional
	// DefaultMaxLength is used when no maximum length is supplied.
	DefaultMaxLength = 72

	ellipsis = "..."
	// maxExamples is the number of file names listed per category in the detailed style.
	maxExamples = 3
)

// Category is a conventional-commit change type.
type Category string

// Categories is the canonical category order. The first non-empty category
// becomes the conventional-commit type. Fix, Style and Refactor are never
// assigned by the filename heuristic; they are reserved for classifiers that
// can look at diff content.
var Categories = []Category{"feat", "fix", "docs", "style", "refactor", "test", "chore"}

// sourceExtensions are treated as feature code.
var sourceExtensions = []string{".ts", ".js", ".tsx", ".jsx", ".go"}

// Options controls message rendering.
type Options struct {
	Style     Style `json:"style,omitempty" jsonschema:"enum=conventional,enum=simple,enum=detailed,default=conventional" jsonschema_description:"Message style"`
	MaxLength int   `json:"maxLength,omitempty" jsonschema:"exclusiveMinimum=0,default=72" jsonschema_description:"Maximum message length in characters"`
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	return o
}

// Message is the synthesizer output.
type Message struct {
	Message string `json:"message"`
}

// Classify returns the category for a single file path.
func Classify(file string) Category {
	base := path.Base(file)
	switch {
	case strings.Contains(file, "test/") || isTestFile(base):
		return "test"
	case strings.Contains(file, "docs/") || strings.HasSuffix(file, ".md"):
		return "docs"
	case hasSourceExtension(file):
		return "feat"
	default:
		return "chore"
	}
}

func isTestFile(base string) bool {
	return strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasSuffix(base, "_test.go")
}

func hasSourceExtension(file string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

// Partition groups the files of records by category.
func Partition(records []changes.Record) map[Category][]string {
	groups := make(map[Category][]string, len(Categories))
	for _, r := range records {
		c := Classify(r.File)
		groups[c] = append(groups[c], r.File)
	}
	return groups
}

// Generate renders a commit message for records. It never fails: an empty
// change set yields a message about zero files.
func Generate(records []changes.Record, opts Options) Message {
	opts = opts.withDefaults()
	groups := Partition(records)

	var msg string
	switch opts.Style {
	case StyleDetailed:
		msg = detailed(groups)
	case StyleSimple:
		msg = "Update " + fileCount(len(records))
	default:
		msg = fmt.Sprintf("%s: Update %s", primary(groups), fileCount(len(records)))
	}

	return Message{Message: truncate(msg, opts.MaxLength)}
}

// primary returns the first non-empty category in canonical order.
func primary(groups map[Category][]string) Category {
	for _, c := range Categories {
		if len(groups[c]) > 0 {
			return c
		}
	}
	return "chore"
}

func detailed(groups map[Category][]string) string {
	var sb strings.Builder
	sb.WriteString("Update:\n")
	for _, c := range Categories {
		files := groups[c]
		if len(files) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s(%d):\n", c, len(files))
		for _, f := range files[:min(len(files), maxExamples)] {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		if len(files) > maxExamples {
			fmt.Fprintf(&sb, "- ...and %d more\n", len(files)-maxExamples)
		}
	}
	return sb.String()
}

func fileCount(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

// truncate shortens s to at most limit runes, marking the cut with an ellipsis
// when there is room for one.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
