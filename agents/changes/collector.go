/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chainguard-dev/clog"
	"github.com/waigani/diffparser"
)

// DefaultCeiling is the maximum number of characters kept per diff.
const DefaultCeiling = 10_000

// DefaultExclusions are path substrings that are never reviewed.
var DefaultExclusions = []string{"dist", "bun.lock", "node_modules"}

// ErrNotVersionControlled is returned when the root is not inside a git working copy.
var ErrNotVersionControlled = errors.New("not a version controlled directory")

// Record is a single modified file and its (possibly truncated) diff.
type Record struct {
	File      string `json:"file" jsonschema:"required" jsonschema_description:"Path of the changed file"`
	Changes   string `json:"changes" jsonschema:"required" jsonschema_description:"Unified diff of the file"`
	Additions int    `json:"additions,omitempty" jsonschema_description:"Number of added lines"`
	Deletions int    `json:"deletions,omitempty" jsonschema_description:"Number of removed lines"`
}

// Differ enumerates working-copy changes and renders per-file diffs.
type Differ interface {
	// Changed returns the paths with unstaged changes in enumeration order.
	Changed(ctx context.Context) ([]string, error)
	// Diff returns the unified diff for a single path, or "" when the
	// content did not change.
	Diff(ctx context.Context, path string) (string, error)
}

// Opener opens a Differ for a working copy root.
type Opener func(root string) (Differ, error)

// Collector gathers ChangeRecords for a working copy.
type Collector struct {
	exclusions []string
	ceiling    int
	open       Opener
}

// Option configures a Collector.
type Option func(*Collector) error

// WithExclusions replaces the default exclusion substrings.
func WithExclusions(exclusions ...string) Option {
	return func(c *Collector) error {
		c.exclusions = append([]string(nil), exclusions...)
		return nil
	}
}

// WithCeiling sets the per-diff character ceiling.
func WithCeiling(n int) Option {
	return func(c *Collector) error {
		if n <= 0 {
			return fmt.Errorf("ceiling must be positive, got %d", n)
		}
		c.ceiling = n
		return nil
	}
}

// WithOpener overrides how working copies are opened.
func WithOpener(open Opener) Option {
	return func(c *Collector) error {
		if open == nil {
			return errors.New("opener cannot be nil")
		}
		c.open = open
		return nil
	}
}

// New creates a Collector backed by go-git unless WithOpener is given.
func New(opts ...Option) (*Collector, error) {
	c := &Collector{
		exclusions: DefaultExclusions,
		ceiling:    DefaultCeiling,
		open:       OpenRepository,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return c, nil
}

// Ceiling returns the configured per-diff ceiling.
func (c *Collector) Ceiling() int {
	return c.ceiling
}

// Collect returns the changed files under root with their diffs.
func (c *Collector) Collect(ctx context.Context, root string) ([]Record, error) {
	log := clog.FromContext(ctx).With("root", root)

	differ, err := c.open(root)
	if err != nil {
		return nil, err
	}

	paths, err := differ.Changed(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.excluded(path) {
			log.With("file", path).Debug("Skipping excluded file")
			continue
		}

		text, err := differ.Diff(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", path, err)
		}
		if text == "" {
			continue
		}

		added, removed := countLines(ctx, text)
		records = append(records, Record{
			File:      path,
			Changes:   Truncate(text, c.ceiling),
			Additions: added,
			Deletions: removed,
		})
	}

	log.With("files", len(records)).Info("Collected changes")
	return records, nil
}

func (c *Collector) excluded(path string) bool {
	for _, ex := range c.exclusions {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	return false
}

// Truncate returns at most limit characters of s.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// countLines reports added and removed lines of a unified diff.
func countLines(ctx context.Context, text string) (added, removed int) {
	parsed, err := diffparser.Parse(text)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Debug("Unable to parse diff for stats")
		return 0, 0
	}
	for _, f := range parsed.Files {
		for _, h := range f.Hunks {
			for _, l := range h.WholeRange.Lines {
				switch l.Mode {
				case diffparser.ADDED:
					added++
				case diffparser.REMOVED:
					removed++
				}
			}
		}
	}
	return added, removed
}
