/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package review

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"chainguard.dev/codereview/agents/commitmsg"
	"chainguard.dev/codereview/agents/executor"
	"chainguard.dev/codereview/agents/promptbuilder"
)

// FailurePolicy decides what a failed report write means for the review.
type FailurePolicy string

const (
	// Fatal fails the review when the report cannot be written.
	Fatal FailurePolicy = "fatal"
	// Degrade logs the failure and returns the review without a saved report.
	Degrade FailurePolicy = "degrade"
)

// ParseFailurePolicy returns the policy named by s.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case Fatal, Degrade:
		return p, nil
	default:
		return "", fmt.Errorf("unknown report failure policy %q (expected fatal or degrade)", s)
	}
}

// DefaultOutputDir is the output directory, relative to the reviewed
// directory, used when none is configured.
const DefaultOutputDir = "reviews"

// DefaultCommitMaxLength bounds the suggested commit message.
const DefaultCommitMaxLength = 100

// Option configures a Reviewer.
type Option func(*Reviewer) error

// WithOutputDir sets the directory reports are written to. Relative paths
// are resolved against the reviewed directory.
func WithOutputDir(dir string) Option {
	return func(r *Reviewer) error {
		if dir == "" {
			return errors.New("output directory cannot be empty")
		}
		r.outputDir = dir
		return nil
	}
}

// WithReportPath writes the report to path instead of a timestamped file in
// the output directory. Relative paths are resolved against the output
// directory.
func WithReportPath(path string) Option {
	return func(r *Reviewer) error {
		if path == "" {
			return errors.New("report path cannot be empty")
		}
		r.reportPath = filepath.Clean(path)
		return nil
	}
}

// WithAppend appends the report to an existing file instead of replacing it.
func WithAppend(appendMode bool) Option {
	return func(r *Reviewer) error {
		r.appendMode = appendMode
		return nil
	}
}

// WithReportFailure sets the persistence failure policy. The default is Fatal.
func WithReportFailure(p FailurePolicy) Option {
	return func(r *Reviewer) error {
		if _, err := ParseFailurePolicy(string(p)); err != nil {
			return err
		}
		r.failure = p
		return nil
	}
}

// WithCommitOptions sets how the commit message suggestion is rendered.
func WithCommitOptions(opts commitmsg.Options) Option {
	return func(r *Reviewer) error {
		if opts.MaxLength < 0 {
			return fmt.Errorf("commit message max length must be positive, got %d", opts.MaxLength)
		}
		r.commit = opts
		return nil
	}
}

// WithFormat sets how changes are serialized into the prompt.
func WithFormat(f promptbuilder.Format) Option {
	return func(r *Reviewer) error {
		if _, err := promptbuilder.ParseFormat(string(f)); err != nil {
			return err
		}
		r.format = f
		return nil
	}
}

// WithStream forwards the generated review to w as it arrives.
func WithStream(w io.Writer) Option {
	return func(r *Reviewer) error {
		if w == nil {
			return errors.New("stream writer cannot be nil")
		}
		r.stream = w
		return nil
	}
}

// WithExecutorOptions passes options through to the orchestration loop, for
// example executor.WithMaxSteps.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(r *Reviewer) error {
		r.execOpts = append(r.execOpts, opts...)
		return nil
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reviewer) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		r.now = now
		return nil
	}
}
