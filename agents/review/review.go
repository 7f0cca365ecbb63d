/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"

	"chainguard.dev/codereview/agents/agenttrace"
	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/commitmsg"
	"chainguard.dev/codereview/agents/executor"
	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/promptbuilder"
	"chainguard.dev/codereview/agents/report"
)

// Reviewer reviews working copies with one model.
type Reviewer struct {
	model     llm.Model
	collector *changes.Collector

	outputDir  string
	reportPath string
	appendMode bool
	failure    FailurePolicy
	commit     commitmsg.Options
	format     promptbuilder.Format
	stream     io.Writer
	execOpts   []executor.Option
	now        func() time.Time
}

// Outcome is the result of one review.
type Outcome struct {
	// ReportPath is where the report was, or would have been, written.
	ReportPath string
	// Saved reports whether the report reached disk.
	Saved bool
	// PersistErr holds the write failure when the Degrade policy absorbed it.
	PersistErr error

	CommitMessage string
	Report        report.ReviewReport
	Run           *executor.RunResult
}

// New creates a Reviewer.
func New(model llm.Model, collector *changes.Collector, opts ...Option) (*Reviewer, error) {
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	if collector == nil {
		return nil, errors.New("collector cannot be nil")
	}
	r := &Reviewer{
		model:     model,
		collector: collector,
		outputDir: DefaultOutputDir,
		failure:   Fatal,
		commit: commitmsg.Options{
			Style:     commitmsg.StyleConventional,
			MaxLength: DefaultCommitMaxLength,
		},
		format: promptbuilder.JSON,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return r, nil
}

// Review reviews the working copy at dir. A run that fails or is canceled
// returns its error and leaves no report behind.
func (r *Reviewer) Review(ctx context.Context, dir string) (*Outcome, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", dir, err)
	}
	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		RunID: uuid.NewString(),
		Root:  root,
		Model: r.model.Name(),
	})
	log := clog.FromContext(ctx).With("root", root)
	ctx = clog.WithLogger(ctx, log)
	started := r.now()

	records, err := r.collector.Collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("collecting changes: %w", err)
	}
	msg := commitmsg.Generate(records, r.commit)

	outputDir := r.outputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}
	tools, err := report.NewWriter(outputDir, report.WithConfinement())
	if err != nil {
		return nil, err
	}
	reg, err := registry(root, r.collector, tools)
	if err != nil {
		return nil, fmt.Errorf("building tools: %w", err)
	}

	prompt, err := promptbuilder.Render(reviewPrompt, request{records: records, format: r.format})
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	opts := []executor.Option{executor.WithSystemInstructions(systemInstructions)}
	if r.stream != nil {
		opts = append(opts, executor.WithStream(r.stream))
	}
	opts = append(opts, r.execOpts...)
	exec, err := executor.New(r.model, reg, opts...)
	if err != nil {
		return nil, err
	}

	res, err := exec.Run(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{
		CommitMessage: msg.Message,
		Report: report.ReviewReport{
			Timestamp:     started,
			CommitMessage: msg.Message,
			Summary:       res.FinalText,
			Changes:       records,
		},
		Run: res,
	}

	path := r.reportPath
	if path == "" {
		path = report.FileName(started)
	}
	writer, err := report.NewWriter(outputDir)
	if err != nil {
		return nil, err
	}
	result := writer.Write(ctx, out.Report.Markdown(), path, r.appendMode)
	out.ReportPath = result.FilePath
	if err := result.Err(); err != nil {
		if r.failure == Fatal {
			return nil, err
		}
		log.With("error", err).Warn("Report was not saved")
		out.PersistErr = err
		return out, nil
	}
	out.Saved = true
	log.With("path", out.ReportPath).With("files", len(records)).Info("Review complete")
	return out, nil
}
