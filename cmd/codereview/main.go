/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command codereview reviews the uncommitted changes of one or more git
// working copies with a language model and writes a Markdown report for each.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chainguard.dev/codereview/agents/backend"
	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/executor"
	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/review"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    envconfig.OsLookuper(),
		open:   backend.Open,
		gcp:    metadataServer{metadata.NewClient(nil)},
	}
	os.Exit(a.run(ctx, os.Args[1:]))
}

// app carries the process dependencies so tests can replace them.
type app struct {
	stdout io.Writer
	stderr io.Writer
	env    envconfig.Lookuper
	open   func(context.Context, backend.Config) (llm.Model, error)
	// gcp supplies the Vertex AI project and region when credentials are
	// missing. Nil skips it.
	gcp gcpMetadata
}

// runError marks failures of a review itself, as opposed to usage or
// configuration errors.
type runError struct{ err error }

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func (a *app) run(ctx context.Context, args []string) int {
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(a.stderr, "codereview: %v\n", err)
	var re *runError
	if errors.As(err, &re) {
		return exitFailed
	}
	return exitUsage
}

func (a *app) command() *cobra.Command {
	var flags flagValues
	cmd := &cobra.Command{
		Use:   "codereview [dir...]",
		Short: "Review uncommitted changes with a language model",
		Long: `codereview collects the uncommitted changes of each git working copy,
asks a language model for a review and writes a Markdown report under the
output directory of that working copy.

Credentials are read from GEMINI_API_KEY, ANTHROPIC_API_KEY or OPENAI_API_KEY
depending on the model. Per-project settings are read from .codereview.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.set = func(name string) bool { return cmd.Flags().Changed(name) }
			if len(args) == 0 {
				args = []string{"."}
			}
			return a.review(cmd.Context(), args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.Model, "model", "m", defaultModel, "model to review with (gemini-*, claude-*, gpt-*)")
	f.StringVar(&flags.OutputDir, "output-dir", review.DefaultOutputDir, "directory for reports, relative to the reviewed directory")
	f.StringVarP(&flags.Output, "output", "o", "", "report file, relative to the output directory (default: timestamped file)")
	f.BoolVar(&flags.Append, "append", false, "append to the report file instead of replacing it")
	f.BoolVar(&flags.AllowUnsaved, "allow-unsaved-report", false, "succeed even when the report cannot be written")
	f.IntVar(&flags.MaxSteps, "max-steps", executor.DefaultMaxSteps, "maximum orchestration steps per review")
	f.StringVar(&flags.Format, "format", "json", "serialization of changes in the prompt (json or yaml)")
	return cmd
}

// job is one prepared review.
type job struct {
	dir      string
	settings settings
	model    llm.Model
}

func (a *app) review(ctx context.Context, dirs []string, flags flagValues) error {
	env, err := loadEnv(ctx, a.env)
	if err != nil {
		return err
	}
	level, err := parseLevel(env.LogLevel)
	if err != nil {
		return err
	}
	log := clog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	ctx = clog.WithLogger(ctx, log)

	if flags.Output != "" && len(dirs) > 1 && !filepath.IsAbs(flags.Output) {
		log.Warn("Every directory writes its report to the same relative --output path")
	}

	// Configuration problems are reported before any review starts.
	jobs := make([]job, 0, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", dir, err)
		}
		file, err := loadFile(abs)
		if err != nil {
			return err
		}
		s, err := resolve(env, file, flags)
		if err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}
		if err := s.Backend.Credentials(); err != nil {
			// Without an API key, Vertex AI may still be reachable from Google Cloud.
			detectGCP(ctx, &s.Backend, a.gcp)
			if err := s.Backend.Credentials(); err != nil {
				return err
			}
		}
		model, err := a.open(ctx, s.Backend)
		if err != nil {
			return err
		}
		jobs = append(jobs, job{dir: abs, settings: s, model: model})
	}

	// Streaming interleaves badly, so only a single review streams.
	var stream io.Writer
	if len(jobs) == 1 {
		stream = a.stdout
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	for _, j := range jobs {
		g.Go(func() error {
			out, err := reviewOne(ctx, j, stream)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", j.dir, err))
				return nil
			}
			if stream != nil {
				fmt.Fprintln(a.stdout)
			}
			switch {
			case out.Saved:
				fmt.Fprintf(a.stdout, "%s: report written to %s\n", j.dir, out.ReportPath)
			default:
				fmt.Fprintf(a.stdout, "%s: report not saved: %v\n", j.dir, out.PersistErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return &runError{err: err}
	}
	return nil
}

func reviewOne(ctx context.Context, j job, stream io.Writer) (*review.Outcome, error) {
	s := j.settings
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("dir", j.dir))

	collector, err := changes.New(changes.WithExclusions(s.Exclusions...), changes.WithCeiling(s.Ceiling))
	if err != nil {
		return nil, err
	}

	opts := []review.Option{
		review.WithOutputDir(s.OutputDir),
		review.WithAppend(s.Append),
		review.WithReportFailure(s.ReportFailure),
		review.WithFormat(s.Format),
		review.WithCommitOptions(s.Commit),
		review.WithExecutorOptions(executor.WithMaxSteps(s.MaxSteps)),
	}
	if s.ReportPath != "" {
		opts = append(opts, review.WithReportPath(s.ReportPath))
	}
	if stream != nil {
		opts = append(opts, review.WithStream(stream))
	}

	r, err := review.New(j.model, collector, opts...)
	if err != nil {
		return nil, err
	}
	return r.Review(ctx, j.dir)
}
