/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/BurntSushi/toml"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"

	"chainguard.dev/codereview/agents/backend"
	"chainguard.dev/codereview/agents/backend/retry"
	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/commitmsg"
	"chainguard.dev/codereview/agents/executor"
	"chainguard.dev/codereview/agents/promptbuilder"
	"chainguard.dev/codereview/agents/review"
)

// projectFile is read from the root of every reviewed directory.
const projectFile = ".codereview.toml"

const defaultModel = "gemini-2.5-flash"

// envConfig is read from the process environment.
type envConfig struct {
	Model    string `env:"MODEL"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`

	Project string `env:"GOOGLE_CLOUD_PROJECT"`
	Region  string `env:"GOOGLE_CLOUD_REGION"`

	OutputDir     string `env:"CODEREVIEW_OUTPUT_DIR"`
	ReportFailure string `env:"CODEREVIEW_REPORT_FAILURE"`
}

func loadEnv(ctx context.Context, l envconfig.Lookuper) (envConfig, error) {
	var cfg envConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return envConfig{}, fmt.Errorf("processing environment: %w", err)
	}
	return cfg, nil
}

// gcpMetadata answers the project and zone questions of the Google Cloud
// metadata server.
type gcpMetadata interface {
	OnGCE() bool
	ProjectIDWithContext(ctx context.Context) (string, error)
	ZoneWithContext(ctx context.Context) (string, error)
}

type metadataServer struct{ *metadata.Client }

func (metadataServer) OnGCE() bool { return metadata.OnGCE() }

// detectGCP fills the Vertex AI project and region cfg leaves unset when
// running on Google Cloud. Lookup failures are logged and the values stay
// empty.
func detectGCP(ctx context.Context, cfg *backend.Config, md gcpMetadata) {
	if md == nil || (cfg.Project != "" && cfg.Region != "") || !md.OnGCE() {
		return
	}
	log := clog.FromContext(ctx)

	if cfg.Project == "" {
		id, err := md.ProjectIDWithContext(ctx)
		if err != nil {
			log.With("error", err).Warn("Failed to detect Google Cloud project")
		} else {
			cfg.Project = id
			log.With("project_id", id).Info("Detected Google Cloud project")
		}
	}
	if cfg.Region == "" {
		zone, err := md.ZoneWithContext(ctx)
		i := strings.LastIndex(zone, "-")
		switch {
		case err != nil:
			log.With("error", err).Warn("Failed to get zone from metadata")
		case i <= 0:
			log.With("zone", zone).Warn("Unexpected zone from metadata")
		default:
			cfg.Region = zone[:i]
			log.With("region", cfg.Region).Info("Detected Google Cloud region")
		}
	}
}

// fileConfig is the project file of one reviewed directory.
type fileConfig struct {
	Model         string `toml:"model"`
	OutputDir     string `toml:"output_dir"`
	Format        string `toml:"format"`
	MaxSteps      int    `toml:"max_steps"`
	ReportFailure string `toml:"report_failure"`

	Changes struct {
		Exclude []string `toml:"exclude"`
		Ceiling int      `toml:"ceiling"`
	} `toml:"changes"`

	Commit struct {
		Style     string `toml:"style"`
		MaxLength int    `toml:"max_length"`
	} `toml:"commit"`
}

// loadFile reads the project file in dir. A missing file is not an error.
func loadFile(dir string) (fileConfig, error) {
	var cfg fileConfig
	path := filepath.Join(dir, projectFile)
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return fileConfig{}, nil
	}
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		return fileConfig{}, fmt.Errorf("reading %s: unknown keys %s", path, strings.Join(names, ", "))
	}
	return cfg, nil
}

// flagValues are the command line settings. Only flags the user set
// override lower layers.
type flagValues struct {
	Model        string
	OutputDir    string
	Output       string
	Append       bool
	AllowUnsaved bool
	MaxSteps     int
	Format       string

	set func(name string) bool
}

func (f flagValues) changed(name string) bool {
	return f.set != nil && f.set(name)
}

// settings is the resolved configuration of one review.
type settings struct {
	Backend backend.Config

	OutputDir     string
	ReportPath    string
	Append        bool
	ReportFailure review.FailurePolicy
	MaxSteps      int
	Format        promptbuilder.Format

	Exclusions []string
	Ceiling    int
	Commit     commitmsg.Options
}

// resolve layers flags over the environment over the project file over
// defaults.
func resolve(env envConfig, file fileConfig, flags flagValues) (settings, error) {
	s := settings{
		Backend: backend.Config{
			Model:           defaultModel,
			GeminiAPIKey:    env.GeminiAPIKey,
			AnthropicAPIKey: env.AnthropicAPIKey,
			OpenAIAPIKey:    env.OpenAIAPIKey,
			Project:         env.Project,
			Region:          env.Region,
			Retry:           retry.DefaultConfig(),
		},
		OutputDir:     review.DefaultOutputDir,
		ReportFailure: review.Fatal,
		MaxSteps:      executor.DefaultMaxSteps,
		Format:        promptbuilder.JSON,
		Exclusions:    changes.DefaultExclusions,
		Ceiling:       changes.DefaultCeiling,
		Commit: commitmsg.Options{
			Style:     commitmsg.StyleConventional,
			MaxLength: review.DefaultCommitMaxLength,
		},
	}

	policy := ""
	format := ""

	// Project file.
	pick(&s.Backend.Model, file.Model)
	pick(&s.OutputDir, file.OutputDir)
	pick(&format, file.Format)
	pick(&policy, file.ReportFailure)
	if file.MaxSteps != 0 {
		s.MaxSteps = file.MaxSteps
	}
	if file.Changes.Exclude != nil {
		s.Exclusions = file.Changes.Exclude
	}
	if file.Changes.Ceiling != 0 {
		s.Ceiling = file.Changes.Ceiling
	}
	if file.Commit.Style != "" {
		s.Commit.Style = commitmsg.Style(file.Commit.Style)
	}
	if file.Commit.MaxLength != 0 {
		s.Commit.MaxLength = file.Commit.MaxLength
	}

	// Environment.
	pick(&s.Backend.Model, env.Model)
	pick(&s.OutputDir, env.OutputDir)
	pick(&policy, env.ReportFailure)

	// Flags.
	if flags.changed("model") {
		s.Backend.Model = flags.Model
	}
	if flags.changed("output-dir") {
		s.OutputDir = flags.OutputDir
	}
	if flags.changed("format") {
		format = flags.Format
	}
	if flags.changed("max-steps") {
		s.MaxSteps = flags.MaxSteps
	}
	if flags.changed("allow-unsaved-report") {
		policy = string(review.Fatal)
		if flags.AllowUnsaved {
			policy = string(review.Degrade)
		}
	}
	s.ReportPath = flags.Output
	s.Append = flags.Append

	if policy != "" {
		p, err := review.ParseFailurePolicy(policy)
		if err != nil {
			return settings{}, err
		}
		s.ReportFailure = p
	}
	if format != "" {
		f, err := promptbuilder.ParseFormat(format)
		if err != nil {
			return settings{}, err
		}
		s.Format = f
	}
	switch s.Commit.Style {
	case commitmsg.StyleConventional, commitmsg.StyleSimple, commitmsg.StyleDetailed:
	default:
		return settings{}, fmt.Errorf("unknown commit style %q", s.Commit.Style)
	}
	if s.Commit.MaxLength <= 0 {
		return settings{}, fmt.Errorf("commit max length must be positive, got %d", s.Commit.MaxLength)
	}
	if s.MaxSteps <= 0 {
		return settings{}, fmt.Errorf("max steps must be positive, got %d", s.MaxSteps)
	}
	if s.Ceiling <= 0 {
		return settings{}, fmt.Errorf("change ceiling must be positive, got %d", s.Ceiling)
	}
	if _, err := backend.ProviderFor(s.Backend.Model); err != nil {
		return settings{}, err
	}
	return s, nil
}

func pick(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseLevel maps LOG_LEVEL onto a slog level.
func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}
