/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"chainguard.dev/codereview/agents/backend/claudebackend"
	"chainguard.dev/codereview/agents/backend/googlebackend"
	"chainguard.dev/codereview/agents/backend/openaibackend"
	"chainguard.dev/codereview/agents/backend/retry"
	"chainguard.dev/codereview/agents/llm"
)

// Provider identifies a model vendor.
type Provider string

const (
	Google    Provider = "google"
	Anthropic Provider = "anthropic"
	OpenAI    Provider = "openai"
)

// ErrMissingCredentials is returned when no credentials are configured for
// the selected provider.
var ErrMissingCredentials = errors.New("missing credentials")

// Config selects and configures a backend.
type Config struct {
	Model string

	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Project and Region select Vertex AI for Gemini and Claude models when
	// no API key is set.
	Project string
	Region  string

	Retry retry.Config
}

// ProviderFor returns the provider serving model.
func ProviderFor(model string) (Provider, error) {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gemini-"):
		return Google, nil
	case strings.HasPrefix(m, "claude-"):
		return Anthropic, nil
	case openaibackend.Supports(m):
		return OpenAI, nil
	default:
		return "", fmt.Errorf("unsupported model: %s (expected gemini-*, claude-*, gpt-* or o<N>*)", model)
	}
}

// Credentials reports an error unless cfg carries credentials for its
// model's provider. It does not contact the provider.
func (cfg Config) Credentials() error {
	p, err := ProviderFor(cfg.Model)
	if err != nil {
		return err
	}
	vertexOK := cfg.Project != "" && cfg.Region != ""
	switch {
	case p == Google && (cfg.GeminiAPIKey != "" || vertexOK):
	case p == Anthropic && (cfg.AnthropicAPIKey != "" || vertexOK):
	case p == OpenAI && cfg.OpenAIAPIKey != "":
	default:
		return fmt.Errorf("%w for %s model %s", ErrMissingCredentials, p, cfg.Model)
	}
	return nil
}

// Open creates the model named by cfg, wrapped with retries.
func Open(ctx context.Context, cfg Config) (llm.Model, error) {
	if err := cfg.Credentials(); err != nil {
		return nil, err
	}
	p, _ := ProviderFor(cfg.Model)

	var (
		model     llm.Model
		retryable func(error) bool
		err       error
	)
	switch p {
	case Google:
		model, err = openGoogle(ctx, cfg)
		retryable = googlebackend.IsRetryable
	case Anthropic:
		model, err = openClaude(ctx, cfg)
		retryable = claudebackend.IsRetryable
	case OpenAI:
		model, err = openaibackend.New(
			openai.NewClient(openaioption.WithAPIKey(cfg.OpenAIAPIKey)),
			openaibackend.WithModel(cfg.Model),
		)
		retryable = openaibackend.IsRetryable
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", p, err)
	}
	wrapped, err := retry.Wrap(model, cfg.Retry, retryable)
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func openGoogle(ctx context.Context, cfg Config) (*googlebackend.Model, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiAPIKey == "" {
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Region,
			Backend:  genai.BackendVertexAI,
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}
	return googlebackend.New(client, googlebackend.WithModel(cfg.Model))
}

func openClaude(ctx context.Context, cfg Config) (*claudebackend.Model, error) {
	opt := anthropicoption.WithAPIKey(cfg.AnthropicAPIKey)
	if cfg.AnthropicAPIKey == "" {
		opt = vertex.WithGoogleAuth(ctx, cfg.Region, cfg.Project)
	}
	return claudebackend.New(anthropic.NewClient(opt), claudebackend.WithModel(cfg.Model))
}
