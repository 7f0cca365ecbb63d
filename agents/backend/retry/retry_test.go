/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/codereview/agents/backend/retry"
	"chainguard.dev/codereview/agents/llm"
	"chainguard.dev/codereview/agents/llm/llmtest"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

var errRateLimited = errors.New("429 RESOURCE_EXHAUSTED")

func retryable(err error) bool { return errors.Is(err, errRateLimited) }

func TestDo(t *testing.T) {
	permErr := errors.New("permission denied")

	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		err          error
		wantAttempts int32
		wantErr      error
	}{
		{name: "first try", maxRetries: 3, failures: 0, wantAttempts: 1},
		{name: "recovers", maxRetries: 3, failures: 2, err: errRateLimited, wantAttempts: 3},
		{name: "exhausted", maxRetries: 3, failures: 10, err: errRateLimited, wantAttempts: 4, wantErr: errRateLimited},
		{name: "not retryable", maxRetries: 3, failures: 10, err: permErr, wantAttempts: 1, wantErr: permErr},
		{name: "zero retries", maxRetries: 0, failures: 10, err: errRateLimited, wantAttempts: 1, wantErr: errRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			cfg.MaxRetries = tt.maxRetries

			var attempts atomic.Int32
			got, err := retry.Do(context.Background(), cfg, "test_op", retryable, func(*retry.Attempt) (string, error) {
				if int(attempts.Add(1)) <= tt.failures {
					return "", tt.err
				}
				return "ok", nil
			})

			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, wanted = %d", got, tt.wantAttempts)
			}
			if tt.wantErr == nil {
				if err != nil || got != "ok" {
					t.Errorf("Do() = %q, %v, wanted ok", got, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Do() error = %v, wanted %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoExhaustedMessage(t *testing.T) {
	_, err := retry.Do(context.Background(), testConfig(), "generate", retryable, func(*retry.Attempt) (int, error) {
		return 0, errRateLimited
	})
	if want := "generate failed after 3 retries"; err == nil || !strings.HasPrefix(err.Error(), want) {
		t.Errorf("Do() error = %v, wanted prefix %q", err, want)
	}
	var ee *retry.ExhaustedError
	if !errors.As(err, &ee) || ee.Operation != "generate" || ee.Retries != 3 {
		t.Errorf("Do() error = %#v, wanted *ExhaustedError", err)
	}
}

func TestDoDeliveredAttempt(t *testing.T) {
	var numbers []int
	_, err := retry.Do(context.Background(), testConfig(), "test_op", retryable, func(a *retry.Attempt) (string, error) {
		numbers = append(numbers, a.Number)
		if a.Number == 1 {
			a.Deliver()
		}
		return "", errRateLimited
	})
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("Do() = %v, wanted the rate limit error", err)
	}
	var ee *retry.ExhaustedError
	if errors.As(err, &ee) {
		t.Errorf("Do() = %v, wanted the delivered attempt's error unwrapped", err)
	}
	if got, want := fmt.Sprint(numbers), "[0 1]"; got != want {
		t.Errorf("attempts = %s, wanted = %s", got, want)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig()
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	_, err := retry.Do(ctx, cfg, "test_op", retryable, func(*retry.Attempt) (string, error) {
		cancel()
		return "", errRateLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() = %v, wanted context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := retry.DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	for _, cfg := range []retry.Config{
		{MaxRetries: -1},
		{BaseBackoff: -time.Second},
		{MaxBackoff: -time.Second},
		{MaxJitter: -time.Second},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, wanted error", cfg)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := retry.DefaultConfig()
	if cfg.MaxRetries != 5 || cfg.BaseBackoff != time.Second || cfg.MaxBackoff != 60*time.Second || cfg.MaxJitter != 500*time.Millisecond {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestModelRetriesBeforeText(t *testing.T) {
	inner := llmtest.New(
		llmtest.Reply{Err: errRateLimited},
		llmtest.Reply{Fragments: []string{"hello"}},
	)
	m, err := retry.Wrap(inner, testConfig(), retryable)
	if err != nil {
		t.Fatalf("Wrap() = %v", err)
	}

	var got []string
	turn, err := m.Generate(context.Background(), llm.Request{}, func(f string) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if turn.Text != "hello" || len(got) != 1 {
		t.Errorf("turn = %q, fragments = %v", turn.Text, got)
	}
	if n := len(inner.Requests()); n != 2 {
		t.Errorf("requests = %d, wanted = 2", n)
	}
}

func TestModelDoesNotRetryAfterText(t *testing.T) {
	inner := llmtest.New(
		llmtest.Reply{Fragments: []string{"hal"}, Err: errRateLimited},
		llmtest.Reply{Fragments: []string{"hello"}},
	)
	m, err := retry.Wrap(inner, testConfig(), retryable)
	if err != nil {
		t.Fatalf("Wrap() = %v", err)
	}

	var got []string
	_, err = m.Generate(context.Background(), llm.Request{}, func(f string) error {
		got = append(got, f)
		return nil
	})
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("Generate() = %v, wanted the rate limit error", err)
	}
	if len(got) != 1 || got[0] != "hal" {
		t.Errorf("fragments = %v, wanted each delivered once", got)
	}
	if n := len(inner.Requests()); n != 1 {
		t.Errorf("requests = %d, wanted = 1", n)
	}
	if m.Name() != inner.Name() {
		t.Errorf("Name() = %q, wanted = %q", m.Name(), inner.Name())
	}
}

func TestWrapValidates(t *testing.T) {
	if _, err := retry.Wrap(nil, testConfig(), retryable); err == nil {
		t.Error("Wrap(nil) succeeded, wanted error")
	}
	if _, err := retry.Wrap(llmtest.New(), testConfig(), nil); err == nil {
		t.Error("Wrap(nil classifier) succeeded, wanted error")
	}
	if _, err := retry.Wrap(llmtest.New(), retry.Config{MaxRetries: -1}, retryable); err == nil {
		t.Error("Wrap(invalid config) succeeded, wanted error")
	}
}
