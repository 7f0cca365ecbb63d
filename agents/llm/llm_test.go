/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapTransport(t *testing.T) {
	base := errors.New("connection reset")
	wrapped := &TransportError{Model: "m", Err: base}

	tests := []struct {
		name          string
		err           error
		wantNil       bool
		wantTransport bool
		wantSame      bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "plain", err: base, wantTransport: true},
		{name: "canceled", err: fmt.Errorf("stream: %w", context.Canceled), wantSame: true},
		{name: "deadline", err: context.DeadlineExceeded, wantSame: true},
		{name: "already wrapped", err: fmt.Errorf("retry: %w", wrapped), wantTransport: true, wantSame: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapTransport("m", tt.err)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapTransport() = %v, wanted = nil", got)
				}
				return
			}
			var te *TransportError
			if gotTransport := errors.As(got, &te); gotTransport != tt.wantTransport {
				t.Errorf("errors.As(TransportError) = %v, wanted = %v", gotTransport, tt.wantTransport)
			}
			if tt.wantSame && got != tt.err {
				t.Errorf("WrapTransport() = %v, wanted the input error", got)
			}
			if !errors.Is(got, errors.Unwrap(tt.err)) && !errors.Is(got, tt.err) {
				t.Errorf("WrapTransport() = %v, lost the cause", got)
			}
		})
	}
}

func TestUsageAdd(t *testing.T) {
	got := Usage{InputTokens: 3, OutputTokens: 4}.Add(Usage{InputTokens: 10, OutputTokens: 1})
	if want := (Usage{InputTokens: 13, OutputTokens: 5}); got != want {
		t.Errorf("Add() = %+v, wanted = %+v", got, want)
	}
}
