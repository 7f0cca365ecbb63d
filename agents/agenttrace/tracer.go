/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type tracerKey struct{}

// Tracer creates traces and receives them once complete.
type Tracer interface {
	// NewTrace creates a new trace with the given prompt
	NewTrace(ctx context.Context, prompt string) *Trace
	// RecordTrace records a completed trace
	RecordTrace(trace *Trace)
}

// WithTracer returns a new context with the given tracer.
func WithTracer(ctx context.Context, tracer Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, tracer)
}

// TracerFromContext returns the tracer from the context, or a default tracer.
func TracerFromContext(ctx context.Context) Tracer {
	if tracer, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return tracer
	}
	return NewDefaultTracer(ctx)
}

// StartTrace starts a new trace using the tracer from the context.
func StartTrace(ctx context.Context, prompt string) *Trace {
	return TracerFromContext(ctx).NewTrace(ctx, prompt)
}

// TraceCallback receives completed traces.
type TraceCallback func(*Trace)

type byCodeTracer struct {
	callbacks []TraceCallback
}

// ByCode creates a Tracer that invokes callbacks when traces complete.
func ByCode(callbacks ...TraceCallback) Tracer {
	return &byCodeTracer{callbacks: callbacks}
}

func (t *byCodeTracer) NewTrace(ctx context.Context, prompt string) *Trace {
	return newTrace(ctx, t, prompt)
}

// RecordTrace invokes all callbacks with the completed trace in parallel.
func (t *byCodeTracer) RecordTrace(trace *Trace) {
	g := new(errgroup.Group)
	for _, callback := range t.callbacks {
		if callback != nil {
			g.Go(func() error {
				callback(trace)
				return nil
			})
		}
	}
	// Callbacks never fail.
	_ = g.Wait()
}
