/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/codereview/agents/schema"
)

// Registry holds the tools available to a single run. It is not safe for
// concurrent registration; build it before the run starts.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry creates a registry holding specs.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds spec to the registry.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return errors.New("tool name is required")
	}
	if spec.Invoke == nil {
		return fmt.Errorf("tool %q has no operation", spec.Name)
	}
	if _, ok := r.specs[spec.Name]; ok {
		return &DuplicateToolError{Tool: spec.Name}
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Specs returns the registered tools in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Invoke validates input against the named tool's schema, applying declared
// defaults, and runs the tool.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (any, error) {
	normalized, err := r.Validate(name, input)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, name, normalized)
}

// Validate checks input against the named tool's schema and returns it with
// declared defaults applied.
func (r *Registry) Validate(name string, input json.RawMessage) (json.RawMessage, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}

	normalized, err := schema.Validate(spec.Schema, input)
	if err != nil {
		var fe *schema.FieldError
		if errors.As(err, &fe) {
			return nil, &ValidationError{Tool: name, Path: fe.Path, Reason: fe.Reason}
		}
		return nil, &ValidationError{Tool: name, Reason: err.Error()}
	}
	return normalized, nil
}

// Execute runs the named tool on input returned by Validate.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (out any, err error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			clog.FromContext(ctx).With("tool", name).With("panic", p).Error("Tool panicked")
			out, err = nil, &ToolExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	out, err = spec.Invoke(ctx, input)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, &ToolExecutionError{Tool: name, Err: err}
	}
	return out, nil
}
