/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"slices"
)

// stringLiteral only admits untyped string constants at call sites.
type stringLiteral string

// Prompt is a template with named placeholders.
type Prompt struct {
	template string
	values   map[string]value
}

// NewPrompt parses template and records its placeholders.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	values := make(map[string]value)
	if _, err := walkTemplate(string(template), func(name string) (string, error) {
		values[name] = nil
		return "", nil
	}); err != nil {
		return nil, err
	}
	return &Prompt{template: string(template), values: values}, nil
}

// Placeholders returns the placeholder names in sorted order.
func (p *Prompt) Placeholders() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// BindLiteral binds a developer-supplied constant to name.
func (p *Prompt) BindLiteral(name string, s stringLiteral) (*Prompt, error) {
	return p.with(name, literal(string(s)))
}

// BindJSON binds data encoded as indented JSON to name.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	return p.with(name, encoded(JSON, data))
}

// BindYAML binds data encoded as YAML to name.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	return p.with(name, encoded(YAML, data))
}

// Bind binds data encoded in format f to name.
func (p *Prompt) Bind(name string, f Format, data any) (*Prompt, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	return p.with(name, encoded(f, data))
}

func (p *Prompt) with(name string, v value) (*Prompt, error) {
	current, ok := p.values[name]
	if !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if current != nil {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	values := maps.Clone(p.values)
	values[name] = v
	return &Prompt{template: p.template, values: values}, nil
}

// Build renders the prompt. Every placeholder must be bound.
func (p *Prompt) Build() (string, error) {
	rendered := make(map[string]string, len(p.values))
	for _, name := range p.Placeholders() {
		v := p.values[name]
		if v == nil {
			return "", fmt.Errorf("unbound placeholder: %s", name)
		}
		s, err := v()
		if err != nil {
			return "", fmt.Errorf("binding %q: %w", name, err)
		}
		rendered[name] = s
	}
	return walkTemplate(p.template, func(name string) (string, error) {
		return rendered[name], nil
	})
}
