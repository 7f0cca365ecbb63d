/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FieldError reports the first constraint violated by a document.
type FieldError struct {
	// Path locates the offending value, e.g. "options.maxLength" or
	// "changes[1].file". It is empty for the document itself.
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

var printer = message.NewPrinter(language.English)

// compiled caches validators by reflected schema. Tool schemas are built
// once per registration and never mutated afterwards.
var compiled sync.Map // *jsonschema.Schema -> *validator.Schema

// Validate checks raw against s and returns the document with declared
// defaults filled in. An empty or null document is treated as an empty
// object when s describes an object.
func Validate(s *jsonschema.Schema, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if s != nil && s.Type == "object" {
			trimmed = []byte("{}")
		}
	}

	doc, err := validator.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return nil, &FieldError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if s == nil {
		return json.Marshal(doc)
	}

	sch, err := compile(s)
	if err != nil {
		return nil, err
	}
	if err := applyDefaults(s, doc); err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return nil, fieldError(doc, ve)
		}
		return nil, &FieldError{Reason: err.Error()}
	}
	return json.Marshal(doc)
}

func compile(s *jsonschema.Schema) (*validator.Schema, error) {
	if v, ok := compiled.Load(s); ok {
		return v.(*validator.Schema), nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	doc, err := validator.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	c := validator.NewCompiler()
	if err := c.AddResource("tool.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema: %w", err)
	}
	sch, err := c.Compile("tool.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	v, _ := compiled.LoadOrStore(s, sch)
	return v.(*validator.Schema), nil
}

// applyDefaults fills absent object properties that declare a default. The
// validator only checks documents, so defaults are filled beforehand and
// then validated like any other value.
func applyDefaults(s *jsonschema.Schema, v any) error {
	if s == nil {
		return nil
	}
	switch tv := v.(type) {
	case map[string]any:
		if s.Properties == nil {
			return nil
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			name, prop := pair.Key, pair.Value
			if prop == nil {
				continue
			}
			if val, ok := tv[name]; ok {
				if err := applyDefaults(prop, val); err != nil {
					return err
				}
				continue
			}
			if prop.Default == nil {
				continue
			}
			def, err := literal(prop.Default)
			if err != nil {
				return &FieldError{Path: name, Reason: fmt.Sprintf("invalid default: %v", err)}
			}
			tv[name] = def
		}
	case []any:
		for _, item := range tv {
			if err := applyDefaults(s.Items, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// literal round-trips a schema literal into the validator's document form.
func literal(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return validator.UnmarshalJSON(bytes.NewReader(data))
}

// fieldError reduces a validation tree to its first leaf.
func fieldError(doc any, ve *validator.ValidationError) *FieldError {
	for len(ve.Causes) > 0 {
		causes := slices.Clone(ve.Causes)
		slices.SortStableFunc(causes, func(a, b *validator.ValidationError) int {
			return strings.Compare(strings.Join(a.InstanceLocation, "/"), strings.Join(b.InstanceLocation, "/"))
		})
		ve = causes[0]
	}

	loc := ve.InstanceLocation
	reason := ve.ErrorKind.LocalizedString(printer)
	if req, ok := ve.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
		missing := slices.Clone(req.Missing)
		slices.Sort(missing)
		loc = append(slices.Clone(loc), missing[0])
		reason = "is required"
	}
	return &FieldError{Path: path(doc, loc), Reason: reason}
}

// path renders a JSON pointer location as "changes[1].file".
func path(doc any, loc []string) string {
	var sb strings.Builder
	cur := doc
	for _, tok := range loc {
		switch c := cur.(type) {
		case []any:
			sb.WriteString("[" + tok + "]")
			if i, err := strconv.Atoi(tok); err == nil && i >= 0 && i < len(c) {
				cur = c[i]
			} else {
				cur = nil
			}
		case map[string]any:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(tok)
			cur = c[tok]
		default:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(tok)
			cur = nil
		}
	}
	return sb.String()
}
