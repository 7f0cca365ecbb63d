/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

// Bindable is implemented by request types that know how to fill a prompt
// with their own data.
type Bindable interface {
	Bind(prompt *Prompt) (*Prompt, error)
}

// Render binds req into template and builds the result.
func Render(template *Prompt, req Bindable) (string, error) {
	p, err := req.Bind(template)
	if err != nil {
		return "", err
	}
	return p.Build()
}
