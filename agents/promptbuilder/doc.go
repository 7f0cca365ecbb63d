/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder builds prompts from developer-written templates and
encoded data, the way prepared statements keep SQL and values apart.

Templates contain {{name}} placeholders. Literal values can only come from
string constants in the source; anything else, such as diffs from the
working tree, must be bound through an encoder (JSON or YAML) so it cannot
introduce new placeholders or break out of its section.

	p := promptbuilder.MustNewPrompt(`Review these changes:
	{{changes}}

	Suggested commit message: {{message}}`)

	p, err := p.Bind("changes", promptbuilder.JSON, records)
	if err != nil {
		return err
	}
	p = p.MustBindLiteral("message", "chore: Update 2 files")
	text, err := p.Build()

Substitution happens in a single pass, so placeholder syntax inside bound
values is emitted verbatim. Prompts are immutable; every Bind returns a new
Prompt and leaves the receiver untouched, so a template can be shared across
goroutines.
*/
package promptbuilder
