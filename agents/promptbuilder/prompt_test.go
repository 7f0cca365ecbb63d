/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/promptbuilder"
)

func TestBuild(t *testing.T) {
	records := []changes.Record{{File: "main.go", Changes: "+x", Additions: 1}}

	p := promptbuilder.MustNewPrompt("Changes:\n{{changes}}\nStyle: {{style}}\nAgain: {{style}}")
	p, err := p.BindJSON("changes", records)
	if err != nil {
		t.Fatalf("BindJSON() = %v", err)
	}
	got, err := p.MustBindLiteral("style", "conventional").Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	want := `Changes:
[
  {
    "file": "main.go",
    "changes": "+x",
    "additions": 1
  }
]
Style: conventional
Again: conventional`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() (-want +got):\n%s", diff)
	}
}

func TestBindYAML(t *testing.T) {
	p := promptbuilder.MustNewPrompt("{{changes}}")
	p, err := p.Bind("changes", promptbuilder.YAML, []changes.Record{{File: "a.md", Changes: "new docs"}})
	if err != nil {
		t.Fatalf("Bind() = %v", err)
	}
	got, err := p.Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if want := "- file: a.md\n  changes: new docs\n  additions: 0\n  deletions: 0"; got != want {
		t.Errorf("Build(): got = %q, wanted = %q", got, want)
	}
}

func TestNoTransitiveSubstitution(t *testing.T) {
	p := promptbuilder.MustNewPrompt("{{data}} {{other}}")
	p, err := p.BindJSON("data", "{{other}}")
	if err != nil {
		t.Fatalf("BindJSON() = %v", err)
	}
	got, err := p.MustBindLiteral("other", "x").Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if want := `"{{other}}" x`; got != want {
		t.Errorf("Build(): got = %q, wanted = %q", got, want)
	}
}

func TestBindErrors(t *testing.T) {
	base := promptbuilder.MustNewPrompt("{{a}} {{b}}")

	if _, err := base.BindLiteral("missing", "x"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("BindLiteral(missing): got = %v, wanted not found", err)
	}
	bound := base.MustBindLiteral("a", "x")
	if _, err := bound.BindLiteral("a", "y"); err == nil || !strings.Contains(err.Error(), "already bound") {
		t.Errorf("rebinding: got = %v, wanted already bound", err)
	}
	if _, err := bound.Build(); err == nil || !strings.Contains(err.Error(), "unbound placeholder: b") {
		t.Errorf("Build() with unbound b: got = %v", err)
	}
	if _, err := base.Build(); err == nil {
		t.Error("Build() of the untouched template succeeded; binding must not mutate the receiver")
	}
	if _, err := base.Bind("a", promptbuilder.Format("xml"), 1); err == nil {
		t.Error("Bind() with an unknown format succeeded, wanted error")
	}

	p, err := base.BindJSON("a", make(chan int))
	if err != nil {
		t.Fatalf("BindJSON() = %v", err)
	}
	if _, err := p.MustBindLiteral("b", "x").Build(); err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
		t.Errorf("Build() with unencodable data: got = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]promptbuilder.Format{"json": promptbuilder.JSON, "YAML": promptbuilder.YAML} {
		got, err := promptbuilder.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got = %q, %v, wanted = %q", in, got, err, want)
		}
	}
	if _, err := promptbuilder.ParseFormat("toml"); err == nil {
		t.Error("ParseFormat(toml) succeeded, wanted error")
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewPrompt() with an invalid template did not panic")
		}
	}()
	promptbuilder.MustNewPrompt("{{bad-name}}")
}

type request struct {
	records []changes.Record
}

func (r request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindYAML("changes", r.records)
}

func TestRender(t *testing.T) {
	got, err := promptbuilder.Render(promptbuilder.MustNewPrompt("files:\n{{changes}}"), request{records: []changes.Record{}})
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if want := "files:\n[]"; got != want {
		t.Errorf("Render(): got = %q, wanted = %q", got, want)
	}
}
