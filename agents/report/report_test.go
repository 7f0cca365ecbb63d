/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"strings"
	"testing"
	"time"

	"chainguard.dev/codereview/agents/changes"
)

var stamp = time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func TestFileName(t *testing.T) {
	if got, want := FileName(stamp), "code-review-2026-03-04T05-06-07-890Z.md"; got != want {
		t.Errorf("FileName() = %q, wanted = %q", got, want)
	}

	// Non-UTC inputs are normalized.
	est := time.FixedZone("EST", -5*60*60)
	if got, want := FileName(stamp.In(est)), "code-review-2026-03-04T05-06-07-890Z.md"; got != want {
		t.Errorf("FileName() = %q, wanted = %q", got, want)
	}
}

func TestMarkdown(t *testing.T) {
	rep := ReviewReport{
		Timestamp:     stamp,
		CommitMessage: "feat: Update 2 files",
		Summary:       "Looks good.",
		Changes: []changes.Record{
			{File: "src/a.ts", Additions: 3, Deletions: 1},
			{File: "README.md", Additions: 1},
		},
	}
	got := rep.Markdown()

	wantInOrder := []string{
		"# Code Review Report\n",
		"**Generated at:** 2026-03-04T05:06:07.890Z\n",
		"**Commit Message Suggestion:**\n```\nfeat: Update 2 files\n```\n",
		"## Changed Files\n",
		"File",
		"src/a.ts",
		"README.md",
		"## Review Summary\n\nLooks good.\n",
	}
	rest := got
	for _, w := range wantInOrder {
		i := strings.Index(rest, w)
		if i < 0 {
			t.Fatalf("Markdown() missing %q in order; got:\n%s", w, got)
		}
		rest = rest[i+len(w):]
	}

	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "src/a.ts") {
			if !strings.HasPrefix(line, "|") || !strings.Contains(line, "3") || !strings.Contains(line, "1") {
				t.Errorf("table row = %q, wanted a markdown row with counts", line)
			}
		}
	}
}

func TestMarkdownWithoutChanges(t *testing.T) {
	got := ReviewReport{Timestamp: stamp, CommitMessage: "chore: Update 0 files"}.Markdown()
	if strings.Contains(got, "## Changed Files") {
		t.Errorf("Markdown() = %q, wanted no Changed Files section", got)
	}
	if !strings.HasSuffix(got, "## Review Summary\n\n\n") {
		t.Errorf("Markdown() = %q, wanted trailing empty summary", got)
	}
}
