/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commitmsg

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"chainguard.dev/codereview/agents/changes"
	"github.com/google/go-cmp/cmp"
)

func records(files ...string) []changes.Record {
	out := make([]changes.Record, 0, len(files))
	for _, f := range files {
		out = append(out, changes.Record{File: f, Changes: "diff"})
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		file string
		want Category
	}{
		{"test/b.test.ts", "test"},
		{"src/test/helper.ts", "test"},
		{"src/widget.spec.js", "test"},
		{"agents/executor/loop_test.go", "test"},
		{"docs/guide.txt", "docs"},
		{"README.md", "docs"},
		{"docs/test/notes.md", "test"},
		{"src/a.ts", "feat"},
		{"web/App.tsx", "feat"},
		{"agents/executor/loop.go", "feat"},
		{"go.mod", "chore"},
		{"Makefile", "chore"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := Classify(tt.file); got != tt.want {
				t.Errorf("Classify(%q): got = %q, wanted = %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		opts  Options
		want  string
	}{{
		name:  "conventional picks feat before docs and test",
		files: []string{"src/a.ts", "docs/readme.md", "test/b.test.ts"},
		opts:  Options{Style: StyleConventional, MaxLength: 72},
		want:  "feat: Update 3 files",
	}, {
		name:  "conventional single file",
		files: []string{"README.md"},
		opts:  Options{Style: StyleConventional, MaxLength: 72},
		want:  "docs: Update 1 file",
	}, {
		name:  "conventional falls back to chore",
		files: nil,
		opts:  Options{},
		want:  "chore: Update 0 files",
	}, {
		name:  "simple zero files",
		files: nil,
		opts:  Options{Style: StyleSimple},
		want:  "Update 0 files",
	}, {
		name:  "simple",
		files: []string{"a.go", "b.go"},
		opts:  Options{Style: StyleSimple, MaxLength: 100},
		want:  "Update 2 files",
	}, {
		name:  "detailed",
		files: []string{"src/a.ts", "src/b.ts", "src/c.ts", "src/d.ts", "README.md"},
		opts:  Options{Style: StyleDetailed, MaxLength: 500},
		want: "Update:\n" +
			"\nfeat(4):\n- src/a.ts\n- src/b.ts\n- src/c.ts\n- ...and 1 more\n" +
			"\ndocs(1):\n- README.md\n",
	}, {
		name:  "truncated with ellipsis",
		files: []string{"src/a.ts", "src/b.ts"},
		opts:  Options{Style: StyleConventional, MaxLength: 10},
		want:  "feat: U...",
	}, {
		name:  "detailed truncates mid line",
		files: []string{"src/a.ts"},
		opts:  Options{Style: StyleDetailed, MaxLength: 20},
		want:  "Update:\n\nfeat(1):...",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(records(tt.files...), tt.opts)
			if diff := cmp.Diff(Message{Message: tt.want}, got); diff != "" {
				t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateNeverExceedsMaxLength(t *testing.T) {
	var files []string
	for i := range 40 {
		files = append(files, fmt.Sprintf("pkg/ünïcode/file-%02d.go", i))
	}
	recs := records(files...)

	for _, style := range []Style{StyleConventional, StyleSimple, StyleDetailed} {
		for limit := 1; limit <= 120; limit++ {
			got := Generate(recs, Options{Style: style, MaxLength: limit}).Message
			if n := utf8.RuneCountInString(got); n > limit {
				t.Fatalf("style %s, limit %d: got %d runes (%q)", style, limit, n, got)
			}
		}
	}
}

func TestGenerateDefaults(t *testing.T) {
	long := strings.Repeat("x", 200) + ".ts"
	got := Generate(records(long), Options{}).Message
	if want := "feat: Update 1 file"; got != want {
		t.Errorf("Generate() default style: got = %q, wanted = %q", got, want)
	}

	got = Generate(records(files(30)...), Options{Style: StyleDetailed}).Message
	if n := utf8.RuneCountInString(got); n != DefaultMaxLength {
		t.Errorf("Generate() default max length: got = %d runes, wanted = %d", n, DefaultMaxLength)
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("Generate() truncated message: got = %q, wanted ellipsis suffix", got)
	}
}

func files(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("src/file%d.ts", i)
	}
	return out
}
