/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"chainguard.dev/codereview/agents/changes"
)

// timestampLayout is an ISO 8601 UTC timestamp with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ReviewReport is the document produced by a review run.
type ReviewReport struct {
	Timestamp     time.Time
	CommitMessage string
	Summary       string
	Changes       []changes.Record
}

// Timestamp renders t the way reports record it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// FileName returns the report file name for a run started at t, for example
// code-review-2026-01-02T03-04-05-678Z.md.
func FileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(Timestamp(t))
	return "code-review-" + stamp + ".md"
}

// Markdown renders the report.
func (r ReviewReport) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Code Review Report\n\n")
	fmt.Fprintf(&sb, "**Generated at:** %s\n\n", Timestamp(r.Timestamp))
	sb.WriteString("**Commit Message Suggestion:**\n")
	fmt.Fprintf(&sb, "```\n%s\n```\n\n", strings.TrimRight(r.CommitMessage, "\n"))

	if len(r.Changes) > 0 {
		sb.WriteString("## Changed Files\n\n")
		writeChangesTable(&sb, r.Changes)
		sb.WriteString("\n")
	}

	sb.WriteString("## Review Summary\n\n")
	sb.WriteString(r.Summary)
	if !strings.HasSuffix(r.Summary, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeChangesTable(w io.Writer, records []changes.Record) {
	table := newMarkdownTable([]string{"File", "Added", "Removed"}, w)
	for _, rec := range records {
		_ = table.Append([]string{
			rec.File,
			strconv.Itoa(rec.Additions),
			strconv.Itoa(rec.Deletions),
		})
	}
	_ = table.Render()
}

// newMarkdownTable creates a left-aligned Markdown table without outer
// top and bottom borders.
func newMarkdownTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
