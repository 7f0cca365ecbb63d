/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package review

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/commitmsg"
	"chainguard.dev/codereview/agents/report"
	"chainguard.dev/codereview/agents/toolcall"
)

const (
	ToolGetFileChanges        = "get_file_changes"
	ToolGenerateCommitMessage = "generate_commit_message"
	ToolWriteMarkdown         = "write_markdown"
)

type fileChangesInput struct {
	RootDir string `json:"rootDir" jsonschema:"required,minLength=1" jsonschema_description:"The root directory, relative to the reviewed directory"`
}

type commitMessageInput struct {
	Changes []changes.Record   `json:"changes" jsonschema:"required" jsonschema_description:"Array of file changes"`
	Options *commitmsg.Options `json:"options,omitempty"`
}

type writeMarkdownInput struct {
	Content  string `json:"content" jsonschema:"required" jsonschema_description:"Markdown content to write"`
	FilePath string `json:"filePath" jsonschema:"required,minLength=1" jsonschema_description:"Path where to save the markdown file, relative to the review output directory"`
	Append   bool   `json:"append,omitempty" jsonschema:"default=false" jsonschema_description:"Whether to append to an existing file"`
}

// registry declares the tools of one review of root.
func registry(root string, collector *changes.Collector, writer *report.Writer) (*toolcall.Registry, error) {
	return toolcall.NewRegistry(
		toolcall.New(ToolGetFileChanges, "Gets the code changes made in the given directory",
			func(ctx context.Context, in fileChangesInput) ([]changes.Record, error) {
				dir, err := within(root, in.RootDir)
				if err != nil {
					return nil, err
				}
				records, err := collector.Collect(ctx, dir)
				if records == nil && err == nil {
					records = []changes.Record{}
				}
				return records, err
			}),
		toolcall.New(ToolGenerateCommitMessage, "Generates a commit message based on the provided changes",
			func(_ context.Context, in commitMessageInput) (commitmsg.Message, error) {
				var opts commitmsg.Options
				if in.Options != nil {
					opts = *in.Options
				}
				return commitmsg.Generate(in.Changes, opts), nil
			}),
		toolcall.New(ToolWriteMarkdown, "Writes content to a markdown file",
			func(ctx context.Context, in writeMarkdownInput) (report.Result, error) {
				return writer.Write(ctx, in.Content, in.FilePath, in.Append), nil
			}),
	)
}

// within resolves dir against root and rejects directories outside it.
func within(root, dir string) (string, error) {
	full := dir
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, dir)
	}
	full = filepath.Clean(full)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("directory %q is outside %s", dir, root)
	}
	return full, nil
}
