/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package review

import (
	"chainguard.dev/codereview/agents/changes"
	"chainguard.dev/codereview/agents/promptbuilder"
)

const systemInstructions = `You are an experienced software engineer performing a code review.

You receive the working-tree changes of a repository. Review them carefully and
report concrete, actionable findings: correctness bugs, security issues,
performance problems and maintainability concerns. Reference files by path and
quote the relevant lines. When a change looks good, say so briefly.

Tools:
- get_file_changes returns the current changes of a directory. The changes are
  already in the request, so only call it to refresh them.
- generate_commit_message suggests a commit message for a set of changes.
- write_markdown writes Markdown to a file in the review output directory. Paths
  are relative to that directory.

Finish with your complete review as plain Markdown text.`

var reviewPrompt = promptbuilder.MustNewPrompt(`Please review the following code changes. Provide a detailed analysis including:
- Code quality issues
- Potential bugs
- Security concerns
- Performance optimizations
- Best practices violations
- Any other relevant feedback

Changes:
{{changes}}

Please provide a comprehensive review.`)

// request binds the collected changes into the review prompt.
type request struct {
	records []changes.Record
	format  promptbuilder.Format
}

var _ promptbuilder.Bindable = request{}

func (r request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	records := r.records
	if records == nil {
		records = []changes.Record{}
	}
	return p.Bind("changes", r.format, records)
}
