/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package review runs a complete code review of one working copy.

A review collects the working-tree changes, derives a deterministic commit
message suggestion, asks the model for a critique while exposing three tools
(get_file_changes, generate_commit_message and write_markdown), and writes
the resulting Markdown report under the output directory.

	r, err := review.New(model, collector,
		review.WithOutputDir("/src/project/reviews"),
		review.WithStream(os.Stdout),
	)
	if err != nil {
		return err
	}
	outcome, err := r.Review(ctx, "/src/project")

A failed or aborted run never writes a report. Whether a failed write of the
final report fails the review is chosen with WithReportFailure.
*/
package review
