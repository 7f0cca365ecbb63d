/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders review reports and persists them to disk.
//
// A Writer resolves relative paths against a root directory, creates parent
// directories and either replaces a file atomically or appends to it, separating
// the new content from existing content with a blank line. Failures are
// reported through Result instead of an error so the caller chooses whether a
// missing report ends the run.
//
//	w, err := report.NewWriter("reviews")
//	res := w.Write(ctx, rep.Markdown(), report.FileName(rep.Timestamp), false)
//	if !res.Success {
//		return res.Err()
//	}
package report
