/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package changes collects the unstaged changes of a git working copy.
//
// A Collector walks the files that differ between the working tree and the
// index, drops excluded paths, and returns one Record per file with its
// unified diff truncated to a fixed ceiling:
//
//	c, err := changes.New(changes.WithExclusions("vendor/", "dist"))
//	records, err := c.Collect(ctx, "/path/to/repo")
//
// Diffs are computed with go-git, so no git binary is needed. Other sources
// can be plugged in with WithOpener.
package changes
