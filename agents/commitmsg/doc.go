/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package commitmsg synthesizes commit messages from a change set without a model.
//
// Files are classified by name into conventional-commit categories and the
// message is rendered in one of three styles:
//
//	msg := commitmsg.Generate(records, commitmsg.Options{
//		Style:     commitmsg.StyleConventional,
//		MaxLength: 72,
//	})
//	// msg.Message == "feat: Update 3 files"
//
// The output is deterministic, so a suggestion is always available even when
// the model never asks for one.
package commitmsg
