/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package llm defines the provider-neutral conversation types exchanged
// between the orchestration loop and model backends.
package llm
