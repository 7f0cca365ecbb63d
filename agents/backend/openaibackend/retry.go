/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaibackend

import (
	"errors"

	"github.com/openai/openai-go"
)

// IsRetryable reports whether err is a rate limit or transient server error
// from the OpenAI API.
func IsRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
