/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudebackend

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
)

// IsRetryable reports whether err is a rate limit, overload or transient
// server error from the Anthropic API.
func IsRetryable(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
