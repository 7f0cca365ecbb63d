/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// AttributeEnricher returns base, the model, tool and state attributes of a
// measurement, extended with whatever ctx knows about the current review.
// Only bounded values belong here; run IDs would explode the series count.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue
