package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ContractorID records the contractor identifier under the key "contractor_id".
func ContractorID(id uuid.UUID) slog.Attr {
	return slog.String("contractor_id", id.String())
}

// Tier records a subscription tier under the key "tier".
func Tier(name tiers.Name) slog.Attr {
	return slog.String("tier", string(name))
}

// Limit records a usage limit name under the key "limit".
func Limit(l tiers.Limit) slog.Attr {
	return slog.String("limit", string(l))
}

// Feature records a gated feature name under the key "feature".
func Feature(f tiers.Feature) slog.Attr {
	return slog.String("feature", string(f))
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Count records a generic count under the key "count".
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}
