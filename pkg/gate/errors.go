package gate

import (
	"errors"
	"fmt"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

var (
	ErrUnknownLimit = errors.New("unknown limit name")
)

// LimitExceededError is the typed domain error for a denied limit check.
// Callers translate a denied LimitCheck into this when the denial should be
// a hard failure, for example before creating the counted entity.
type LimitExceededError struct {
	Limit   tiers.Limit
	Current int64
	Max     int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("subscription limit exceeded: %s at %d of %d", e.Limit, e.Current, e.Max)
}

// FeatureLockedError is the typed domain error for a denied feature check.
type FeatureLockedError struct {
	Feature      tiers.Feature
	Tier         tiers.Name
	RequiredTier tiers.Name
}

func (e *FeatureLockedError) Error() string {
	if e.RequiredTier == "" {
		return fmt.Sprintf("feature %s is not available on any plan", e.Feature)
	}
	return fmt.Sprintf("feature %s requires the %s plan or higher (current plan: %s)",
		e.Feature, e.RequiredTier, e.Tier)
}
