package gate

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// FeatureAccess is the result of a feature capability check.
type FeatureAccess struct {
	Allowed bool          `json:"allowed"`
	Feature tiers.Feature `json:"feature"`
	Tier    tiers.Name    `json:"tier"`
	// RequiredTier is the cheapest tier that would grant the feature,
	// for upgrade-prompt messaging. Empty when allowed, or when no tier
	// grants the feature at all.
	RequiredTier tiers.Name `json:"required_tier,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// Err converts a denied access into a typed *FeatureLockedError, or nil
// when access is allowed. Callers choose whether a denial is a hard failure.
func (a FeatureAccess) Err() error {
	if a.Allowed {
		return nil
	}
	return &FeatureLockedError{
		Feature:      a.Feature,
		Tier:         a.Tier,
		RequiredTier: a.RequiredTier,
	}
}

// LimitCheck is the result of comparing a usage counter against its tier ceiling.
type LimitCheck struct {
	Name    tiers.Limit `json:"name"`
	Allowed bool        `json:"allowed"`
	Current int64       `json:"current"`
	// Limit is the configured ceiling; -1 means unlimited, 0 means the
	// counted feature is unavailable on the tier.
	Limit int64 `json:"limit"`
	// Remaining is the headroom before the ceiling; -1 when unlimited.
	Remaining int64 `json:"remaining"`
	// Percentage is round(100*current/limit); 0 when unlimited. It is not
	// capped, so overshooting the ceiling reads above 100.
	Percentage    int  `json:"percentage"`
	IsApproaching bool `json:"is_approaching"`
	IsAtLimit     bool `json:"is_at_limit"`
	Unlimited     bool `json:"unlimited"`
}

// Err converts a denied check into a typed *LimitExceededError, or nil when
// the operation is allowed.
func (c LimitCheck) Err() error {
	if c.Allowed {
		return nil
	}
	return &LimitExceededError{
		Limit:   c.Name,
		Current: c.Current,
		Max:     c.Limit,
	}
}

// Overview bundles tier metadata with a snapshot of every tracked limit,
// for dashboard consumption.
type Overview struct {
	Tier         tiers.Name                 `json:"tier"`
	DisplayName  string                     `json:"display_name"`
	MonthlyPrice tiers.Money                `json:"monthly_price"`
	Usage        map[tiers.Limit]LimitCheck `json:"usage"`
}

// Violation describes a contractor found at one of its limits, reported to
// the monitoring collaborator.
type Violation struct {
	ContractorID uuid.UUID   `json:"contractor_id"`
	Limit        tiers.Limit `json:"limit"`
	Current      int64       `json:"current"`
	Max          int64       `json:"max"`
	Tier         tiers.Name  `json:"tier"`
	At           time.Time   `json:"at"`
}
