package tiers

import (
	"maps"
	"slices"
	"strings"
)

// Name identifies a subscription tier.
type Name string

const (
	Starter    Name = "starter"
	Pro        Name = "pro"
	Enterprise Name = "enterprise"
)

// Feature represents a tier-specific capability that can be enabled/disabled.
type Feature string

const (
	FeatureInvoicing       Feature = "invoicing"
	FeatureEstimates       Feature = "estimates"
	FeatureScheduling      Feature = "scheduling"
	FeatureInventory       Feature = "inventory"
	FeatureEquipment       Feature = "equipment"
	FeatureLeadTracking    Feature = "lead_tracking"
	FeatureReports         Feature = "reports"
	FeatureTeamManagement  Feature = "team_management"
	FeatureAPIAccess       Feature = "api_access"
	FeatureCustomBranding  Feature = "custom_branding"
	FeaturePrioritySupport Feature = "priority_support"
)

// Limit names a numeric ceiling on a tracked usage counter.
type Limit string

const (
	LimitActiveJobs       Limit = "active_jobs"
	LimitInvoicesPerMonth Limit = "invoices_per_month"
	LimitCustomers        Limit = "customers"
	LimitTeamMembers      Limit = "team_members"
	LimitInventoryItems   Limit = "inventory_items"
	LimitEquipmentItems   Limit = "equipment_items"
	LimitActiveLeads      Limit = "active_leads"
)

// TrackedLimits lists every limit the gate knows about, in display order.
var TrackedLimits = []Limit{
	LimitActiveJobs,
	LimitInvoicesPerMonth,
	LimitCustomers,
	LimitTeamMembers,
	LimitInventoryItems,
	LimitEquipmentItems,
	LimitActiveLeads,
}

const (
	// Unlimited indicates no limit for a counter (-1 chosen for SQL compatibility).
	Unlimited int64 = -1
	// Unavailable indicates the counted feature is not available on the tier.
	Unavailable int64 = 0
)

// Money represents a monetary amount in the smallest currency unit.
// For example, $29.00 USD is Amount: 2900, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount" json:"amount"`
	Currency string `yaml:"currency" json:"currency"`
}

// Tier describes a subscription level: a feature-capability set plus numeric
// usage limits. Tiers are immutable once loaded into a Catalog.
type Tier struct {
	Name         Name            `yaml:"name" json:"name"`
	DisplayName  string          `yaml:"display_name" json:"display_name"`
	MonthlyPrice Money           `yaml:"monthly_price" json:"monthly_price"`
	Features     []Feature       `yaml:"features" json:"features"`
	Limits       map[Limit]int64 `yaml:"limits" json:"limits"`
}

// HasFeature reports whether the tier grants the given feature.
func (t Tier) HasFeature(f Feature) bool {
	return slices.Contains(t.Features, f)
}

// LimitFor returns the configured ceiling for the given limit.
// Limits the tier does not mention are Unavailable.
func (t Tier) LimitFor(l Limit) int64 {
	v, ok := t.Limits[l]
	if !ok {
		return Unavailable
	}
	return v
}

// clone returns a deep copy so catalog callers can never mutate shared state.
func (t Tier) clone() Tier {
	return Tier{
		Name:         t.Name,
		DisplayName:  t.DisplayName,
		MonthlyPrice: t.MonthlyPrice,
		Features:     slices.Clone(t.Features),
		Limits:       maps.Clone(t.Limits),
	}
}

// legacyAliases maps tier strings written by older billing code to their
// current equivalents. Unknown strings fall back to Starter.
var legacyAliases = map[string]Name{
	"basic":        Starter,
	"free":         Starter,
	"trial":        Starter,
	"premium":      Pro,
	"professional": Pro,
	"business":     Enterprise,
	"unlimited":    Enterprise,
}

// Normalize maps a raw stored tier string to a known tier name.
// Legacy aliases resolve to their current tier; unknown or empty values
// resolve to Starter as the safe default. Normalize never fails.
func Normalize(raw string) Name {
	switch n := Name(strings.ToLower(strings.TrimSpace(raw))); n {
	case Starter, Pro, Enterprise:
		return n
	default:
		if alias, ok := legacyAliases[string(n)]; ok {
			return alias
		}
		return Starter
	}
}
