package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// Counters holds the per-contractor usage counters the feature gate reads.
//
// TotalCustomers, TeamMembers, InventoryItems and EquipmentItems are
// cumulative: they only move when the counted entity is created or removed.
// InvoicesThisMonth is period-scoped and resets at each billing-period
// boundary. ActiveJobs and ActiveLeads behave as live gauges but still pass
// through the reset-if-needed check for safety.
type Counters struct {
	ContractorID      uuid.UUID
	ActiveJobs        int64
	InvoicesThisMonth int64
	TotalCustomers    int64
	TeamMembers       int64
	InventoryItems    int64
	EquipmentItems    int64
	ActiveLeads       int64

	// CurrentPeriodStart marks the billing period the period-scoped
	// counters belong to. A stored value before the active period means
	// the row is stale and due for a reset.
	CurrentPeriodStart time.Time

	// LastDailyCheckAt records when the per-contractor daily usage check
	// last ran. Nil means it has never run.
	LastDailyCheckAt *time.Time

	UpdatedAt time.Time
}

// Value returns the counter tracked under the given limit name.
// Unknown limit names read as zero.
func (c *Counters) Value(l tiers.Limit) int64 {
	if c == nil {
		return 0
	}
	switch l {
	case tiers.LimitActiveJobs:
		return c.ActiveJobs
	case tiers.LimitInvoicesPerMonth:
		return c.InvoicesThisMonth
	case tiers.LimitCustomers:
		return c.TotalCustomers
	case tiers.LimitTeamMembers:
		return c.TeamMembers
	case tiers.LimitInventoryItems:
		return c.InventoryItems
	case tiers.LimitEquipmentItems:
		return c.EquipmentItems
	case tiers.LimitActiveLeads:
		return c.ActiveLeads
	default:
		return 0
	}
}
