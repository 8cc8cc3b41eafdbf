package tiers

import (
	"context"
	"errors"
	"fmt"
)

// tierOrder is the upgrade path from cheapest to most expensive, used to
// find the minimum tier granting a feature.
var tierOrder = []Name{Starter, Pro, Enterprise}

// Catalog holds the process-wide tier table.
// The catalog is immutable after construction; lookups are safe for
// concurrent use without locking.
type Catalog struct {
	tiers map[Name]Tier
}

// NewCatalog returns a catalog with the compiled-in tier table.
func NewCatalog() *Catalog {
	c, err := NewCatalogFromSource(context.Background(), NewStaticSource(builtinTiers()))
	if err != nil {
		// The builtin table is validated by tests; a failure here is a bug.
		panic(fmt.Sprintf("tiers: builtin catalog invalid: %v", err))
	}
	return c
}

// NewCatalogFromSource loads tiers from the given source and validates them.
func NewCatalogFromSource(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("tiers: Source is required")
	}

	loaded, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}

	if err := validateTiers(loaded); err != nil {
		return nil, err
	}

	tiersCopy := make(map[Name]Tier, len(loaded))
	for name, tier := range loaded {
		tier.Name = name
		tiersCopy[name] = tier.clone()
	}

	return &Catalog{tiers: tiersCopy}, nil
}

// Get returns the tier definition for the given name.
func (c *Catalog) Get(name Name) (Tier, bool) {
	t, ok := c.tiers[name]
	if !ok {
		return Tier{}, false
	}
	return t.clone(), true
}

// LimitFor returns the ceiling for a limit on the named tier.
// Unknown tiers are normalized first, so the call never fails.
func (c *Catalog) LimitFor(name Name, l Limit) int64 {
	t, ok := c.tiers[name]
	if !ok {
		t = c.tiers[Normalize(string(name))]
	}
	return t.LimitFor(l)
}

// HasFeature reports whether the named tier grants the feature.
func (c *Catalog) HasFeature(name Name, f Feature) bool {
	t, ok := c.tiers[name]
	if !ok {
		t = c.tiers[Normalize(string(name))]
	}
	return t.HasFeature(f)
}

// MinimumTierFor returns the cheapest tier granting the feature,
// for upgrade-prompt messaging. The second return value is false when no
// tier grants it.
func (c *Catalog) MinimumTierFor(f Feature) (Name, bool) {
	for _, name := range tierOrder {
		if t, ok := c.tiers[name]; ok && t.HasFeature(f) {
			return name, true
		}
	}
	return "", false
}

// Names returns the known tier names from cheapest to most expensive.
func (c *Catalog) Names() []Name {
	names := make([]Name, 0, len(c.tiers))
	for _, name := range tierOrder {
		if _, ok := c.tiers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// validateTiers checks tier configurations for validity.
func validateTiers(loaded map[Name]Tier) error {
	if len(loaded) == 0 {
		return errors.Join(ErrInvalidTierConfiguration, errors.New("no tiers defined"))
	}
	if _, ok := loaded[Starter]; !ok {
		// Normalize falls back to Starter, so the catalog must define it.
		return errors.Join(ErrInvalidTierConfiguration, errors.New("starter tier is required"))
	}
	for name, tier := range loaded {
		for limit, v := range tier.Limits {
			if v < Unlimited {
				return errors.Join(ErrInvalidTierConfiguration,
					fmt.Errorf("tier %s limit %s has invalid value %d", name, limit, v))
			}
		}
	}
	return nil
}

// builtinTiers is the compiled-in tier table.
func builtinTiers() map[Name]Tier {
	return map[Name]Tier{
		Starter: {
			Name:         Starter,
			DisplayName:  "Starter",
			MonthlyPrice: Money{Amount: 2900, Currency: "USD"},
			Features: []Feature{
				FeatureInvoicing,
				FeatureEstimates,
				FeatureScheduling,
			},
			Limits: map[Limit]int64{
				LimitActiveJobs:       15,
				LimitInvoicesPerMonth: 25,
				LimitCustomers:        100,
				LimitTeamMembers:      3,
				LimitInventoryItems:   50,
				LimitEquipmentItems:   10,
				LimitActiveLeads:      25,
			},
		},
		Pro: {
			Name:         Pro,
			DisplayName:  "Pro",
			MonthlyPrice: Money{Amount: 7900, Currency: "USD"},
			Features: []Feature{
				FeatureInvoicing,
				FeatureEstimates,
				FeatureScheduling,
				FeatureInventory,
				FeatureEquipment,
				FeatureLeadTracking,
				FeatureReports,
				FeatureTeamManagement,
			},
			Limits: map[Limit]int64{
				LimitActiveJobs:       75,
				LimitInvoicesPerMonth: 200,
				LimitCustomers:        1000,
				LimitTeamMembers:      10,
				LimitInventoryItems:   500,
				LimitEquipmentItems:   50,
				LimitActiveLeads:      150,
			},
		},
		Enterprise: {
			Name:         Enterprise,
			DisplayName:  "Enterprise",
			MonthlyPrice: Money{Amount: 19900, Currency: "USD"},
			Features: []Feature{
				FeatureInvoicing,
				FeatureEstimates,
				FeatureScheduling,
				FeatureInventory,
				FeatureEquipment,
				FeatureLeadTracking,
				FeatureReports,
				FeatureTeamManagement,
				FeatureAPIAccess,
				FeatureCustomBranding,
				FeaturePrioritySupport,
			},
			Limits: map[Limit]int64{
				LimitActiveJobs:       Unlimited,
				LimitInvoicesPerMonth: Unlimited,
				LimitCustomers:        Unlimited,
				LimitTeamMembers:      Unlimited,
				LimitInventoryItems:   Unlimited,
				LimitEquipmentItems:   Unlimited,
				LimitActiveLeads:      Unlimited,
			},
		},
	}
}
