package gate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldkit/pkg/accounts"
	"github.com/fieldserve/fieldkit/pkg/gate"
	"github.com/fieldserve/fieldkit/pkg/tiercache"
	"github.com/fieldserve/fieldkit/pkg/tiers"
	"github.com/fieldserve/fieldkit/pkg/usage"
)

// recordingMonitor captures violations for assertions.
type recordingMonitor struct {
	mu         sync.Mutex
	violations []gate.Violation
}

func (m *recordingMonitor) LogLimitViolation(_ context.Context, v gate.Violation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, v)
}

func (m *recordingMonitor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.violations)
}

// countingAccounts wraps an account store counting Get calls.
type countingAccounts struct {
	inner accounts.Store
	mu    sync.Mutex
	gets  int
}

func (s *countingAccounts) Get(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.inner.Get(ctx, id)
}

// countingUsage wraps a usage store counting Get calls.
type countingUsage struct {
	usage.Store
	mu   sync.Mutex
	gets int
}

func (s *countingUsage) Get(ctx context.Context, id uuid.UUID) (*usage.Counters, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.Store.Get(ctx, id)
}

type fixture struct {
	gate     *gate.Gate
	accounts *accounts.MemoryStore
	usage    *usage.MemoryStore
	monitor  *recordingMonitor
	id       uuid.UUID
}

func newFixture(t *testing.T, tier string) *fixture {
	t.Helper()

	accountStore := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	catalog := tiers.NewCatalog()
	monitor := &recordingMonitor{}

	id := uuid.New()
	require.NoError(t, accountStore.Put(context.Background(), accounts.Account{
		ID:            id,
		Tier:          tier,
		BillingAnchor: time.Now().AddDate(0, -6, 0),
	}))

	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), accountStore, catalog)
	g := gate.New(resolver, usageStore, catalog, gate.WithMonitor(monitor))

	return &fixture{gate: g, accounts: accountStore, usage: usageStore, monitor: monitor, id: id}
}

func TestCheckLimitApproaching(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")
	ctx := context.Background()
	require.NoError(t, f.usage.Put(ctx, usage.Counters{ContractorID: f.id, ActiveJobs: 12}))

	check, err := f.gate.CheckLimit(ctx, f.id, tiers.LimitActiveJobs)
	require.NoError(t, err)

	assert.True(t, check.Allowed)
	assert.Equal(t, int64(12), check.Current)
	assert.Equal(t, int64(15), check.Limit)
	assert.Equal(t, int64(3), check.Remaining)
	assert.Equal(t, 80, check.Percentage)
	assert.True(t, check.IsApproaching)
	assert.False(t, check.IsAtLimit)
	assert.Equal(t, 0, f.monitor.count(), "approaching is not a violation")
}

func TestCheckLimitAtLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")
	ctx := context.Background()
	require.NoError(t, f.usage.Put(ctx, usage.Counters{ContractorID: f.id, ActiveJobs: 15}))

	check, err := f.gate.CheckLimit(ctx, f.id, tiers.LimitActiveJobs)
	require.NoError(t, err)

	assert.False(t, check.Allowed)
	assert.Equal(t, int64(0), check.Remaining)
	assert.Equal(t, 100, check.Percentage)
	assert.True(t, check.IsAtLimit)
	assert.False(t, check.IsApproaching)

	// The violation is emitted fire-and-forget; exactly one arrives.
	require.Eventually(t, func() bool { return f.monitor.count() == 1 },
		time.Second, 5*time.Millisecond)

	f.monitor.mu.Lock()
	v := f.monitor.violations[0]
	f.monitor.mu.Unlock()
	assert.Equal(t, f.id, v.ContractorID)
	assert.Equal(t, tiers.LimitActiveJobs, v.Limit)
	assert.Equal(t, int64(15), v.Current)
	assert.Equal(t, int64(15), v.Max)
	assert.Equal(t, tiers.Starter, v.Tier)
}

func TestCheckLimitUnlimited(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "enterprise")
	ctx := context.Background()
	require.NoError(t, f.usage.Put(ctx, usage.Counters{ContractorID: f.id, ActiveJobs: 100000}))

	check, err := f.gate.CheckLimit(ctx, f.id, tiers.LimitActiveJobs)
	require.NoError(t, err)

	assert.True(t, check.Allowed)
	assert.True(t, check.Unlimited)
	assert.Equal(t, tiers.Unlimited, check.Remaining)
	assert.Equal(t, 0, check.Percentage)
	assert.False(t, check.IsApproaching)
	assert.False(t, check.IsAtLimit)
	assert.Equal(t, 0, f.monitor.count())
}

func TestCheckLimitNoUsageRow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")

	for _, l := range tiers.TrackedLimits {
		check, err := f.gate.CheckLimit(context.Background(), f.id, l)
		require.NoError(t, err, "limit %s", l)
		assert.Equal(t, int64(0), check.Current, "limit %s", l)
		assert.True(t, check.Allowed, "limit %s", l)
	}
}

func TestCheckLimitUnknownContractor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")

	_, err := f.gate.CheckLimit(context.Background(), uuid.New(), tiers.LimitActiveJobs)
	require.ErrorIs(t, err, accounts.ErrContractorNotFound)
}

func TestCheckLimitUnknownLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")

	_, err := f.gate.CheckLimit(context.Background(), f.id, tiers.Limit("warp_drives"))
	require.ErrorIs(t, err, gate.ErrUnknownLimit)
}

func TestCheckLimitPercentageProperties(t *testing.T) {
	t.Parallel()

	// Pro allows 1000 customers, a convenient base for percentage math.
	tests := []struct {
		name         string
		current      int64
		wantPct      int
		wantApproach bool
		wantAtLimit  bool
	}{
		{"empty", 0, 0, false, false},
		{"half", 500, 50, false, false},
		{"just below threshold", 790, 79, false, false},
		{"rounds up into threshold", 795, 80, true, false},
		{"at threshold", 800, 80, true, false},
		{"just below limit", 990, 99, true, false},
		{"at limit", 1000, 100, false, true},
		{"over limit", 1330, 133, false, true},
	}

	catalog := tiers.NewCatalog()
	accountStore := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), accountStore, catalog)
	g := gate.New(resolver, usageStore, catalog)

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			require.NoError(t, accountStore.Put(ctx, accounts.Account{ID: id, Tier: "pro"}))
			require.NoError(t, usageStore.Put(ctx, usage.Counters{ContractorID: id, TotalCustomers: tt.current}))

			check, err := g.CheckLimit(ctx, id, tiers.LimitCustomers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPct, check.Percentage)
			assert.Equal(t, tt.wantApproach, check.IsApproaching)
			assert.Equal(t, tt.wantAtLimit, check.IsAtLimit)
			assert.Equal(t, tt.current < 1000, check.Allowed)
		})
	}
}

func TestCheckLimitZeroMeansUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// A catalog whose cheapest plan sets equipment to 0: the counted
	// feature is not on the plan at all, which is the opposite of -1.
	catalog, err := tiers.NewCatalogFromSource(ctx, tiers.NewStaticSource(map[tiers.Name]tiers.Tier{
		tiers.Starter: {
			Name:        tiers.Starter,
			DisplayName: "Starter",
			Features:    []tiers.Feature{tiers.FeatureInvoicing},
			Limits: map[tiers.Limit]int64{
				tiers.LimitActiveJobs:     15,
				tiers.LimitEquipmentItems: 0,
			},
		},
	}))
	require.NoError(t, err)

	accountStore := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	id := uuid.New()
	require.NoError(t, accountStore.Put(ctx, accounts.Account{ID: id, Tier: "starter"}))

	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), accountStore, catalog)
	g := gate.New(resolver, usageStore, catalog)

	check, err := g.CheckLimit(ctx, id, tiers.LimitEquipmentItems)
	require.NoError(t, err)

	assert.False(t, check.Allowed)
	assert.False(t, check.Unlimited)
	assert.Equal(t, int64(0), check.Current)
	assert.Equal(t, int64(0), check.Limit)
	assert.Equal(t, int64(0), check.Remaining)
	assert.Equal(t, 100, check.Percentage)
	assert.True(t, check.IsAtLimit)
	assert.False(t, check.IsApproaching)
}

func TestCheckLimitsSingleLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := tiers.NewCatalog()
	accountStore := accounts.NewMemoryStore()
	id := uuid.New()
	require.NoError(t, accountStore.Put(ctx, accounts.Account{ID: id, Tier: "starter"}))

	countingAcc := &countingAccounts{inner: accountStore}
	countingUse := &countingUsage{Store: usage.NewMemoryStore()}

	// An empty cache forces the one permitted account-store read.
	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), countingAcc, catalog)
	g := gate.New(resolver, countingUse, catalog)

	results, err := g.CheckLimits(ctx, id,
		tiers.LimitActiveJobs, tiers.LimitCustomers, tiers.LimitTeamMembers, tiers.LimitActiveLeads)
	require.NoError(t, err)
	require.Len(t, results, 4)

	countingAcc.mu.Lock()
	assert.Equal(t, 1, countingAcc.gets, "one tier lookup for the whole batch")
	countingAcc.mu.Unlock()
	countingUse.mu.Lock()
	assert.Equal(t, 1, countingUse.gets, "one usage lookup for the whole batch")
	countingUse.mu.Unlock()
}

func TestCanAccessFeature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("granted", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "starter")
		access, err := f.gate.CanAccessFeature(ctx, f.id, tiers.FeatureInvoicing)
		require.NoError(t, err)
		assert.True(t, access.Allowed)
		assert.Equal(t, tiers.Starter, access.Tier)
		assert.Empty(t, access.Reason)
		assert.NoError(t, access.Err())
	})

	t.Run("denied with upgrade hint", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "starter")
		access, err := f.gate.CanAccessFeature(ctx, f.id, tiers.FeatureInventory)
		require.NoError(t, err)
		assert.False(t, access.Allowed)
		assert.Equal(t, tiers.Pro, access.RequiredTier)
		assert.Contains(t, access.Reason, "pro")

		var locked *gate.FeatureLockedError
		require.ErrorAs(t, access.Err(), &locked)
		assert.Equal(t, tiers.FeatureInventory, locked.Feature)
	})

	t.Run("unknown feature denied on every plan", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "enterprise")
		access, err := f.gate.CanAccessFeature(ctx, f.id, tiers.Feature("time_travel"))
		require.NoError(t, err)
		assert.False(t, access.Allowed)
		assert.Empty(t, access.RequiredTier)
		assert.Equal(t, "not available on any plan", access.Reason)
	})

	t.Run("unknown contractor propagates", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "starter")
		_, err := f.gate.CanAccessFeature(ctx, uuid.New(), tiers.FeatureInvoicing)
		require.ErrorIs(t, err, accounts.ErrContractorNotFound)
	})
}

func TestUsageOverview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")
	ctx := context.Background()
	require.NoError(t, f.usage.Put(ctx, usage.Counters{
		ContractorID:      f.id,
		ActiveJobs:        5,
		InvoicesThisMonth: 25,
	}))

	overview, err := f.gate.UsageOverview(ctx, f.id)
	require.NoError(t, err)

	assert.Equal(t, tiers.Starter, overview.Tier)
	assert.Equal(t, "Starter", overview.DisplayName)
	assert.Equal(t, tiers.Money{Amount: 2900, Currency: "USD"}, overview.MonthlyPrice)
	require.Len(t, overview.Usage, len(tiers.TrackedLimits))

	jobs := overview.Usage[tiers.LimitActiveJobs]
	assert.Equal(t, int64(5), jobs.Current)
	assert.True(t, jobs.Allowed)

	invoices := overview.Usage[tiers.LimitInvoicesPerMonth]
	assert.True(t, invoices.IsAtLimit)
	assert.False(t, invoices.Allowed)

	// Overviews are read-only reporting: no violation emission.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.monitor.count())
}

func TestLimitCheckErr(t *testing.T) {
	t.Parallel()

	allowed := gate.LimitCheck{Allowed: true}
	assert.NoError(t, allowed.Err())

	denied := gate.LimitCheck{Name: tiers.LimitActiveJobs, Current: 15, Limit: 15}
	var exceeded *gate.LimitExceededError
	require.ErrorAs(t, denied.Err(), &exceeded)
	assert.Equal(t, tiers.LimitActiveJobs, exceeded.Limit)
	assert.Contains(t, exceeded.Error(), "active_jobs")
}

func TestGateCacheAdministration(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "starter")
	ctx := context.Background()

	_, err := f.gate.CheckLimit(ctx, f.id, tiers.LimitActiveJobs)
	require.NoError(t, err)

	// A tier change becomes visible immediately after invalidation.
	require.NoError(t, f.accounts.Put(ctx, accounts.Account{ID: f.id, Tier: "enterprise"}))
	require.NoError(t, f.gate.InvalidateCache(ctx, f.id))

	check, err := f.gate.CheckLimit(ctx, f.id, tiers.LimitActiveJobs)
	require.NoError(t, err)
	assert.True(t, check.Unlimited)

	require.NoError(t, f.gate.ClearCache(ctx))
}
