package maintenance_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldkit/pkg/accounts"
	"github.com/fieldserve/fieldkit/pkg/gate"
	"github.com/fieldserve/fieldkit/pkg/maintenance"
	"github.com/fieldserve/fieldkit/pkg/notifications"
	"github.com/fieldserve/fieldkit/pkg/tiercache"
	"github.com/fieldserve/fieldkit/pkg/tiers"
	"github.com/fieldserve/fieldkit/pkg/usage"
)

func waitForMarker(t *testing.T, store usage.Store, id uuid.UUID) time.Time {
	t.Helper()

	var at time.Time
	require.Eventually(t, func() bool {
		counters, err := store.Get(context.Background(), id)
		if err != nil || counters.LastDailyCheckAt == nil {
			return false
		}
		at = *counters.LastDailyCheckAt
		return true
	}, time.Second, 5*time.Millisecond)
	return at
}

func TestDailyCheckRunsOncePerDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usageStore := usage.NewMemoryStore()
	id := uuid.New()

	var runs atomic.Int64
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := maintenance.NewDailyCheck(usageStore,
		func(context.Context, uuid.UUID) error { runs.Add(1); return nil },
		maintenance.WithDailyClock(func() time.Time { return now }))

	launched, err := svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	assert.True(t, launched)

	at := waitForMarker(t, usageStore, id)
	assert.Equal(t, now, at)
	assert.Equal(t, int64(1), runs.Load())

	// Later the same day: skipped.
	now = now.Add(6 * time.Hour)
	launched, err = svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	assert.False(t, launched)
	assert.Equal(t, int64(1), runs.Load())

	// The next day: runs again.
	now = now.Add(24 * time.Hour)
	launched, err = svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	assert.True(t, launched)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDailyCheckSingleFlight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usageStore := usage.NewMemoryStore()
	id := uuid.New()

	var runs atomic.Int64
	release := make(chan struct{})
	svc := maintenance.NewDailyCheck(usageStore, func(context.Context, uuid.UUID) error {
		runs.Add(1)
		<-release
		return nil
	})

	launched, err := svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	require.True(t, launched)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The check is still in flight; a second trigger must not stack.
	launched, err = svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	assert.False(t, launched)

	close(release)
	waitForMarker(t, usageStore, id)
	assert.Equal(t, int64(1), runs.Load())
}

func TestDailyCheckFailedCheckRetriesNextRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usageStore := usage.NewMemoryStore()
	id := uuid.New()

	var runs atomic.Int64
	svc := maintenance.NewDailyCheck(usageStore, func(context.Context, uuid.UUID) error {
		if runs.Add(1) == 1 {
			return assert.AnError
		}
		return nil
	})

	launched, err := svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	require.True(t, launched)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The failure must not advance the marker, so the next request retries.
	require.Eventually(t, func() bool {
		launched, err := svc.RunIfNeeded(ctx, id)
		require.NoError(t, err)
		return launched
	}, time.Second, 10*time.Millisecond)

	waitForMarker(t, usageStore, id)
	assert.GreaterOrEqual(t, runs.Load(), int64(2))
}

func TestDailyCheckNilCheckAdvancesMarker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usageStore := usage.NewMemoryStore()
	id := uuid.New()

	svc := maintenance.NewDailyCheck(usageStore, nil)
	launched, err := svc.RunIfNeeded(ctx, id)
	require.NoError(t, err)
	assert.True(t, launched)
	waitForMarker(t, usageStore, id)
}

func TestUsageAlertCheckCreatesNotifications(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	accountStore := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	notifStore := notifications.NewMemoryStore()
	catalog := tiers.NewCatalog()

	id := uuid.New()
	require.NoError(t, accountStore.Put(ctx, accounts.Account{ID: id, Tier: "starter"}))
	require.NoError(t, usageStore.Put(ctx, usage.Counters{
		ContractorID:      id,
		ActiveJobs:        12, // 80% of 15: approaching
		InvoicesThisMonth: 25, // 25 of 25: exhausted
		TotalCustomers:    10, // well under: quiet
	}))

	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), accountStore, catalog)
	g := gate.New(resolver, usageStore, catalog)

	check := maintenance.NewUsageAlertCheck(g, notifStore)
	require.NoError(t, check(ctx, id))

	list, err := notifStore.List(ctx, id, notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	byType := map[notifications.Type]notifications.Notification{}
	for _, n := range list {
		byType[n.Type] = n
	}

	warning, ok := byType[notifications.TypeWarning]
	require.True(t, ok)
	assert.Equal(t, "Approaching plan limit", warning.Title)
	assert.Contains(t, warning.Message, "12 of 15 active jobs")

	alarm, ok := byType[notifications.TypeError]
	require.True(t, ok)
	assert.Equal(t, "Plan limit reached", alarm.Title)
	assert.Contains(t, alarm.Message, "25 of 25 invoices this month")
}

func TestUsageAlertCheckQuietWhenUnderLimits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	accountStore := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	notifStore := notifications.NewMemoryStore()
	catalog := tiers.NewCatalog()

	id := uuid.New()
	require.NoError(t, accountStore.Put(ctx, accounts.Account{ID: id, Tier: "enterprise"}))
	require.NoError(t, usageStore.Put(ctx, usage.Counters{ContractorID: id, ActiveJobs: 100000}))

	resolver := tiercache.NewResolver(tiercache.NewMemoryCache(), accountStore, catalog)
	g := gate.New(resolver, usageStore, catalog)

	check := maintenance.NewUsageAlertCheck(g, notifStore)
	require.NoError(t, check(ctx, id))

	unread, err := notifStore.CountUnread(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
