package maintenance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldkit/pkg/maintenance"
	"github.com/fieldserve/fieldkit/pkg/notifications"
)

// batchCountingStore records the batch sizes passed to the delete phase.
type batchCountingStore struct {
	notifications.Store
	mu      sync.Mutex
	batches []int64
}

func (s *batchCountingStore) DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	n, err := s.Store.DeleteReadOlderThan(ctx, cutoff, limit)
	s.mu.Lock()
	s.batches = append(s.batches, n)
	s.mu.Unlock()
	return n, err
}

func seedNotification(t *testing.T, store notifications.Store, contractorID uuid.UUID, age time.Duration, read bool) string {
	t.Helper()

	id := uuid.NewString()
	createdAt := time.Now().Add(-age)
	n := notifications.Notification{
		ID:           id,
		ContractorID: contractorID,
		Type:         notifications.TypeInfo,
		Title:        "Job scheduled",
		Message:      "A job was added to your calendar.",
		CreatedAt:    createdAt,
	}
	if read {
		n.Read = true
		readAt := createdAt.Add(time.Minute)
		n.ReadAt = &readAt
	}
	require.NoError(t, store.Create(context.Background(), n))
	return id
}

func TestForceCleanupArchivesAndDeletes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := notifications.NewMemoryStore()
	contractorID := uuid.New()

	seedNotification(t, store, contractorID, 40*24*time.Hour, false) // old unread: archived
	readOld := seedNotification(t, store, contractorID, 10*24*time.Hour, true)
	recent := seedNotification(t, store, contractorID, 2*24*time.Hour, true)
	fresh := seedNotification(t, store, contractorID, time.Hour, false)

	svc := maintenance.NewCleanup(store)
	require.NoError(t, svc.ForceCleanup(ctx))

	list, err := store.List(ctx, contractorID, notifications.ListOptions{})
	require.NoError(t, err)

	ids := make([]string, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{recent, fresh}, ids,
		"the archived and the deleted notification both leave the visible list")
	assert.NotContains(t, ids, readOld)

	_, ok := svc.LastRunAt()
	assert.True(t, ok)
	assert.False(t, svc.IsRunning())
}

func TestForceCleanupRefusesOverlap(t *testing.T) {
	t.Parallel()

	store := &slowStore{Store: notifications.NewMemoryStore(), gate: make(chan struct{})}
	svc := maintenance.NewCleanup(store)

	done := make(chan error, 1)
	go func() { done <- svc.ForceCleanup(context.Background()) }()

	require.Eventually(t, svc.IsRunning, time.Second, time.Millisecond)
	require.ErrorIs(t, svc.ForceCleanup(context.Background()), maintenance.ErrCleanupAlreadyRunning)

	close(store.gate)
	require.NoError(t, <-done)

	// Once the first sweep finishes another can start.
	require.NoError(t, svc.ForceCleanup(context.Background()))
}

// slowStore blocks the archive phase until gate closes.
type slowStore struct {
	notifications.Store
	gate chan struct{}
}

func (s *slowStore) MarkArchivedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	<-s.gate
	return s.Store.MarkArchivedOlderThan(ctx, cutoff)
}

// backlogCountingStore records the cutoffs passed to CountOlderThan.
type backlogCountingStore struct {
	notifications.Store
	mu      sync.Mutex
	cutoffs []time.Time
}

func (s *backlogCountingStore) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	s.cutoffs = append(s.cutoffs, cutoff)
	s.mu.Unlock()
	return s.Store.CountOlderThan(ctx, cutoff)
}

func TestSweepMeasuresBacklog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &backlogCountingStore{Store: notifications.NewMemoryStore()}
	contractorID := uuid.New()
	seedNotification(t, store, contractorID, 10*24*time.Hour, true)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := maintenance.NewCleanup(store, maintenance.WithCleanupClock(func() time.Time { return now }))
	require.NoError(t, svc.ForceCleanup(ctx))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.cutoffs, 1, "one backlog measurement per sweep")
	assert.Equal(t, now.Add(-maintenance.DefaultDeleteAfter), store.cutoffs[0])
}

func TestCleanupDeletesInBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &batchCountingStore{Store: notifications.NewMemoryStore()}
	contractorID := uuid.New()

	for range 7 {
		seedNotification(t, store, contractorID, 10*24*time.Hour, true)
	}

	svc := maintenance.NewCleanup(store, maintenance.WithDeleteBatchSize(3))
	require.NoError(t, svc.ForceCleanup(ctx))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []int64{3, 3, 1}, store.batches,
		"full batches continue the loop, the short batch ends it")
}

func TestMaybeCleanupNeverFiresAtZeroProbability(t *testing.T) {
	t.Parallel()

	svc := maintenance.NewCleanup(notifications.NewMemoryStore(),
		maintenance.WithCleanupProbability(0))

	for range 1000 {
		assert.False(t, svc.MaybeCleanup(context.Background()))
	}
}

func TestMaybeCleanupAlwaysFiresAtFullProbability(t *testing.T) {
	t.Parallel()

	svc := maintenance.NewCleanup(notifications.NewMemoryStore(),
		maintenance.WithCleanupProbability(1),
		maintenance.WithCleanupRand(func() float64 { return 0.999999 }))

	assert.True(t, svc.MaybeCleanup(context.Background()))
}

func TestMaybeCleanupTriggerRate(t *testing.T) {
	t.Parallel()

	svc := maintenance.NewCleanup(notifications.NewMemoryStore())

	// With the memory store a sweep completes almost instantly, but wait
	// out each launched sweep anyway so the in-flight guard cannot skew
	// the observed rate.
	triggered := 0
	for range 10000 {
		if svc.MaybeCleanup(context.Background()) {
			triggered++
			require.Eventually(t, func() bool { return !svc.IsRunning() },
				time.Second, 100*time.Microsecond)
		}
	}

	// Binomial(10000, 0.01) stays within [50, 150] except with
	// vanishing probability.
	assert.Greater(t, triggered, 50)
	assert.Less(t, triggered, 150)
}

func TestMaybeCleanupSuppressedWhileRunning(t *testing.T) {
	t.Parallel()

	store := &slowStore{Store: notifications.NewMemoryStore(), gate: make(chan struct{})}
	svc := maintenance.NewCleanup(store,
		maintenance.WithCleanupProbability(1),
		maintenance.WithCleanupRand(func() float64 { return 0 }))

	require.True(t, svc.MaybeCleanup(context.Background()))
	require.Eventually(t, svc.IsRunning, time.Second, time.Millisecond)

	for range 100 {
		assert.False(t, svc.MaybeCleanup(context.Background()))
	}

	close(store.gate)
	require.Eventually(t, func() bool { return !svc.IsRunning() }, time.Second, time.Millisecond)
	assert.True(t, svc.MaybeCleanup(context.Background()))
}
