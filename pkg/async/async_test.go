package async_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldkit/pkg/async"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()

		f := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			return 42, nil
		})
		got, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.True(t, f.IsComplete())
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		f := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			return 0, wantErr
		})
		_, err := f.Await()
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("recovers panic", func(t *testing.T) {
		t.Parallel()

		f := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			panic("unexpected")
		})
		_, err := f.Await()
		require.ErrorIs(t, err, async.ErrPanicked)
	})

	t.Run("await with timeout", func(t *testing.T) {
		t.Parallel()

		f := async.Run(context.Background(), func(ctx context.Context) (int, error) {
			time.Sleep(time.Second)
			return 1, nil
		})
		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		require.ErrorIs(t, err, async.ErrTimeout)
	})
}

func TestFire(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("runs task", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		async.Fire(context.Background(), log, "test", func(ctx context.Context) error {
			close(done)
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("fired task never ran")
		}
	})

	t.Run("survives canceled caller context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran atomic.Bool
		done := make(chan struct{})
		async.Fire(ctx, log, "test", func(ctx context.Context) error {
			ran.Store(ctx.Err() == nil)
			close(done)
			return nil
		})

		<-done
		assert.True(t, ran.Load(), "background context must not inherit cancellation")
	})

	t.Run("swallows panic", func(t *testing.T) {
		t.Parallel()

		assert.NotPanics(t, func() {
			async.Fire(context.Background(), log, "test", func(ctx context.Context) error {
				panic("boom")
			})
			time.Sleep(20 * time.Millisecond)
		})
	})
}
