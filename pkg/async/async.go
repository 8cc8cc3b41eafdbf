package async

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldserve/fieldkit/pkg/logger"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the asynchronous function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for completion or returns ErrTimeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Run executes fn in a new goroutine and returns a Future for its result.
// Panics inside fn are recovered and surfaced as errors.
func Run[U any](ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanicked, r)
			}
		}()
		f.result, f.err = fn(ctx)
	}()

	return f
}

// Fire runs fn in a new goroutine without awaiting its completion.
// The context is detached from the caller's cancellation so request
// completion does not abort background work, but context values (request
// ID, logger) survive. Panics are recovered; failures are logged and
// otherwise dropped, so a fired task can never take down its caller.
func Fire(ctx context.Context, log *slog.Logger, name string, fn func(context.Context) error) {
	if log == nil {
		log = slog.Default()
	}
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(bgCtx, "background task panicked",
					slog.String("task", name), slog.Any("panic", r))
			}
		}()

		if err := fn(bgCtx); err != nil {
			log.ErrorContext(bgCtx, "background task failed",
				slog.String("task", name), logger.Error(err))
		}
	}()
}
