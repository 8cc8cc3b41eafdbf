package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/logger"
)

// RunOptions selects which optional steps an orchestrator run performs.
type RunOptions struct {
	// TriggerCleanup opts the run into the probabilistic notification
	// cleanup. Set it on notification routes only.
	TriggerCleanup bool
}

// Result reports what a background-ops run did. Failures are collected as
// strings instead of aborting: background bookkeeping must never fail the
// request that happened to trigger it.
type Result struct {
	MonthlyReset        bool     `json:"monthly_reset"`
	DailyCheckTriggered bool     `json:"daily_check_triggered"`
	CleanupTriggered    bool     `json:"cleanup_triggered"`
	Errors              []string `json:"errors,omitempty"`
}

// Orchestrator sequences the inline maintenance services at the top of
// request handlers: monthly reset synchronously (counters must be correct
// before the handler reads them), then the asynchronous triggers.
type Orchestrator struct {
	reset   *MonthlyReset
	daily   *DailyCheck
	cleanup *Cleanup
	log     *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets the orchestrator logger.
func WithOrchestratorLogger(log *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// NewOrchestrator wires the three maintenance services together.
// Panics if any service is nil to fail fast during initialization.
func NewOrchestrator(reset *MonthlyReset, daily *DailyCheck, cleanup *Cleanup, opts ...OrchestratorOption) *Orchestrator {
	if reset == nil {
		panic("maintenance: MonthlyReset is required")
	}
	if daily == nil {
		panic("maintenance: DailyCheck is required")
	}
	if cleanup == nil {
		panic("maintenance: Cleanup is required")
	}

	o := &Orchestrator{
		reset:   reset,
		daily:   daily,
		cleanup: cleanup,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunBackgroundOps runs the monthly reset synchronously, then triggers the
// daily check and, when opted in, the notification cleanup. It never
// panics or returns an error: every failure is recorded in the result and
// the calling request proceeds, accepting best-effort stale data.
func (o *Orchestrator) RunBackgroundOps(ctx context.Context, contractorID uuid.UUID, opts RunOptions) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("background ops panicked: %v", r))
			o.log.ErrorContext(ctx, "background ops panicked",
				logger.ContractorID(contractorID), slog.Any("panic", r))
		}
	}()

	reset, err := o.reset.CheckAndReset(ctx, contractorID)
	result.MonthlyReset = reset
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("monthly reset: %v", err))
		o.log.WarnContext(ctx, "monthly reset failed, proceeding with possibly stale counters",
			logger.ContractorID(contractorID), logger.Error(err))
	}

	triggered, err := o.daily.RunIfNeeded(ctx, contractorID)
	result.DailyCheckTriggered = triggered
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("daily check: %v", err))
	}

	if opts.TriggerCleanup {
		result.CleanupTriggered = o.cleanup.MaybeCleanup(ctx)
	}
	return result
}

// RunResetOnly performs just the synchronous monthly reset, for routes
// about to increment a period-scoped counter and needing a fresh baseline.
func (o *Orchestrator) RunResetOnly(ctx context.Context, contractorID uuid.UUID) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("background ops panicked: %v", r))
		}
	}()

	reset, err := o.reset.CheckAndReset(ctx, contractorID)
	result.MonthlyReset = reset
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("monthly reset: %v", err))
	}
	return result
}

// RunDailyCheckOnly triggers just the daily check, for read-only routes
// that do not touch counters.
func (o *Orchestrator) RunDailyCheckOnly(ctx context.Context, contractorID uuid.UUID) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("background ops panicked: %v", r))
		}
	}()

	triggered, err := o.daily.RunIfNeeded(ctx, contractorID)
	result.DailyCheckTriggered = triggered
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("daily check: %v", err))
	}
	return result
}
