package gate

import (
	"context"
	"log/slog"

	"github.com/fieldserve/fieldkit/pkg/logger"
)

// Monitor receives limit-violation observations from the gate.
// Implementations must be safe for concurrent use. Calls are made
// fire-and-forget off the request path, so a slow or failing monitor can
// never fail or delay a limit check.
type Monitor interface {
	LogLimitViolation(ctx context.Context, v Violation)
}

// NopMonitor discards all observations.
type NopMonitor struct{}

func (NopMonitor) LogLimitViolation(context.Context, Violation) {}

// LogMonitor reports limit violations through structured logging.
type LogMonitor struct {
	log *slog.Logger
}

// NewLogMonitor creates a Monitor that writes violations to the given logger.
func NewLogMonitor(log *slog.Logger) *LogMonitor {
	if log == nil {
		log = slog.Default()
	}
	return &LogMonitor{log: log}
}

func (m *LogMonitor) LogLimitViolation(ctx context.Context, v Violation) {
	m.log.WarnContext(ctx, "subscription limit reached",
		logger.ContractorID(v.ContractorID),
		logger.Limit(v.Limit),
		slog.Int64("current", v.Current),
		slog.Int64("max", v.Max),
		logger.Tier(v.Tier),
		slog.Time("at", v.At),
	)
}

// MultiMonitor fans observations out to several monitors.
func MultiMonitor(monitors ...Monitor) Monitor {
	return multiMonitor(monitors)
}

type multiMonitor []Monitor

func (mm multiMonitor) LogLimitViolation(ctx context.Context, v Violation) {
	for _, m := range mm {
		if m != nil {
			m.LogLimitViolation(ctx, v)
		}
	}
}
