package metrics

import (
	"context"

	"github.com/fieldserve/fieldkit/pkg/gate"
)

// Monitor implements gate.Monitor by counting violations in Prometheus.
// Combine with gate.LogMonitor via gate.MultiMonitor to get both a metric
// and a log line per violation.
type Monitor struct{}

func (Monitor) LogLimitViolation(_ context.Context, v gate.Violation) {
	LimitViolationsTotal.WithLabelValues(string(v.Tier), string(v.Limit)).Inc()
}
