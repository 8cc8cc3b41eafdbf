// Package logger builds configured slog.Logger instances and provides the
// domain attribute helpers used across the library.
//
// The factory wraps the chosen text or JSON handler in a ContextHandler
// that injects registered context values into every record, so
// request-scoped identifiers travel with log lines without threading them
// through call sites.
//
// Usage:
//
//	log := logger.New(
//		logger.WithProduction("fieldkit"),
//		logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.InfoContext(ctx, "limit check",
//		logger.ContractorID(id),
//		logger.Limit(tiers.LimitActiveJobs),
//	)
package logger
