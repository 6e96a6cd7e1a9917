package db

import (
	"context"
	"log/slog"
	"time"
)

// Hook is called before and after every statement execution.
//
// Implementations MUST be goroutine-safe and SHOULD be non-blocking.
// Panics inside a hook are recovered by the hook chain and logged.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery receives the wall-clock time spent in the driver and the
	// already mapped error, nil on success.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

// ─────────────────────────────────────────────────────────────────────────────
// hookChain
// ─────────────────────────────────────────────────────────────────────────────

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		func() {
			defer recoverHook("BeforeQuery")
			h.BeforeQuery(ctx, query, args)
		}()
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		func() {
			defer recoverHook("AfterQuery")
			h.AfterQuery(ctx, query, args, d, err)
		}()
	}
}

func recoverHook(phase string) {
	if r := recover(); r != nil {
		slog.Error("jobly/db: hook panic", "phase", phase, "panic", r)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging hook
// ─────────────────────────────────────────────────────────────────────────────

// LogHookConfig configures the structured logging hook.
type LogHookConfig struct {
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
	// SlowQueryThreshold logs a warning when duration exceeds this value.
	// Zero disables slow-query logging.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters in log entries. Leave it off in
	// production: user rows carry password hashes and emails.
	LogArgs bool
}

// NewLogHook returns a Hook that emits structured log entries via slog.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{cfg: cfg, logger: logger}
}

type logHook struct {
	cfg    LogHookConfig
	logger *slog.Logger
}

func (h *logHook) BeforeQuery(context.Context, string, []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	switch {
	case err != nil && !IsNotFound(err):
		h.logger.ErrorContext(ctx, "jobly/db: query error", append(attrs, slog.Any("error", err))...)
	case h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold:
		h.logger.WarnContext(ctx, "jobly/db: slow query", attrs...)
	default:
		h.logger.DebugContext(ctx, "jobly/db: query", attrs...)
	}
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics hook
// ─────────────────────────────────────────────────────────────────────────────

// MetricsCollector receives one observation per statement.
type MetricsCollector interface {
	RecordQuery(query string, duration time.Duration, success bool)
}

// NewMetricsHook returns a Hook that delegates to a MetricsCollector.
// A missing row is not counted as a failure.
func NewMetricsHook(collector MetricsCollector) Hook {
	return &metricsHook{c: collector}
}

type metricsHook struct{ c MetricsCollector }

func (h *metricsHook) BeforeQuery(context.Context, string, []any) {}

func (h *metricsHook) AfterQuery(_ context.Context, query string, _ []any, d time.Duration, err error) {
	h.c.RecordQuery(query, d, err == nil || IsNotFound(err))
}
