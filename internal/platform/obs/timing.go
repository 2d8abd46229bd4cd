package obs

import (
	"context"
	"time"
	"transport-ops-service/internal/platform/logger"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	SubjectKey   ctxKey = "subject"
)

// WithRequestID stores the request id used to correlate timing lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// WithSubject stores the authenticated token subject.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, SubjectKey, sub)
}

// Subject returns the authenticated token subject, or "" when auth is off.
func Subject(ctx context.Context) string {
	sub, _ := ctx.Value(SubjectKey).(string)
	return sub
}

// Time logs the duration of an operation, and its error if any.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	keyvals := []any{"req_id", RequestID(ctx), "op", name}
	if sub := Subject(ctx); sub != "" {
		keyvals = append(keyvals, "subject", sub)
	}

	return func(errp *error) {
		kv := append(keyvals, "dur_ms", time.Since(start).Milliseconds())

		if errp != nil && *errp != nil {
			logger.Warn("op failed", append(kv, "err", *errp)...)
			return
		}
		logger.Debug("op done", kv...)
	}
}
