package core

import "context"

type contextKey string

const ctxKeyRequester contextKey = "requester"

// WithRequester records who asked for an on-demand report, for logging.
func WithRequester(ctx context.Context, who string) context.Context {
	return context.WithValue(ctx, ctxKeyRequester, who)
}

// RequesterFromContext returns the requester set by WithRequester, or "".
func RequesterFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequester).(string); ok {
		return v
	}
	return ""
}
