package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/depotbot/internal/core"
)

// WithRequestMetadata marks ctx as an HTTP-triggered report for logging.
// RemoteAddr has already been rewritten by chi's RealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequester(ctx, "http:"+r.RemoteAddr)
}
