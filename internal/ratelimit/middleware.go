package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"syllabus-content-service/internal/telemetry"
)

// Limiter decides whether a key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, float64, error)
}

// Middleware rejects requests with 429 once the caller's bucket for scope is empty.
// Callers are keyed by client address. A nil limiter lets everything through.
func Middleware(l Limiter, scope string, log *zap.Logger) func(http.Handler) http.Handler {
	sugar := log.Named("ratelimit").Sugar()
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rl:%s:%s", scope, clientKey(r))
			allowed, _, err := l.Allow(r.Context(), key)
			if err != nil {
				sugar.Errorw("rate limit check failed", "key", key, "error", err)
				reject(w, http.StatusInternalServerError, "rate limit error")
				return
			}
			if !allowed {
				telemetry.RateLimitRejects.Inc()
				w.Header().Set("Retry-After", "1")
				reject(w, http.StatusTooManyRequests, "rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return r.RemoteAddr
	}
	return host
}

func reject(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, "{\"error\":%q}\n", msg)
}
