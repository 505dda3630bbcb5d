package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/auth"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/ratelimit"
)

// RateLimit returns middleware that applies a fixed-window limit per
// caller. Authenticated requests are keyed by user ID, so a user hits the
// same bucket from every device; anonymous requests fall back to the
// client address.
func RateLimit(limiter *ratelimit.FixedWindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				key = r.RemoteAddr
			}

			if !limiter.Allow(key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "Too many requests. Please wait before trying again.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
