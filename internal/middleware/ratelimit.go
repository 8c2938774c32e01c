// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/iyunix/go-chatstore/internal/dtos"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/ratelimit"
)

// RateLimitMiddleware rejects requests from clients that exhausted their
// token bucket with 429 and a Retry-After header.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			allowed, info := limiter.Allow(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

			if !allowed {
				retry := int(math.Ceil(info.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				logger.Warn("rate limited",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"retry_after", info.RetryAfter,
					"request_id", RequestIDFromContext(r.Context()))

				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(dtos.ErrorResponse{
					Code:   dtos.CodeRateLimited,
					Detail: "too many requests, retry later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
