package middleware

import (
	"net"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/ratelimit"
)

// RateLimit rejects clients that exceed limiter with 429. Clients are keyed
// by the host part of RemoteAddr, so chi's RealIP should run first when the
// service sits behind a proxy.
func RateLimit(limiter *ratelimit.KeyedRateLimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				m.RecordRateLimited(r.URL.Path)
				shared.RespondWithError(w, r, http.StatusTooManyRequests,
					"Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
