package gateway

import (
	"net"
	"net/http"
	"strconv"

	"shareit/internal/api"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// RateLimit rejects callers over their quota with 429. Callers are keyed by
// the identity header, or by remote address when it is absent. Limiter
// errors let the request through.
func RateLimit(limiter domain.RateLimiter, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), rateLimitKey(r))
			if err != nil {
				logger.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.IncRateLimited()
				api.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if id, err := api.RequesterID(r); err == nil {
		return "user:" + strconv.FormatInt(id, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
