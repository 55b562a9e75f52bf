package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/guestgate/guestgate/application/port/inbound"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/infrastructure/http/response"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

const TooManyRequestsMessage = "Too many requests. Please try again later."

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	scope            string
	trustProxy       bool
}

// NewRateLimitMiddleware limits requests per client IP. scope namespaces the
// counters so separate routes do not share a budget. With trustProxy the
// client IP comes from X-Forwarded-For, otherwise from the connection.
func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, scope string, trustProxy bool, logger logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           logger,
		scope:            scope,
		trustProxy:       trustProxy,
	}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip rate limiting if service is not available
		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := getClientIP(r, m.trustProxy)
		key := fmt.Sprintf("%s:ip:%s", m.scope, clientIP)

		allowed, retryAfter, err := m.rateLimitService.Allow(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
			// Continue with request on error
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			limitErr := domainerr.ErrRateLimitExceeded(key)
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "MEDIUM", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"code":      limitErr.Code,
				"key":       key,
				"userAgent": r.UserAgent(),
			})

			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(retryAfter.Seconds())))
			response.Error(w, domainerr.GetHTTPStatusCode(limitErr), TooManyRequestsMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(s float64) int {
	if s < 1 {
		return 1
	}
	return int(math.Ceil(s))
}

// getClientIP extracts client IP from request. Forwarding headers are only
// read behind a trusted proxy; the rightmost X-Forwarded-For entry is the one
// that proxy appended, earlier entries are client supplied.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			if ip := strings.TrimSpace(ips[len(ips)-1]); ip != "" {
				return ip
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
