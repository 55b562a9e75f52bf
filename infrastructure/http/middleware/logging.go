package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/guestgate/guestgate/infrastructure/http/response"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "HTTP request", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"remote_addr": r.RemoteAddr,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// RecoveryMiddleware turns a handler panic into a 500.
func RecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "Panic recovered", nil, map[string]interface{}{
						"panic": rec,
						"stack": string(debug.Stack()),
						"path":  r.URL.Path,
					})
					response.InternalServerError(w, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
