package middleware

import (
	"net/http"
	"strings"
)

// CORSMiddleware adds CORS headers for allowed origins and handles preflight requests.
// allowedOrigins is a list of exact origins to allow (scheme + host + optional port),
// or "*" to allow any origin.
// If allowCredentials is true, Access-Control-Allow-Credentials will be set to true.
func CORSMiddleware(next http.Handler, allowedOrigins []string, allowCredentials bool) http.Handler {
	allowAny := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		switch o {
		case "":
			continue
		case "*":
			allowAny = true
		default:
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		// Always vary on Origin so caches don't mix responses
		w.Header().Add("Vary", "Origin")

		if origin != "" {
			_, ok := allowed[origin]
			switch {
			case ok:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if allowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			if ok || allowAny {
				w.Header().Set("Access-Control-Expose-Headers", CorrelationIDHeader)
			}
		}

		// Preflight only; a plain OPTIONS without the request-method header falls through
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			reqHeaders := r.Header.Get("Access-Control-Request-Headers")
			if reqHeaders == "" {
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")
			} else {
				// Echo back requested headers
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
