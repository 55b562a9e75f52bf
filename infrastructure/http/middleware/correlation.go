package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware ensures every request/response carries a correlation ID
// and makes it available to the logger through the request context.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, cid)

		ctx := logger.WithCorrelationID(r.Context(), cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
