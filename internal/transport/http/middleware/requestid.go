package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"worklog/internal/requestctx"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses a caller supplied id or mints one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), rid)))
	})
}

var GetRequestID = requestctx.GetRequestID
