package appMiddleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader echoes the request id assigned by middleware.RequestID back
// to the client so error reports can be correlated with server logs.
// It must run after middleware.RequestID.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set(middleware.RequestIDHeader, reqID)
		}
		next.ServeHTTP(w, r)
	})
}
