package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/SliceOfPie/internal/core"
	"github.com/JonMunkholm/SliceOfPie/internal/logging"
	mw "github.com/JonMunkholm/SliceOfPie/internal/web/middleware"
)

// requestMetadata records the client IP and user agent for the audit trail.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.Client{
			IPAddress: mw.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionContext tags the request logger with the session from the URL.
func sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithSession(r.Context(), sessionID(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
