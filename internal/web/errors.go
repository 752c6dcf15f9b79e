package web

// errors.go renders every failed request the same way: the technical error
// is logged with the request and session IDs, and the client gets the
// core.MapError message as JSON, an HTMX fragment or a full page.

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/SliceOfPie/internal/core"
	"github.com/JonMunkholm/SliceOfPie/internal/logging"
	mw "github.com/JonMunkholm/SliceOfPie/internal/web/middleware"
	"github.com/JonMunkholm/SliceOfPie/internal/web/templates"
)

// statusByCode maps a user-facing error code to its HTTP status.
var statusByCode = map[string]int{
	"FILE001":  http.StatusRequestEntityTooLarge,
	"FILE002":  http.StatusBadRequest,
	"FILE003":  http.StatusBadRequest,
	"FILE004":  http.StatusBadRequest,
	"FILE005":  http.StatusBadRequest,
	"FILE006":  http.StatusBadRequest,
	"CHART001": http.StatusBadRequest,
	"CHART002": http.StatusUnprocessableEntity,
	"CHART003": http.StatusBadRequest,
	"CHART004": http.StatusUnprocessableEntity,
	"EDIT001":  http.StatusBadRequest,
	"EDIT002":  http.StatusBadRequest,
	"SES001":   http.StatusNotFound,
	"SES002":   http.StatusTooManyRequests,
	"UPL002":   http.StatusTooManyRequests,
	"UPL003":   http.StatusConflict,
	"UPL004":   http.StatusRequestTimeout,
	"UPL005":   http.StatusRequestTimeout,
	"RATE001":  http.StatusTooManyRequests,
	"AUTH001":  http.StatusUnauthorized,
	"AUTH002":  http.StatusForbidden,
	"SRV001":   http.StatusServiceUnavailable,
	"AUD001":   http.StatusNotFound,
	"REQ001":   http.StatusBadRequest,
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	if status, ok := statusByCode[core.MapError(err).Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the user-facing response in the format
// the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		mw.WriteError(w, status, err)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorPage(status, errorView(err)).Render(r.Context(), w)
	}
}

// errorView converts err for display inside a page.
func errorView(err error) *templates.ErrorView {
	if err == nil {
		return nil
	}
	msg := core.MapError(err)
	return &templates.ErrorView{Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers a JSON response. API routes
// always do.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
