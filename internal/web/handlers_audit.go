package web

import (
	"net/http"

	"github.com/JonMunkholm/SliceOfPie/internal/core"
)

// handleAuditHistory lists recent audit entries for a session, newest
// first. Returns 404 (AUD001) when no database is configured.
func (s *Server) handleAuditHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultHistoryLimit)

	entries, err := s.service.AuditHistory(r.Context(), sessionID(r), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
