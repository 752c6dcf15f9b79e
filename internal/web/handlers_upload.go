package web

import (
	"net/http"
)

// handleCreateSession parses an uploaded file into a new session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.service.CreateSession(r.Context(), up)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+st.ID)
	writeJSON(w, http.StatusCreated, toResponse(st))
}

// handleReplaceFile loads a new file into an existing session. A newer
// upload or edit that lands first wins and this request gets 409.
func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.service.ReplaceFile(r.Context(), sessionID(r), up)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(st))
}
