package web

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/render"
)

// handleGetSession returns the session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Get(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(st))
}

// EditCellRequest is the body of POST /api/sessions/{id}/cells.
type EditCellRequest struct {
	Row    *int   `json:"row"`
	Header string `json:"header"`
	Value  string `json:"value"`
}

// handleEditCell changes one cell and returns the re-derived snapshot.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	var req EditCellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Row == nil {
		s.respondError(w, r, errMissingField("row"))
		return
	}

	st, err := s.service.EditCell(r.Context(), sessionID(r), *req.Row, req.Header, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(st))
}

// SelectChartRequest is the body of PUT /api/sessions/{id}/chart. Empty
// fields keep the current selection.
type SelectChartRequest struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
}

// handleSelectChart changes the chart kind or export format.
func (s *Server) handleSelectChart(w http.ResponseWriter, r *http.Request) {
	var req SelectChartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	spec, err := parseSpec(req.Kind, req.Format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := s.service.SelectChart(r.Context(), sessionID(r), spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(st))
}

// handleSeries returns the render payload for ?kind=, defaulting to the
// selected kind. The selection itself is not changed.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	var kind chart.Kind
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := chart.ParseKind(q)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		kind = k
	}

	set, err := s.service.Series(r.Context(), sessionID(r), kind)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// handleExport downloads the dataset or chart. The format comes from the
// URL, then ?format=, then the session's preference.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "format")
	if raw == "" {
		raw = r.URL.Query().Get("format")
	}
	var format chart.ExportFormat
	if raw != "" {
		f, err := chart.ParseExportFormat(raw)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		format = f
	}

	var buf bytes.Buffer
	exp, err := s.service.ExportTo(r.Context(), &buf, sessionID(r), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger(r).Warn("export write failed", "error", err)
	}
}

// handleChartImage renders the selected chart inline for the session page.
// Unlike an export it is not recorded in the audit trail.
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Get(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snap := st.Snapshot
	if snap.SeriesErr != nil {
		s.respondError(w, r, snap.SeriesErr)
		return
	}

	var buf bytes.Buffer
	title := strings.TrimSuffix(st.FileName, filepath.Ext(st.FileName))
	if err := render.PNG(&buf, snap.Series, render.Options{Title: title}); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleDeleteSession closes a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseSession(r.Context(), sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStatus reports session and upload limiter usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// handleHealth is the liveness probe. It fails once shutdown has begun so
// load balancers stop routing new uploads here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.service.Status().ShuttingDown {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
